package ir

// NOTE: TxRecord is a store-layer type, not part of the wire contract.

// Transaction outcomes.
const (
	// OutcomeOK marks a committed call. Failed calls record their error code.
	OutcomeOK = "ok"
)

// TxRecord is one entry of the append-only transaction log.
// Every instantiate and execute call is recorded, including rejected ones;
// queries are not.
type TxRecord struct {
	ID         string      `json:"id"`
	Seq        int64       `json:"seq"`
	Sender     Addr        `json:"sender"`
	Kind       string      `json:"kind"`
	Method     string      `json:"method"`
	Msg        string      `json:"msg"` // canonical JSON wire encoding
	Outcome    string      `json:"outcome"`
	Attributes []Attribute `json:"attributes"`
}

// OK reports whether the transaction committed.
func (r TxRecord) OK() bool {
	return r.Outcome == OutcomeOK
}
