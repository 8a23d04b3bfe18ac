package harness

import "github.com/roach88/memberreg/internal/ir"

// TraceEvent records one step as the host saw it.
type TraceEvent struct {
	Step   int         `json:"step"`
	Kind   string      `json:"kind"` // instantiate, execute or query
	Sender string      `json:"sender,omitempty"`
	Msg    ir.IRObject `json:"msg"`

	// Outcome is "ok" or the rejection code.
	Outcome string `json:"outcome"`

	// Seq is the logical clock value; zero for queries, which are not logged.
	Seq int64 `json:"seq,omitempty"`

	// Attributes of a mutating call. Empty on rejection.
	Attributes []ir.Attribute `json:"attributes,omitempty"`

	// Response of a successful query.
	Response ir.IRObject `json:"response,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Owner and Members are the final registry state.
	// Both are empty if the scenario never instantiated.
	Owner   ir.Addr     `json:"owner,omitempty"`
	Members []ir.Member `json:"members"`

	// Log is the final transaction log.
	Log []ir.TxRecord `json:"log"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Members: []ir.Member{},
		Log:     []ir.TxRecord{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
