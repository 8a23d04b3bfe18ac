package ir

// Addr is an opaque, externally verified identity.
type Addr string

func (a Addr) String() string { return string(a) }

// Member is a registered identity with its priority.
// List membership compares Addr only; Priority is never compared.
type Member struct {
	Addr     Addr   `json:"addr"`
	Priority uint32 `json:"priority"`
}

// State is the single persisted registry record.
//
// INVARIANTS:
//   - Owner is set once at instantiation and never changes
//   - List holds at most one Member per Addr, in insertion order
type State struct {
	Owner Addr     `json:"owner"`
	List  []Member `json:"list"`
}

// Attribute is a key/value pair returned with a successful mutation.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response acknowledges a successful mutation.
type Response struct {
	Attributes []Attribute `json:"attributes"`
}

// AddAttribute returns r with the attribute appended.
func (r Response) AddAttribute(key, value string) Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Attr returns the first attribute value for key.
func (r Response) Attr(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// ListMembersResponse is the result of the list_members query.
type ListMembersResponse struct {
	Members []Member `json:"members"`
}

// ContractInfo is the result of the contract_info query.
type ContractInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}
