package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Msg is the sealed sum type of every request the host accepts.
// Implemented by InstantiateMsg, the ExecuteMsg variants and the QueryMsg variants.
// Adding a variant means adding a case to every switch in this file and in
// host.Dispatch.
type Msg interface {
	isMsg()
}

// ExecuteMsg is a mutating request: AddMsg or RemoveMsg.
type ExecuteMsg interface {
	Msg
	isExecuteMsg()
}

// QueryMsg is a read-only request: ListMembersQuery or ContractInfoQuery.
type QueryMsg interface {
	Msg
	isQueryMsg()
}

// InstantiateMsg creates the registry. It carries no fields; the owner is
// the authenticated sender.
type InstantiateMsg struct{}

// AddMsg appends a member. Priority defaults to 0 when omitted on the wire.
type AddMsg struct {
	Addr     Addr
	Priority uint32
}

// RemoveMsg removes the member with the given identity.
type RemoveMsg struct {
	Addr Addr
}

// ListMembersQuery returns the member list.
type ListMembersQuery struct{}

// ContractInfoQuery returns the contract name and version.
type ContractInfoQuery struct{}

func (InstantiateMsg) isMsg()    {}
func (AddMsg) isMsg()            {}
func (RemoveMsg) isMsg()         {}
func (ListMembersQuery) isMsg()  {}
func (ContractInfoQuery) isMsg() {}

func (AddMsg) isExecuteMsg()    {}
func (RemoveMsg) isExecuteMsg() {}

func (ListMembersQuery) isQueryMsg()  {}
func (ContractInfoQuery) isQueryMsg() {}

// Method names. They double as wire tags and as the "method" attribute.
const (
	MethodInstantiate  = "instantiate"
	MethodAdd          = "add"
	MethodRemove       = "remove"
	MethodListMembers  = "list_members"
	MethodContractInfo = "contract_info"
)

// Message kinds recorded in the transaction log.
const (
	KindInstantiate = "instantiate"
	KindExecute     = "execute"
	KindQuery       = "query"
)

// MethodOf returns the method name of a message.
func MethodOf(m Msg) string {
	switch m.(type) {
	case InstantiateMsg:
		return MethodInstantiate
	case AddMsg:
		return MethodAdd
	case RemoveMsg:
		return MethodRemove
	case ListMembersQuery:
		return MethodListMembers
	case ContractInfoQuery:
		return MethodContractInfo
	default:
		panic(fmt.Sprintf("ir: unknown message type %T", m))
	}
}

// KindOf returns the message kind: instantiate, execute or query.
func KindOf(m Msg) string {
	switch m.(type) {
	case InstantiateMsg:
		return KindInstantiate
	case ExecuteMsg:
		return KindExecute
	case QueryMsg:
		return KindQuery
	default:
		panic(fmt.Sprintf("ir: unknown message type %T", m))
	}
}

// MsgObject returns the wire shape of a message as an IRObject.
//
//	InstantiateMsg{}          -> {}
//	AddMsg{"u1", 2}           -> {"add":{"addr":"u1","priority":2}}
//	RemoveMsg{"u1"}           -> {"remove":{"addr":"u1"}}
//	ListMembersQuery{}        -> {"list_members":{}}
func MsgObject(m Msg) IRObject {
	switch v := m.(type) {
	case InstantiateMsg:
		return IRObject{}
	case AddMsg:
		return IRObject{MethodAdd: IRObject{
			"addr":     IRString(v.Addr),
			"priority": IRInt(v.Priority),
		}}
	case RemoveMsg:
		return IRObject{MethodRemove: IRObject{"addr": IRString(v.Addr)}}
	case ListMembersQuery:
		return IRObject{MethodListMembers: IRObject{}}
	case ContractInfoQuery:
		return IRObject{MethodContractInfo: IRObject{}}
	default:
		panic(fmt.Sprintf("ir: unknown message type %T", m))
	}
}

// EncodeMsg returns the canonical JSON wire encoding of a message.
func EncodeMsg(m Msg) ([]byte, error) {
	return MarshalCanonical(MsgObject(m))
}

// DecodeInstantiate decodes an instantiate message. Only {} is accepted.
func DecodeInstantiate(data []byte) (InstantiateMsg, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return InstantiateMsg{}, fmt.Errorf("decode instantiate: %w", err)
	}
	if len(raw) != 0 {
		return InstantiateMsg{}, fmt.Errorf("decode instantiate: unexpected fields %v", sortedRawKeys(raw))
	}
	return InstantiateMsg{}, nil
}

// DecodeExecute decodes an externally tagged execute message.
func DecodeExecute(data []byte) (ExecuteMsg, error) {
	tag, body, err := splitTagged(data)
	if err != nil {
		return nil, fmt.Errorf("decode execute: %w", err)
	}

	switch tag {
	case MethodAdd:
		var b struct {
			Addr     Addr   `json:"addr"`
			Priority uint32 `json:"priority"`
		}
		if err := decodeStrict(body, &b); err != nil {
			return nil, fmt.Errorf("decode execute add: %w", err)
		}
		if b.Addr == "" {
			return nil, fmt.Errorf("decode execute add: addr is required")
		}
		return AddMsg{Addr: b.Addr, Priority: b.Priority}, nil
	case MethodRemove:
		var b struct {
			Addr Addr `json:"addr"`
		}
		if err := decodeStrict(body, &b); err != nil {
			return nil, fmt.Errorf("decode execute remove: %w", err)
		}
		if b.Addr == "" {
			return nil, fmt.Errorf("decode execute remove: addr is required")
		}
		return RemoveMsg{Addr: b.Addr}, nil
	default:
		return nil, fmt.Errorf("decode execute: unknown variant %q", tag)
	}
}

// DecodeQuery decodes an externally tagged query message.
func DecodeQuery(data []byte) (QueryMsg, error) {
	tag, body, err := splitTagged(data)
	if err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}

	var empty struct{}
	switch tag {
	case MethodListMembers:
		if err := decodeStrict(body, &empty); err != nil {
			return nil, fmt.Errorf("decode query list_members: %w", err)
		}
		return ListMembersQuery{}, nil
	case MethodContractInfo:
		if err := decodeStrict(body, &empty); err != nil {
			return nil, fmt.Errorf("decode query contract_info: %w", err)
		}
		return ContractInfoQuery{}, nil
	default:
		return nil, fmt.Errorf("decode query: unknown variant %q", tag)
	}
}

// splitTagged returns the single key of a JSON object and its value.
func splitTagged(data []byte) (string, json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, err
	}
	if len(raw) != 1 {
		return "", nil, fmt.Errorf("expected exactly one variant, got %d %v", len(raw), sortedRawKeys(raw))
	}
	for tag, body := range raw {
		return tag, body, nil
	}
	return "", nil, nil
}

func decodeStrict(body json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func sortedRawKeys(raw map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
