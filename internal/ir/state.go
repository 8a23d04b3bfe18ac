package ir

import (
	"encoding/json"
	"fmt"
)

func (m Member) toIR() IRObject {
	return IRObject{
		"addr":     IRString(m.Addr),
		"priority": IRInt(m.Priority),
	}
}

// MembersToIR converts a member list to an IRArray preserving order.
func MembersToIR(members []Member) IRArray {
	arr := make(IRArray, len(members))
	for i, m := range members {
		arr[i] = m.toIR()
	}
	return arr
}

// MarshalState encodes a state as canonical JSON.
func MarshalState(s State) ([]byte, error) {
	data, err := MarshalCanonical(IRObject{
		"owner": IRString(s.Owner),
		"list":  MembersToIR(s.List),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// UnmarshalState decodes a persisted state and checks its invariants.
// A record with an empty owner or a duplicated identity is rejected.
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("unmarshal state: %w", err)
	}
	if s.Owner == "" {
		return State{}, fmt.Errorf("unmarshal state: owner is empty")
	}
	seen := make(map[Addr]bool, len(s.List))
	for _, m := range s.List {
		if seen[m.Addr] {
			return State{}, fmt.Errorf("unmarshal state: duplicate member %q", m.Addr)
		}
		seen[m.Addr] = true
	}
	if s.List == nil {
		s.List = []Member{}
	}
	return s, nil
}

// MarshalContractInfo encodes a contract_info record as canonical JSON.
func MarshalContractInfo(info ContractInfo) ([]byte, error) {
	return MarshalCanonical(IRObject{
		"contract": IRString(info.Contract),
		"version":  IRString(info.Version),
	})
}

// UnmarshalContractInfo decodes a contract_info record.
func UnmarshalContractInfo(data []byte) (ContractInfo, error) {
	var info ContractInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ContractInfo{}, fmt.Errorf("unmarshal contract info: %w", err)
	}
	return info, nil
}

// MarshalListMembers encodes a list_members response as canonical JSON.
func MarshalListMembers(resp ListMembersResponse) ([]byte, error) {
	return MarshalCanonical(IRObject{"members": MembersToIR(resp.Members)})
}

// MarshalQueryResponse encodes any query result as canonical JSON.
func MarshalQueryResponse(v any) ([]byte, error) {
	switch r := v.(type) {
	case ListMembersResponse:
		return MarshalListMembers(r)
	case ContractInfo:
		return MarshalContractInfo(r)
	default:
		return nil, fmt.Errorf("marshal query response: unsupported type %T", v)
	}
}
