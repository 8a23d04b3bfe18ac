package registry

import (
	"slices"

	"github.com/roach88/memberreg/internal/ir"
)

// Initialize creates the registry state owned by caller.
// It always succeeds; the response carries method and owner attributes.
func Initialize(caller ir.Addr) (ir.State, ir.Response) {
	state := ir.State{
		Owner: caller,
		List:  []ir.Member{},
	}
	resp := ir.Response{}.
		AddAttribute("method", ir.MethodInstantiate).
		AddAttribute("owner", caller.String())
	return state, resp
}

// AddMember appends candidate to the list.
//
// Fails with ErrUnauthorized when caller is not the owner and with
// ErrAlreadyAdded when an entry with the same identity exists, whatever its
// priority.
func AddMember(state *ir.State, caller ir.Addr, candidate ir.Member) (ir.Response, error) {
	if caller != state.Owner {
		return ir.Response{}, ErrUnauthorized
	}
	if indexOf(state.List, candidate.Addr) >= 0 {
		return ir.Response{}, ErrAlreadyAdded
	}

	state.List = append(state.List, candidate)
	return ir.Response{}.AddAttribute("method", ir.MethodAdd), nil
}

// RemoveMember deletes every entry with identity addr.
//
// Authorization is checked before existence: a non-owner removing a missing
// identity gets ErrUnauthorized, not ErrNotExist.
func RemoveMember(state *ir.State, caller ir.Addr, addr ir.Addr) (ir.Response, error) {
	if caller != state.Owner {
		return ir.Response{}, ErrUnauthorized
	}
	if indexOf(state.List, addr) < 0 {
		return ir.Response{}, ErrNotExist
	}

	state.List = slices.DeleteFunc(state.List, func(m ir.Member) bool {
		return m.Addr == addr
	})
	return ir.Response{}.AddAttribute("method", ir.MethodRemove), nil
}

// ListMembers returns a copy of the list in insertion order.
// Anyone may call it.
func ListMembers(state ir.State) []ir.Member {
	out := make([]ir.Member, len(state.List))
	copy(out, state.List)
	return out
}

func indexOf(list []ir.Member, addr ir.Addr) int {
	return slices.IndexFunc(list, func(m ir.Member) bool {
		return m.Addr == addr
	})
}
