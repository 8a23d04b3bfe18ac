// Package registry implements the owner-managed membership list.
//
// The registry is pure transition logic over an explicit ir.State value: the
// caller loads the state, passes it by reference and persists it again only
// when the operation succeeds. No I/O, locking or goroutines happen here; the
// host serializes calls and commits atomically.
//
// # Operations
//
//	Initialize(caller)                 -> State{owner: caller, list: []}
//	AddMember(state, caller, member)   -> Unauthorized | AlreadyAdded | ok
//	RemoveMember(state, caller, addr)  -> Unauthorized | NotExist | ok
//	ListMembers(state)                 -> members in insertion order
//
// Authorization is always checked before existence. A failed operation leaves
// the state untouched.
package registry
