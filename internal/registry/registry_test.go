package registry

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberreg/internal/ir"
)

const (
	admin ir.Addr = "ADMIN"
	user1 ir.Addr = "USER1"
	user2 ir.Addr = "USER2"
)

func newState(t *testing.T) ir.State {
	t.Helper()
	state, _ := Initialize(admin)
	return state
}

func TestInitialize(t *testing.T) {
	state, resp := Initialize(admin)

	assert.Equal(t, admin, state.Owner)
	assert.NotNil(t, state.List)
	assert.Empty(t, state.List)
	assert.Equal(t, []ir.Attribute{
		{Key: "method", Value: "instantiate"},
		{Key: "owner", Value: "ADMIN"},
	}, resp.Attributes)
}

func TestAddMember(t *testing.T) {
	state := newState(t)

	resp, err := AddMember(&state, admin, ir.Member{Addr: user1, Priority: 3})
	require.NoError(t, err)

	method, ok := resp.Attr("method")
	require.True(t, ok)
	assert.Equal(t, "add", method)
	assert.Equal(t, []ir.Member{{Addr: user1, Priority: 3}}, ListMembers(state))
}

func TestAddMemberPreservesInsertionOrder(t *testing.T) {
	state := newState(t)

	for _, addr := range []ir.Addr{"C", "A", "B"} {
		_, err := AddMember(&state, admin, ir.Member{Addr: addr})
		require.NoError(t, err)
	}

	members := ListMembers(state)
	require.Len(t, members, 3)
	assert.Equal(t, ir.Addr("C"), members[0].Addr)
	assert.Equal(t, ir.Addr("A"), members[1].Addr)
	assert.Equal(t, ir.Addr("B"), members[2].Addr)
}

func TestAddMemberDuplicateIgnoresPriority(t *testing.T) {
	state := newState(t)
	_, err := AddMember(&state, admin, ir.Member{Addr: user1, Priority: 1})
	require.NoError(t, err)

	_, err = AddMember(&state, admin, ir.Member{Addr: user1, Priority: 99})
	require.ErrorIs(t, err, ErrAlreadyAdded)
	assert.True(t, err == ErrAlreadyAdded, "sentinel must compare by value")
	assert.Equal(t, []ir.Member{{Addr: user1, Priority: 1}}, state.List, "stored priority unchanged")
}

func TestRemoveMember(t *testing.T) {
	state := newState(t)
	_, err := AddMember(&state, admin, ir.Member{Addr: user1})
	require.NoError(t, err)
	_, err = AddMember(&state, admin, ir.Member{Addr: user2})
	require.NoError(t, err)

	resp, err := RemoveMember(&state, admin, user1)
	require.NoError(t, err)

	method, _ := resp.Attr("method")
	assert.Equal(t, "remove", method)
	assert.Equal(t, []ir.Member{{Addr: user2}}, ListMembers(state))
}

func TestRemoveMemberRemovesEveryMatch(t *testing.T) {
	// The duplicate is built by hand to exercise remove-all-matches directly.
	state := ir.State{Owner: admin, List: []ir.Member{{Addr: user1}, {Addr: user2}, {Addr: user1, Priority: 4}}}

	_, err := RemoveMember(&state, admin, user1)
	require.NoError(t, err)
	assert.Equal(t, []ir.Member{{Addr: user2}}, state.List)
}

func TestAuthorizationCheckedFirst(t *testing.T) {
	state := newState(t)
	_, err := AddMember(&state, admin, ir.Member{Addr: user1})
	require.NoError(t, err)

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"add new member", func() error {
			_, err := AddMember(&state, user2, ir.Member{Addr: "NEW"})
			return err
		}, ErrUnauthorized},
		{"add duplicate", func() error {
			_, err := AddMember(&state, user2, ir.Member{Addr: user1})
			return err
		}, ErrUnauthorized},
		{"remove existing", func() error {
			_, err := RemoveMember(&state, user2, user1)
			return err
		}, ErrUnauthorized},
		{"remove missing", func() error {
			_, err := RemoveMember(&state, user2, "MISSING")
			return err
		}, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, []ir.Member{{Addr: user1}}, state.List, "list unchanged")
		})
	}
}

func TestListMembersIsPureRead(t *testing.T) {
	state := newState(t)
	_, err := AddMember(&state, admin, ir.Member{Addr: user1, Priority: 2})
	require.NoError(t, err)

	first := ListMembers(state)
	second := ListMembers(state)
	assert.Equal(t, first, second)

	first[0].Addr = "MUTATED"
	assert.Equal(t, user1, state.List[0].Addr, "returned slice must not alias state")
}

// Scenarios A-D run in sequence against one state, as the original contract test does.
func TestAddRemoveScenario(t *testing.T) {
	state := newState(t)

	// A: add, list, duplicate add.
	_, err := AddMember(&state, admin, ir.Member{Addr: user1})
	require.NoError(t, err)
	members := ListMembers(state)
	require.Len(t, members, 1)
	assert.Equal(t, user1, members[0].Addr)

	_, err = AddMember(&state, admin, ir.Member{Addr: user1})
	require.ErrorIs(t, err, ErrAlreadyAdded)
	assert.Len(t, ListMembers(state), 1)

	// B: remove a missing member.
	_, err = RemoveMember(&state, admin, user2)
	require.ErrorIs(t, err, ErrNotExist)

	// C: non-owner remove.
	_, err = RemoveMember(&state, user2, user1)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Len(t, ListMembers(state), 1)

	// D: owner remove.
	_, err = RemoveMember(&state, admin, user1)
	require.NoError(t, err)
	assert.Empty(t, ListMembers(state))
}

func TestRandomSequencesNeverDuplicate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	state := newState(t)
	callers := []ir.Addr{admin, admin, admin, user2}

	for i := 0; i < 2000; i++ {
		caller := callers[rng.Intn(len(callers))]
		addr := ir.Addr(fmt.Sprintf("M%d", rng.Intn(20)))
		before := ListMembers(state)

		var err error
		if rng.Intn(3) == 0 {
			_, err = RemoveMember(&state, caller, addr)
		} else {
			_, err = AddMember(&state, caller, ir.Member{Addr: addr, Priority: uint32(rng.Intn(5))})
		}

		if caller != admin {
			require.ErrorIs(t, err, ErrUnauthorized)
		}
		if err != nil {
			require.Equal(t, before, ListMembers(state), "failed operation must not mutate state")
		}

		seen := make(map[ir.Addr]bool)
		for _, m := range state.List {
			require.False(t, seen[m.Addr], "duplicate identity %q after step %d", m.Addr, i)
			seen[m.Addr] = true
		}
	}
}

func TestRoundTrip(t *testing.T) {
	state := newState(t)
	m := ir.Member{Addr: user1, Priority: 8}

	_, err := AddMember(&state, admin, m)
	require.NoError(t, err)
	assert.Contains(t, ListMembers(state), m)

	_, err = RemoveMember(&state, admin, m.Addr)
	require.NoError(t, err)
	assert.NotContains(t, ListMembers(state), m)
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("execute: %w", ErrNotExist)

	assert.True(t, IsNotExist(wrapped))
	assert.False(t, IsAlreadyAdded(wrapped))
	assert.False(t, IsUnauthorized(errors.New("other")))

	code, ok := CodeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotExist, code)

	_, ok = CodeOf(errors.New("other"))
	assert.False(t, ok)

	assert.Equal(t, "AlreadyAdded: member already added", ErrAlreadyAdded.Error())
}
