package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberreg/internal/ir"
)

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator()

	id, err := gen.Generate("alice", ir.InstantiateMsg{}, 1)
	require.NoError(t, err)
	assert.Equal(t, "tx-0001", id)

	// Content does not influence the ID.
	id, err = gen.Generate("alice", ir.InstantiateMsg{}, 1)
	require.NoError(t, err)
	assert.Equal(t, "tx-0002", id)
	assert.Equal(t, 2, gen.Count())
}

func TestSequentialIDGenerator_Prefix(t *testing.T) {
	gen := NewSequentialIDGeneratorWithPrefix("run")
	id, err := gen.Generate("bob", ir.RemoveMsg{Addr: "u1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, "run-0001", id)
}
