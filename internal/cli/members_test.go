package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberreg/internal/ir"
)

func TestMembers_Lifecycle(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	out, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "ok seq=1 tx=")
	assert.Contains(t, out, "  method=instantiate\n")
	assert.Contains(t, out, "  owner=alice\n")

	out, _, err = runCLI(t, "", "add", "bob", "--priority", "3", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "ok seq=2 tx=")
	assert.Contains(t, out, "  method=add\n")

	_, _, err = runCLI(t, "", "add", "carol", "--db", db, "--sender", "alice")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "bob\t3\ncarol\t0\n", out)

	out, _, err = runCLI(t, "", "remove", "bob", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "  method=remove\n")

	out, _, err = runCLI(t, "", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "carol\t0\n", out)
}

func TestMembers_ListEmpty(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	_, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)

	out, _, err := runCLI(t, "", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "(no members)\n", out)
}

func TestMembers_ListJSON(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	_, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	_, _, err = runCLI(t, "", "add", "bob", "--priority", "9", "--db", db, "--sender", "alice")
	require.NoError(t, err)

	out, _, err := runCLI(t, "", "list", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string                 `json:"status"`
		Data   ir.ListMembersResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []ir.Member{{Addr: "bob", Priority: 9}}, resp.Data.Members)
}

func TestMembers_ReceiptJSON(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	out, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			TxID       string         `json:"tx_id"`
			Seq        int64          `json:"seq"`
			Attributes []ir.Attribute `json:"attributes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.NotEmpty(t, resp.Data.TxID)
	assert.Equal(t, []ir.Attribute{
		{Key: "method", Value: "instantiate"},
		{Key: "owner", Value: "alice"},
	}, resp.Data.Attributes)
}

func TestMembers_Rejections(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	_, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	_, _, err = runCLI(t, "", "add", "bob", "--db", db, "--sender", "alice")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"second instantiate", []string{"instantiate", "--sender", "alice"}, "AlreadyInitialized"},
		{"non-owner add", []string{"add", "carol", "--sender", "mallory"}, "Unauthorized"},
		{"non-owner remove of missing member", []string{"remove", "zed", "--sender", "mallory"}, "Unauthorized"},
		{"duplicate add", []string{"add", "bob", "--priority", "4", "--sender", "alice"}, "AlreadyAdded"},
		{"remove missing", []string{"remove", "zed", "--sender", "alice"}, "NotExist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--db", db, "--format", "json")
			out, _, err := runCLI(t, "", args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.True(t, IsReported(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	// Rejections never change state.
	out, _, err := runCLI(t, "", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "bob\t0\n", out)
}

func TestMembers_BeforeInstantiate(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	out, _, err := runCLI(t, "", "list", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NotInitialized]")

	out, _, err = runCLI(t, "", "add", "bob", "--db", db, "--sender", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NotInitialized]")
}

func TestMembers_Info(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	_, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)

	_, _, err = runCLI(t, "", "add", "bob", "--priority", "3", "--db", db, "--sender", "alice")
	require.NoError(t, err)

	hash, err := ir.StateHash(ir.State{Owner: "alice", List: []ir.Member{{Addr: "bob", Priority: 3}}})
	require.NoError(t, err)

	out, _, err := runCLI(t, "", "info", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, ir.ContractName+" "+ir.ContractVersion+"\nstate "+hash+"\n", out)

	out, _, err = runCLI(t, "", "info", "--db", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Status string     `json:"status"`
		Data   InfoResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, InfoResult{Contract: ir.ContractName, Version: ir.ContractVersion, StateHash: hash}, resp.Data)
}

func TestMembers_InfoStateHashTracksMembers(t *testing.T) {
	isolateEnv(t)
	db := testDB(t)

	_, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	before, _, err := runCLI(t, "", "info", "--db", db)
	require.NoError(t, err)

	_, _, err = runCLI(t, "", "add", "bob", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	during, _, err := runCLI(t, "", "info", "--db", db)
	require.NoError(t, err)
	assert.NotEqual(t, before, during)

	_, _, err = runCLI(t, "", "remove", "bob", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	after, _, err := runCLI(t, "", "info", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMembers_InfoBeforeInstantiate(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "info", "--db", testDB(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NotInitialized]")
}

func TestMembers_ArgValidation(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "add", "--db", testDB(t), "--sender", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = runCLI(t, "", "add", "bob", "--priority", "-1", "--db", testDB(t), "--sender", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMembers_UUIDv7TxIDs(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MEMBERREG_TX_IDS", "uuid7")
	db := testDB(t)

	out, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			TxID string `json:"tx_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.TxID, 36)
	assert.Equal(t, byte('7'), resp.Data.TxID[14], "UUID version nibble")
}
