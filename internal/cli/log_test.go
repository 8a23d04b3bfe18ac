package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLog creates a registry with two commits and one rejection.
func seedLog(t *testing.T) string {
	t.Helper()
	db := testDB(t)

	_, _, err := runCLI(t, "", "instantiate", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	_, _, err = runCLI(t, "", "add", "bob", "--priority", "2", "--db", db, "--sender", "alice")
	require.NoError(t, err)
	_, _, err = runCLI(t, "", "remove", "bob", "--db", db, "--sender", "mallory")
	require.Error(t, err)
	return db
}

func TestLog_Text(t *testing.T) {
	isolateEnv(t)
	db := seedLog(t)

	out, _, err := runCLI(t, "", "log", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "[1] alice instantiate ok\n"+
		"[2] alice add ok\n"+
		"[3] mallory remove Unauthorized\n"+
		"\n"+
		"3 transactions (2 committed, 1 rejected)\n", out)
}

func TestLog_JSON(t *testing.T) {
	isolateEnv(t)
	db := seedLog(t)

	out, _, err := runCLI(t, "", "log", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   LogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Entries, 3)
	assert.Equal(t, LogStats{Total: 3, Committed: 2, Rejected: 1}, resp.Data.Stats)

	add := resp.Data.Entries[1]
	assert.Equal(t, int64(2), add.Seq)
	assert.Equal(t, "execute", add.Kind)
	assert.JSONEq(t, `{"add":{"addr":"bob","priority":2}}`, string(add.Msg))
	assert.Equal(t, "ok", add.Outcome)

	rejected := resp.Data.Entries[2]
	assert.Equal(t, "Unauthorized", rejected.Outcome)
	assert.Empty(t, rejected.Attributes)
}

func TestLog_Filters(t *testing.T) {
	isolateEnv(t)
	db := seedLog(t)

	out, _, err := runCLI(t, "", "log", "--db", db, "--from", "mallory")
	require.NoError(t, err)
	assert.Contains(t, out, "[3] mallory remove Unauthorized")
	assert.NotContains(t, out, "alice")

	out, _, err = runCLI(t, "", "log", "--db", db, "--method", "add")
	require.NoError(t, err)
	assert.Contains(t, out, "[2] alice add ok")
	assert.Contains(t, out, "1 transactions")

	out, _, err = runCLI(t, "", "log", "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] alice instantiate ok")
	assert.NotContains(t, out, "[2]")
}

func TestLog_ByID(t *testing.T) {
	isolateEnv(t)
	db := seedLog(t)

	out, _, err := runCLI(t, "", "log", "--db", db, "--format", "json")
	require.NoError(t, err)
	var all struct {
		Data LogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all.Data.Entries, 3)
	want := all.Data.Entries[2]

	out, _, err = runCLI(t, "", "log", "--db", db, "--id", want.ID, "--format", "json")
	require.NoError(t, err)
	var one struct {
		Data LogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &one))
	require.Len(t, one.Data.Entries, 1)
	assert.Equal(t, want, one.Data.Entries[0])
	assert.Equal(t, LogStats{Total: 1, Rejected: 1}, one.Data.Stats)

	out, _, err = runCLI(t, "", "log", "--db", db, "--id", want.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "[3] mallory remove Unauthorized")
	assert.NotContains(t, out, "[1]")
}

func TestLog_ByIDNotFound(t *testing.T) {
	isolateEnv(t)
	db := seedLog(t)

	_, _, err := runCLI(t, "", "log", "--db", db, "--id", "no-such-tx")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "no-such-tx")
}

func TestLog_ByIDExcludesFilters(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "log", "--db", testDB(t), "--id", "x", "--from", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLog_Empty(t *testing.T) {
	isolateEnv(t)

	out, _, err := runCLI(t, "", "log", "--db", testDB(t))
	require.NoError(t, err)
	assert.Equal(t, "(no transactions)\n", out)
}

func TestLog_InvalidLimit(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "log", "--db", testDB(t), "--limit", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "tx-0001", truncateID("tx-0001"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
