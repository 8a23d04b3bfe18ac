package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolateEnv unsets every MEMBERREG_* variable for the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MEMBERREG_CONFIG", "MEMBERREG_DB", "MEMBERREG_SENDER", "MEMBERREG_FORMAT",
		"MEMBERREG_LOG_LEVEL", "MEMBERREG_TX_IDS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// testDB returns a database path in a fresh temp dir.
func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "memberreg.db")
}

// runCLI executes the root command with args and returns stdout, stderr
// and the command error.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
