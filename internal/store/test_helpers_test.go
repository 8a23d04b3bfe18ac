package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/memberreg/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTx creates a log entry with minimal required fields.
func createTestTx(id string, sender ir.Addr, method string, seq int64) ir.TxRecord {
	return ir.TxRecord{
		ID:         id,
		Seq:        seq,
		Sender:     sender,
		Kind:       ir.KindExecute,
		Method:     method,
		Msg:        `{"` + method + `":{}}`,
		Outcome:    ir.OutcomeOK,
		Attributes: []ir.Attribute{{Key: "method", Value: method}},
	}
}
