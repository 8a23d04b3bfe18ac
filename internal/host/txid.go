package host

import (
	"github.com/google/uuid"

	"github.com/roach88/memberreg/internal/ir"
)

// TxIDGenerator assigns the ID of a logged transaction.
// Implemented by ContentIDGenerator (default), UUIDv7Generator and
// testutil.SequentialIDGenerator.
type TxIDGenerator interface {
	Generate(sender ir.Addr, msg ir.Msg, seq int64) (string, error)
}

// ContentIDGenerator derives the ID from the transaction content.
// Replaying the same calls against a fresh store yields the same IDs.
type ContentIDGenerator struct{}

// Generate returns ir.TxID(sender, msg, seq).
func (ContentIDGenerator) Generate(sender ir.Addr, msg ir.Msg, seq int64) (string, error) {
	return ir.TxID(sender, msg, seq)
}

// UUIDv7Generator generates time-sortable UUIDv7 transaction IDs.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate ignores the transaction content and returns a fresh UUIDv7.
func (UUIDv7Generator) Generate(ir.Addr, ir.Msg, int64) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
