package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/memberreg/internal/ir"
)

// getRecord reads one record. Missing keys return (nil, false, nil).
func getRecord(ctx context.Context, q querier, key string) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record %q: %w", key, err)
	}
	return value, true, nil
}

// setRecord upserts one record.
func setRecord(ctx context.Context, q querier, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("set record: empty key")
	}
	if value == nil {
		value = []byte{}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO records (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, bytes.Clone(value))
	if err != nil {
		return fmt.Errorf("set record %q: %w", key, err)
	}
	return nil
}

// appendTx inserts one log entry.
// Both id and seq are unique; a repeated entry is an error, not a no-op.
func appendTx(ctx context.Context, q querier, rec ir.TxRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("append tx: empty id")
	}
	if rec.Outcome == "" {
		return fmt.Errorf("append tx %s: empty outcome", rec.ID)
	}

	attrs, err := marshalAttributes(rec.Attributes)
	if err != nil {
		return fmt.Errorf("append tx %s: %w", rec.ID, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO tx_log (id, seq, sender, kind, method, msg, outcome, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Seq,
		string(rec.Sender),
		rec.Kind,
		rec.Method,
		rec.Msg,
		rec.Outcome,
		attrs,
	)
	if err != nil {
		return fmt.Errorf("append tx %s: %w", rec.ID, err)
	}
	return nil
}

// AppendTx appends a log entry in its own transaction.
// Host calls append through Tx.AppendTx instead so the entry commits with
// the state it describes.
func (s *Store) AppendTx(ctx context.Context, rec ir.TxRecord) error {
	return appendTx(ctx, s.db, rec)
}
