package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/memberreg/internal/ir"
)

// ErrTxNotFound is returned by ReadTx when no log entry has the given ID.
var ErrTxNotFound = errors.New("tx not found")

// TxFilter narrows ReadTxLog. Zero fields match everything.
type TxFilter struct {
	Sender ir.Addr
	Method string
	// Limit caps the number of entries returned. Zero means no limit.
	Limit int
}

const txColumns = `id, seq, sender, kind, method, msg, outcome, attributes`

// ReadTxLog returns log entries matching filter, ordered by seq ASC.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadTxLog(ctx context.Context, filter TxFilter) ([]ir.TxRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.Sender != "" {
		where = append(where, "sender = ?")
		args = append(args, string(filter.Sender))
	}
	if filter.Method != "" {
		where = append(where, "method = ?")
		args = append(args, filter.Method)
	}

	query := "SELECT " + txColumns + " FROM tx_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tx log: %w", err)
	}
	defer rows.Close()

	records := []ir.TxRecord{}
	for rows.Next() {
		rec, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tx log: %w", err)
	}

	return records, nil
}

// ReadTx returns the log entry with the given ID.
func (s *Store) ReadTx(ctx context.Context, id string) (ir.TxRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+txColumns+" FROM tx_log WHERE id = ?", id)
	rec, err := scanTx(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.TxRecord{}, fmt.Errorf("read tx %s: %w", id, ErrTxNotFound)
	}
	if err != nil {
		return ir.TxRecord{}, err
	}
	return rec, nil
}

// LastSeq returns the highest seq in the log, or 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	return lastSeq(ctx, s.db)
}

func lastSeq(ctx context.Context, q querier) (int64, error) {
	var seq int64
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM tx_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTx scans a single tx_log row.
func scanTx(row rowScanner) (ir.TxRecord, error) {
	var (
		rec    ir.TxRecord
		sender string
		attrs  string
	)

	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&sender,
		&rec.Kind,
		&rec.Method,
		&rec.Msg,
		&rec.Outcome,
		&attrs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.TxRecord{}, err
	}
	if err != nil {
		return ir.TxRecord{}, fmt.Errorf("scan tx: %w", err)
	}

	rec.Sender = ir.Addr(sender)
	rec.Attributes, err = unmarshalAttributes(attrs)
	if err != nil {
		return ir.TxRecord{}, fmt.Errorf("scan tx %s: %w", rec.ID, err)
	}

	return rec, nil
}
