package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/VitoPalumboPodcast/Invalsi/ent"
)

// Every event table draws its sequence numbers from global_sequence, so
// LLM calls and session events can be ordered against each other even when
// the TUI and the HTTP server write to the same file. The counter is raw SQL
// because ent has no database-level atomic counter.

func createSequence(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return fmt.Errorf("create sequence table: %w", err)
	}
	_, err = db.ExecContext(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// eventRepo implements EventRepo over the ent client.
type eventRepo struct {
	client *ent.Client
}

// appendEvent allocates a sequence number and runs insert in the same
// transaction. A failed insert rolls the allocation back, leaving no gap.
func (r *eventRepo) appendEvent(ctx context.Context, insert func(tx *ent.Tx, seq int64) error) error {
	tx, err := r.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin event: %w", err)
	}
	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return rollback(tx, err)
	}
	if err := insert(tx, seq); err != nil {
		return rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}
	return nil
}

func nextSequence(ctx context.Context, tx *ent.Tx) (int64, error) {
	rows, err := tx.QueryContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	var seq int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

func rollback(tx *ent.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: rollback: %v", err, rerr)
	}
	return err
}

// LastSequence returns the most recently allocated sequence number, 0 when
// no event was ever written.
func (r *eventRepo) LastSequence(ctx context.Context) (int64, error) {
	rows, err := r.client.QueryContext(ctx, `SELECT next_val FROM global_sequence WHERE id = 1`)
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	defer rows.Close()

	var next int64
	if rows.Next() {
		if err := rows.Scan(&next); err != nil {
			return 0, fmt.Errorf("read sequence: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return next - 1, nil
}
