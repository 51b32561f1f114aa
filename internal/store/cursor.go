package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Cursor is the persisted scan position of one document under one layout.
type Cursor struct {
	Document   string
	Layout     string
	LayoutHash string
	Cursor     int
	Seq        int64
}

// LoadCursor returns the saved cursor for a document and layout.
// The bool is false when none has been saved.
func (s *Store) LoadCursor(ctx context.Context, document, layoutID string) (Cursor, bool, error) {
	c := Cursor{Document: document, Layout: layoutID}
	err := s.db.QueryRowContext(ctx, `
		SELECT layout_hash, cursor, seq
		FROM scan_cursors
		WHERE document = ? AND layout = ?
	`, document, layoutID).Scan(&c.LayoutHash, &c.Cursor, &c.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Cursor{}, false, nil
	}
	if err != nil {
		return Cursor{}, false, fmt.Errorf("load cursor: %w", err)
	}
	return c, true, nil
}

// SaveCursor inserts or replaces the cursor of a document and layout.
// The seq field of c is ignored; the stored row gets the next logical seq,
// which is returned.
func (s *Store) SaveCursor(ctx context.Context, c Cursor) (int64, error) {
	if c.Cursor < 0 {
		return 0, fmt.Errorf("save cursor: negative cursor %d", c.Cursor)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save cursor: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "scan_cursors")
	if err != nil {
		return 0, fmt.Errorf("save cursor: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scan_cursors (document, layout, layout_hash, cursor, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document, layout) DO UPDATE SET
			layout_hash = excluded.layout_hash,
			cursor      = excluded.cursor,
			seq         = excluded.seq
	`, c.Document, c.Layout, c.LayoutHash, c.Cursor, seq)
	if err != nil {
		return 0, fmt.Errorf("save cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save cursor: %w", err)
	}
	return seq, nil
}

// ResetCursor forgets the saved cursor, so the next scan starts at line 0.
// Resetting a cursor that does not exist is not an error.
func (s *Store) ResetCursor(ctx context.Context, document, layoutID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM scan_cursors WHERE document = ? AND layout = ?
	`, document, layoutID)
	if err != nil {
		return fmt.Errorf("reset cursor: %w", err)
	}
	return nil
}
