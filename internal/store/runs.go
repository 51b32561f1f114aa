package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/IgorHorta/acparser/internal/layout"
)

// Run statuses.
const (
	StatusOK        = "ok"
	StatusViolation = "violation"
)

// Run is one recorded validate invocation.
type Run struct {
	ID            string        `json:"id"`
	Document      string        `json:"document"`
	Layout        string        `json:"layout"`
	LayoutHash    string        `json:"layout_hash"`
	EngineVersion string        `json:"engine_version"`
	StartCursor   int           `json:"start_cursor"`
	EndCursor     int           `json:"end_cursor"`
	LineCount     int           `json:"line_count"`
	Status        string        `json:"status"`
	Violation     *RunViolation `json:"violation,omitempty"`
	Seq           int64         `json:"seq"`
}

// RunViolation is the first violation a run reported.
type RunViolation struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Field   string `json:"field,omitempty"`
}

// RecordRun appends a run to the log.
//
// An empty ID is filled from the store's generator. Seq is always assigned
// by the store. Status is derived from Violation. Returns the stored run.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	run.Status = StatusOK
	if run.Violation != nil {
		run.Status = StatusViolation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	if run.Seq, err = nextSeq(ctx, tx, "runs"); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, document, layout, layout_hash, engine_version, start_cursor, end_cursor, line_count, status, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Document,
		run.Layout,
		run.LayoutHash,
		run.EngineVersion,
		run.StartCursor,
		run.EndCursor,
		run.LineCount,
		run.Status,
		run.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if run.Violation != nil {
		detail, err := marshalViolation(run.Violation)
		if err != nil {
			return Run{}, fmt.Errorf("record run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO violations (run_id, kind, line, detail)
			VALUES (?, ?, ?, ?)
		`, run.ID, run.Violation.Kind, run.Violation.Line, detail)
		if err != nil {
			return Run{}, fmt.Errorf("record violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs of a document, oldest first.
// A limit <= 0 returns every run.
//
// Ordering: ORDER BY seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if the document has no runs.
func (s *Store) ListRuns(ctx context.Context, document string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT r.id, r.document, r.layout, r.layout_hash, r.engine_version,
			       r.start_cursor, r.end_cursor, r.line_count, r.status, r.seq, v.detail
			FROM runs r
			LEFT JOIN violations v ON v.run_id = r.id
			WHERE r.document = ?
			ORDER BY r.seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, document, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run    Run
		detail sql.NullString
	)
	err := rows.Scan(
		&run.ID,
		&run.Document,
		&run.Layout,
		&run.LayoutHash,
		&run.EngineVersion,
		&run.StartCursor,
		&run.EndCursor,
		&run.LineCount,
		&run.Status,
		&run.Seq,
		&detail,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if detail.Valid {
		v, err := unmarshalViolation(detail.String)
		if err != nil {
			return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
		}
		run.Violation = v
	}
	return run, nil
}

// marshalViolation converts a violation to canonical JSON TEXT for storage.
func marshalViolation(v *RunViolation) (string, error) {
	m := map[string]any{
		"kind":    v.Kind,
		"message": v.Message,
		"line":    v.Line,
		"start":   v.Start,
		"end":     v.End,
	}
	if v.Field != "" {
		m["field"] = v.Field
	}
	data, err := layout.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal violation: %w", err)
	}
	return string(data), nil
}

func unmarshalViolation(detail string) (*RunViolation, error) {
	var v RunViolation
	if err := json.Unmarshal([]byte(detail), &v); err != nil {
		return nil, fmt.Errorf("unmarshal violation: %w", err)
	}
	return &v, nil
}
