package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardlogic/warsat/internal/theory"
)

// StoredResult is a persisted query result. Payload is the JSON form of
// the solve.Result that produced it.
type StoredResult struct {
	RunID   string          `json:"run_id"`
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, spec_hash, spec_path, created_at, props, constraints, vars, clauses
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		var size theory.Size
		if err := rows.Scan(&run.ID, &run.SpecHash, &run.SpecPath, &created,
			&size.Props, &size.Constraints, &size.Vars, &size.Clauses); err != nil {
			return nil, fmt.Errorf("store: list runs: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("store: run %s has malformed timestamp %q: %w", run.ID, created, err)
		}
		run.Size = size
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Results returns every stored result of one run, ordered by name.
func (s *Store) Results(ctx context.Context, runID string) ([]StoredResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, kind, payload FROM results WHERE run_id = ? ORDER BY name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: results for %s: %w", runID, err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var res StoredResult
		var payload string
		if err := rows.Scan(&res.RunID, &res.Name, &res.Kind, &payload); err != nil {
			return nil, fmt.Errorf("store: results for %s: %w", runID, err)
		}
		res.Payload = json.RawMessage(payload)
		results = append(results, res)
	}
	return results, rows.Err()
}
