package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardlogic/warsat/internal/solve"
	"github.com/cardlogic/warsat/internal/theory"
)

// Run is one recorded analysis run.
type Run struct {
	ID        string      `json:"id"`
	SpecHash  string      `json:"spec_hash"`
	SpecPath  string      `json:"spec_path"`
	CreatedAt time.Time   `json:"created_at"`
	Size      theory.Size `json:"size"`
}

// RecordRun writes a run and its query results in one transaction.
// Returns the stored run with its freshly minted identifier.
func (s *Store) RecordRun(ctx context.Context, specPath, specHash string, size theory.Size, results map[string]solve.Result) (Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("store: run id: %w", err)
	}
	run := Run{
		ID:        id.String(),
		SpecHash:  specHash,
		SpecPath:  specPath,
		CreatedAt: time.Now().UTC(),
		Size:      size,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("store: record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, spec_hash, spec_path, created_at, props, constraints, vars, clauses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SpecHash,
		run.SpecPath,
		run.CreatedAt.Format(time.RFC3339Nano),
		size.Props,
		size.Constraints,
		size.Vars,
		size.Clauses,
	)
	if err != nil {
		return Run{}, fmt.Errorf("store: record run: %w", err)
	}

	for name, res := range results {
		payload, err := json.Marshal(res)
		if err != nil {
			return Run{}, fmt.Errorf("store: marshal result %q: %w", name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results (run_id, name, kind, payload) VALUES (?, ?, ?, ?)
		`, run.ID, name, res.Query.Kind, string(payload))
		if err != nil {
			return Run{}, fmt.Errorf("store: record result %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("store: record run: %w", err)
	}
	return run, nil
}
