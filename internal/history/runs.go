package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"defaultpoetry/internal/merge"
)

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, command, project_dir, force, status, failed_steps_json, error_message, started_at, finished_at, (SELECT COUNT(1) FROM decisions d WHERE d.run_id = runs.id)"

// BeginRun records the start of a run and returns it.
func (s *Store) BeginRun(ctx context.Context, command, projectDir string, force bool) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		Command:    command,
		ProjectDir: projectDir,
		Force:      force,
		Status:     StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, command, project_dir, force, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.ProjectDir, boolToInt(force), string(run.Status), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordDecisions appends decisions to a run, continuing its sequence.
func (s *Store) RecordDecisions(ctx context.Context, runID string, decisions []merge.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	return s.txWithRetry(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq), 0) FROM decisions WHERE run_id = ?", runID,
		).Scan(&next); err != nil {
			return fmt.Errorf("read decision sequence: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO decisions (run_id, seq, action, path, value, previous, source_kind, target_kind) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare decision insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range decisions {
			next++
			rec := NewDecisionRecord(d)
			if _, err := stmt.ExecContext(ctx,
				runID, next, rec.Action, rec.Path,
				nullableString(rec.Value), nullableString(rec.Previous),
				nullableString(rec.SourceKind), nullableString(rec.TargetKind),
			); err != nil {
				return fmt.Errorf("insert decision: %w", err)
			}
		}
		return nil
	})
}

// FinishRun stores the outcome of a run. A non-nil runErr marks it failed;
// otherwise failed steps mark it partial.
func (s *Store) FinishRun(ctx context.Context, runID string, failedSteps []string, runErr error) error {
	status := StatusSucceeded
	var message string
	switch {
	case runErr != nil:
		status = StatusFailed
		message = runErr.Error()
	case len(failedSteps) > 0:
		status = StatusPartial
	}
	var stepsJSON any
	if len(failedSteps) > 0 {
		data, err := json.Marshal(failedSteps)
		if err != nil {
			return fmt.Errorf("encode failed steps: %w", err)
		}
		stepsJSON = string(data)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, failed_steps_json = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(status), stepsJSON, nullableString(message), time.Now().UTC().Format(timeLayout), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose id equals or starts with id, including its
// decisions.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	var run *Run
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	case len(matches) == 1:
		run = matches[0]
	default:
		for _, m := range matches {
			if m.ID == id {
				run = m
			}
		}
		if run == nil {
			return nil, fmt.Errorf("%s: %w", id, ErrAmbiguousRunID)
		}
	}

	decisions, err := s.decisions(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Decisions = decisions
	return run, nil
}

func (s *Store) decisions(ctx context.Context, runID string) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, action, path, value, previous, source_kind, target_kind FROM decisions WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var (
			rec                                     DecisionRecord
			value, previous, sourceKind, targetKind sql.NullString
		)
		if err := rows.Scan(&rec.Seq, &rec.Action, &rec.Path, &value, &previous, &sourceKind, &targetKind); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.Value = value.String
		rec.Previous = previous.String
		rec.SourceKind = sourceKind.String
		rec.TargetKind = targetKind.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		force       int
		status      string
		stepsJSON   sql.NullString
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Command,
		&run.ProjectDir,
		&force,
		&status,
		&stepsJSON,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
		&run.DecisionCount,
	); err != nil {
		return nil, err
	}
	run.Force = force != 0
	run.Status = Status(status)
	run.ErrorMessage = errorMsg.String
	if stepsJSON.Valid && stepsJSON.String != "" {
		if err := json.Unmarshal([]byte(stepsJSON.String), &run.FailedSteps); err != nil {
			return nil, fmt.Errorf("decode failed steps: %w", err)
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
