package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/roster"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ roster.SummaryWriter = (*RunService)(nil)

// RunService stores run summaries using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// SaveSummary stores the summary of a finished run under a new run ID.
func (s *RunService) SaveSummary(ctx context.Context, summary roster.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, total_records, data, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), summary.TotalRecords, string(data),
		formatTime(summary.StartedAt), formatTime(summary.FinishedAt))
	return err
}

// LastSummary returns the summary of the most recently finished run.
func (s *RunService) LastSummary(ctx context.Context) (*roster.Summary, error) {
	var data, finishedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT data, finished_at FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT 1
	`).Scan(&data, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.Errorf(roster.ENOTFOUND, "no runs recorded")
	}
	if err != nil {
		return nil, err
	}

	var summary roster.Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if summary.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	return &summary, nil
}
