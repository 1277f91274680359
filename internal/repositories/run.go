package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/shared"
)

const runColumns = `
	id, sequence, playlist_id, driver, destination, table_name, status,
	failed_stage, rows_extracted, rows_cleaned, rows_loaded, error_message,
	started_at, finished_at, created_at, updated_at
`

// RunRepository implements models.Repository[*models.Run] for pipeline run history.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with a generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.PlaylistID,
		run.Driver,
		run.Destination,
		run.Table,
		string(run.Status),
		nullString(run.FailedStage),
		run.RowsExtracted,
		run.RowsCleaned,
		run.RowsLoaded,
		nullString(run.ErrorMessage),
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	run.SetID(id)
	run.Sequence = sequence
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	return scanRun(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its sequence number
func (r *RunRepository) GetBySequence(sequence int) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE sequence = ?`
	return scanRun(r.db.QueryRow(query, sequence))
}

// Update persists the mutable fields of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE runs
		SET status = ?, failed_stage = ?, rows_extracted = ?, rows_cleaned = ?,
			rows_loaded = ?, error_message = ?, finished_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		string(run.Status),
		nullString(run.FailedStage),
		run.RowsExtracted,
		run.RowsCleaned,
		run.RowsLoaded,
		nullString(run.ErrorMessage),
		run.FinishedAt,
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	run.SetUpdatedAt(now)
	return nil
}

// List retrieves runs matching criteria, newest first.
//
// Recognized criteria: "playlist_id" (string), "status" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row from either [sql.Row] or [sql.Rows] into a [models.Run]
func scanRun(s scanner) (*models.Run, error) {
	var (
		id            string
		sequence      int
		playlistID    string
		driver        string
		destination   string
		tableName     string
		status        string
		failedStage   sql.NullString
		rowsExtracted int
		rowsCleaned   int
		rowsLoaded    int
		errorMessage  sql.NullString
		startedAt     time.Time
		finishedAt    sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := s.Scan(
		&id, &sequence, &playlistID, &driver, &destination, &tableName, &status,
		&failedStage, &rowsExtracted, &rowsCleaned, &rowsLoaded, &errorMessage,
		&startedAt, &finishedAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(playlistID, driver, destination, tableName)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.Sequence = sequence
	run.Status = models.RunStatus(status)
	run.FailedStage = failedStage.String
	run.RowsExtracted = rowsExtracted
	run.RowsCleaned = rowsCleaned
	run.RowsLoaded = rowsLoaded
	run.ErrorMessage = errorMessage.String
	run.StartedAt = startedAt
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
