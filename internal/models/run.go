package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded execution of the pipeline.
type Run struct {
	id        string
	createdAt time.Time
	updatedAt time.Time

	Sequence      int
	PlaylistID    string
	Driver        string
	Destination   string // redacted, see shared.DestinationConfig.Redacted
	Table         string
	Status        RunStatus
	FailedStage   string
	RowsExtracted int
	RowsCleaned   int
	RowsLoaded    int
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// NewRun creates a running [Run] for playlistID loading into table.
func NewRun(playlistID, driver, destination, table string) *Run {
	now := time.Now().UTC()
	return &Run{
		createdAt:   now,
		updatedAt:   now,
		PlaylistID:  playlistID,
		Driver:      driver,
		Destination: destination,
		Table:       table,
		Status:      RunRunning,
		StartedAt:   now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }

func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Finish marks the run as completed. A nil err means success.
func (r *Run) Finish(stage string, err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	if err == nil {
		r.Status = RunSucceeded
		r.FailedStage = ""
		r.ErrorMessage = ""
		return
	}
	r.Status = RunFailed
	r.FailedStage = stage
	r.ErrorMessage = err.Error()
}

// Duration returns how long the run took, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks if the run's data is valid.
func (r *Run) Validate() error {
	if r.PlaylistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if r.Table == "" {
		return fmt.Errorf("table is required")
	}
	switch r.Status {
	case RunRunning, RunSucceeded, RunFailed:
	default:
		return fmt.Errorf("invalid run status %q", r.Status)
	}
	if r.Status == RunFailed && r.FailedStage == "" {
		return fmt.Errorf("failed run must name the failed stage")
	}
	if r.RowsExtracted < 0 || r.RowsCleaned < 0 || r.RowsLoaded < 0 {
		return fmt.Errorf("row counts must not be negative")
	}
	return nil
}
