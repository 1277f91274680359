package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/repositories"
	"github.com/desertthunder/tracketl/internal/services"
	"github.com/desertthunder/tracketl/internal/shared"
	"github.com/desertthunder/tracketl/internal/transform"
)

// Job describes one pipeline run.
type Job struct {
	Credentials services.Credentials
	PlaylistID  string
	Destination shared.DestinationConfig
	DryRun      bool // stop after transform; nothing is loaded or recorded
}

// RunResult contains the outcome of a pipeline run, successful or not.
type RunResult struct {
	RunID         string
	Sequence      int // zero when run history is disabled
	PlaylistID    string
	Table         string
	Status        models.RunStatus
	FailedStage   string
	RowsExtracted int
	RowsCleaned   int
	RowsLoaded    int
	Records       models.CleanRecordSet
	StartedAt     time.Time
	FinishedAt    time.Time
	DryRun        bool
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRecorder persists run history. It is satisfied by [repositories.RunRepository].
type RunRecorder interface {
	Create(run *models.Run) error
	Update(run *models.Run) error
}

// EngineOpts holds the optional collaborators of a [PipelineEngine].
type EngineOpts struct {
	Recorder RunRecorder // nil disables run history
	Logger   *log.Logger
}

// PipelineEngine runs authenticate, extract, transform and load strictly in sequence.
type PipelineEngine struct {
	auth      services.Authenticator
	extractor services.Extractor
	loader    repositories.Loader
	recorder  RunRecorder
	logger    *log.Logger
}

// NewPipelineEngine creates a new PipelineEngine with the provided stages.
func NewPipelineEngine(auth services.Authenticator, extractor services.Extractor, loader repositories.Loader, opts EngineOpts) *PipelineEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &PipelineEngine{
		auth:      auth,
		extractor: extractor,
		loader:    loader,
		recorder:  opts.Recorder,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

// Run executes job once.
//
// The returned result is populated as far as the pipeline got, including on failure. The error is a
// [shared.AuthenticationError], [shared.ExtractionError] or [shared.LoadError] naming the failing stage.
// Authentication failure means no extraction request is made; extraction failure means nothing is loaded.
func (e *PipelineEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, job Job) (*RunResult, error) {
	if e.auth == nil || e.extractor == nil || (e.loader == nil && !job.DryRun) {
		return nil, fmt.Errorf("%w: pipeline stages not initialized", shared.ErrInvalidConfig)
	}
	if job.PlaylistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	total := 4
	if job.DryRun {
		total = 3
	}

	run := models.NewRun(job.PlaylistID, job.Destination.Driver, job.Destination.Redacted(), job.Destination.Table)
	result := &RunResult{
		PlaylistID: job.PlaylistID,
		Table:      job.Destination.Table,
		Status:     models.RunRunning,
		StartedAt:  run.StartedAt,
		DryRun:     job.DryRun,
	}

	if !job.DryRun {
		e.recordStart(run)
	}
	result.RunID, result.Sequence = run.ID(), run.Sequence
	if result.RunID == "" {
		result.RunID = shared.GenerateID()
	}

	logger := shared.WithLogger(e.logger, "run_id", result.RunID)
	logger.Info("pipeline started", "playlist", job.PlaylistID, "destination", run.Destination, "dry_run", job.DryRun)

	fail := func(stage Phase, err error) (*RunResult, error) {
		result.Status = models.RunFailed
		result.FailedStage = stage.String()
		result.FinishedAt = time.Now().UTC()

		run.Finish(stage.String(), err)
		e.recordFinish(logger, run, result)

		logger.Error("pipeline failed", "stage", stage, "error", err, "status", shared.StatusCode(err))
		e.sendProgress(progress, failedUpdate(total, stage, err))
		return result, err
	}

	e.sendProgress(progress, authenticatingUpdate(total))
	token, err := e.auth.AcquireToken(ctx, job.Credentials)
	if err != nil {
		return fail(Authenticate, asStageError(err, Authenticate, ""))
	}
	e.sendProgress(progress, authenticatedUpdate(total))

	e.sendProgress(progress, extractingUpdate(total, job.PlaylistID))
	raw, err := e.extractor.Extract(ctx, job.PlaylistID, token)
	if err != nil {
		return fail(Extract, asStageError(err, Extract, ""))
	}
	result.RowsExtracted = len(raw)
	e.sendProgress(progress, extractedUpdate(total, len(raw)))
	logger.Info("tracks extracted", "rows", len(raw))

	clean := transform.Transform(raw)
	result.Records = clean
	result.RowsCleaned = len(clean)
	e.sendProgress(progress, transformedUpdate(total, len(raw), len(clean)))
	logger.Info("tracks cleaned", "rows", len(clean), "dropped", len(raw)-len(clean))

	if !job.DryRun {
		e.sendProgress(progress, loadingUpdate(total, job.Destination.Table))
		n, err := e.loader.Load(ctx, clean, job.Destination)
		if err != nil {
			return fail(Load, asStageError(err, Load, job.Destination.Table))
		}
		result.RowsLoaded = n
		e.sendProgress(progress, loadedUpdate(total, n, job.Destination.Table))
	}

	result.Status = models.RunSucceeded
	result.FinishedAt = time.Now().UTC()
	run.Finish("", nil)
	e.recordFinish(logger, run, result)

	logger.Info("pipeline finished", "loaded", result.RowsLoaded, "duration", result.Duration())
	e.sendProgress(progress, doneUpdate(total, result))
	return result, nil
}

// recordStart persists a new run. Recorder errors never fail the run.
func (e *PipelineEngine) recordStart(run *models.Run) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Create(run); err != nil {
		e.logger.Warn("failed to record run", "error", err)
	}
}

func (e *PipelineEngine) recordFinish(logger *log.Logger, run *models.Run, result *RunResult) {
	if e.recorder == nil || run.ID() == "" {
		return
	}
	run.RowsExtracted = result.RowsExtracted
	run.RowsCleaned = result.RowsCleaned
	run.RowsLoaded = result.RowsLoaded
	if err := e.recorder.Update(run); err != nil {
		logger.Warn("failed to update run history", "error", err)
	}
}

// asStageError wraps errors that do not already carry their stage's type.
func asStageError(err error, stage Phase, table string) error {
	switch stage {
	case Authenticate:
		var authErr *shared.AuthenticationError
		if errors.As(err, &authErr) {
			return err
		}
		return &shared.AuthenticationError{Err: err}
	case Extract:
		var extractErr *shared.ExtractionError
		if errors.As(err, &extractErr) {
			return err
		}
		return &shared.ExtractionError{Err: err}
	case Load:
		var loadErr *shared.LoadError
		if errors.As(err, &loadErr) {
			return err
		}
		return &shared.LoadError{Table: table, Err: err}
	}
	return err
}
