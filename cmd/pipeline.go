package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tracketl/internal/formatter"
	"github.com/desertthunder/tracketl/internal/repositories"
	"github.com/desertthunder/tracketl/internal/services"
	"github.com/desertthunder/tracketl/internal/shared"
	"github.com/desertthunder/tracketl/internal/tasks"
	"github.com/desertthunder/tracketl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Run extracts the playlist, cleans it and replaces the destination table.
//
// A failed stage is reported in the summary and returned, so the process exits non-zero.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	asJSON := cmd.Bool("json")

	result, err := r.runPipeline(ctx, cmd, false, asJSON)
	if result == nil {
		return err
	}

	if asJSON {
		if werr := r.writeJSON(newRunSummary(result, err), cmd.Bool("pretty")); werr != nil {
			return werr
		}
		return err
	}

	if werr := r.writePlain("%s\n", ui.RenderSummary(result)); werr != nil {
		return werr
	}
	if err != nil {
		return fmt.Errorf("pipeline failed at %s: %w", result.FailedStage, err)
	}
	return nil
}

// Preview runs the pipeline without loading and prints the cleaned tracks.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	// progress lines would corrupt the export on stdout
	result, err := r.runPipeline(ctx, cmd, true, output == "")
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Playlist %s", result.PlaylistID)
	if output != "" {
		if err := formatter.WriteExport(output, format, title, result.Records); err != nil {
			return err
		}
		return r.writePlain("%s\n", ui.OK(fmt.Sprintf("wrote %d tracks to %s", len(result.Records), output)))
	}

	data, err := formatter.Export(format, title, result.Records)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// runPipeline resolves configuration, wires the stages and executes one job.
func (r *Runner) runPipeline(ctx context.Context, cmd *cli.Command, dryRun, quiet bool) (*tasks.RunResult, error) {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := shared.SetLogLevel(r.logger, config.Log.Level); err != nil {
		return nil, err
	}

	if dryRun {
		err = config.ValidateSource()
	} else {
		err = config.Validate()
	}
	if err != nil {
		return nil, err
	}

	opts := tasks.EngineOpts{Logger: r.logger}
	if !dryRun && !cmd.Bool("no-history") {
		if db := r.openState(config.State); db != nil {
			defer db.Close()
			opts.Recorder = repositories.NewRunRepository(db)
		}
	}

	engine := tasks.NewPipelineEngine(
		services.NewSpotifyAuthenticator(config.Spotify.TokenURL, r.httpClient, r.logger),
		services.NewSpotifyExtractor(config.Spotify.APIURL, r.httpClient, r.logger),
		repositories.NewDestinationLoader(r.logger),
		opts,
	)

	job := tasks.Job{
		Credentials: services.Credentials{
			ClientID:     config.Spotify.ClientID,
			ClientSecret: config.Spotify.ClientSecret,
		},
		PlaylistID:  config.Spotify.PlaylistID,
		Destination: config.Destination,
		DryRun:      dryRun,
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if !quiet {
				r.writePlain("%s\n", ui.RenderUpdate(update))
			}
		}
	}()

	result, err := engine.Run(ctx, progress, job)
	close(progress)
	<-done

	return result, err
}

// openState opens the run history database, or returns nil when history is disabled or unavailable.
func (r *Runner) openState(cfg shared.StateConfig) *sql.DB {
	if cfg.Path == "" {
		return nil
	}
	db, err := shared.OpenStateDatabase(cfg)
	if err != nil {
		r.logger.Warn("run history unavailable, continuing without it", "path", cfg.Path, "error", err)
		return nil
	}
	return db
}

// runSummary is the JSON form of a pipeline result.
type runSummary struct {
	RunID         string  `json:"run_id"`
	Sequence      int     `json:"sequence,omitempty"`
	PlaylistID    string  `json:"playlist_id"`
	Table         string  `json:"table"`
	Status        string  `json:"status"`
	FailedStage   string  `json:"failed_stage,omitempty"`
	Error         string  `json:"error,omitempty"`
	RowsExtracted int     `json:"rows_extracted"`
	RowsCleaned   int     `json:"rows_cleaned"`
	RowsLoaded    int     `json:"rows_loaded"`
	DurationSecs  float64 `json:"duration_seconds"`
}

func newRunSummary(result *tasks.RunResult, err error) runSummary {
	s := runSummary{
		RunID:         result.RunID,
		Sequence:      result.Sequence,
		PlaylistID:    result.PlaylistID,
		Table:         result.Table,
		Status:        string(result.Status),
		FailedStage:   result.FailedStage,
		RowsExtracted: result.RowsExtracted,
		RowsCleaned:   result.RowsCleaned,
		RowsLoaded:    result.RowsLoaded,
		DurationSecs:  result.Duration().Seconds(),
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
