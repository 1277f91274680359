package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/repositories"
	"github.com/desertthunder/tracketl/internal/shared"
	"github.com/desertthunder/tracketl/internal/ui"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	PlaylistID    string     `json:"playlist_id"`
	Destination   string     `json:"destination"`
	Table         string     `json:"table"`
	Status        string     `json:"status"`
	FailedStage   string     `json:"failed_stage,omitempty"`
	Error         string     `json:"error,omitempty"`
	RowsExtracted int        `json:"rows_extracted"`
	RowsCleaned   int        `json:"rows_cleaned"`
	RowsLoaded    int        `json:"rows_loaded"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

func newHistoryEntry(run *models.Run) historyEntry {
	return historyEntry{
		ID:            run.ID(),
		Sequence:      run.Sequence,
		PlaylistID:    run.PlaylistID,
		Destination:   run.Destination,
		Table:         run.Table,
		Status:        string(run.Status),
		FailedStage:   run.FailedStage,
		Error:         run.ErrorMessage,
		RowsExtracted: run.RowsExtracted,
		RowsCleaned:   run.RowsCleaned,
		RowsLoaded:    run.RowsLoaded,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
	}
}

// History lists recorded runs, or shows a single run when a sequence number is given.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}
	if config.State.Path == "" {
		return fmt.Errorf("%w: run history is disabled (state.path is empty)", shared.ErrMissingConfig)
	}

	db, err := shared.OpenStateDatabase(config.State)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)

	if arg := cmd.Args().First(); arg != "" {
		sequence, err := strconv.Atoi(arg)
		if err != nil || sequence <= 0 {
			return fmt.Errorf("%w: sequence must be a positive integer, got %q", shared.ErrInvalidArgument, arg)
		}
		run, err := repo.GetBySequence(sequence)
		if err != nil {
			return err
		}
		return r.showRun(cmd, run)
	}

	runs, err := repo.List(map[string]any{
		"playlist_id": cmd.String("playlist"),
		"status":      cmd.String("status"),
		"limit":       cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(runs))
		for i, run := range runs {
			entries[i] = newHistoryEntry(run)
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		return r.writePlain("%s\n", ui.Help("no runs recorded"))
	}

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("%-5s %-10s %-24s %-20s %8s %8s %8s", "#", "STATUS", "PLAYLIST", "STARTED", "EXTRACT", "CLEAN", "LOAD")))
	for _, run := range runs {
		if err := r.writePlain("%-5d %-10s %-24s %-20s %8d %8d %8d\n",
			run.Sequence, statusLabel(run), run.PlaylistID, run.StartedAt.Local().Format(time.DateTime),
			run.RowsExtracted, run.RowsCleaned, run.RowsLoaded); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) showRun(cmd *cli.Command, run *models.Run) error {
	if cmd.Bool("json") {
		return r.writeJSON(newHistoryEntry(run), cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Run #%d", run.Sequence)))
	r.writePlain("  id:          %s\n", run.ID())
	r.writePlain("  status:      %s\n", statusLabel(run))
	r.writePlain("  playlist:    %s\n", run.PlaylistID)
	r.writePlain("  destination: %s\n", run.Destination)
	r.writePlain("  rows:        %d extracted, %d cleaned, %d loaded\n", run.RowsExtracted, run.RowsCleaned, run.RowsLoaded)
	r.writePlain("  started:     %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		r.writePlain("  duration:    %s\n", run.Duration().Round(time.Millisecond))
	}
	if run.ErrorMessage != "" {
		return r.writePlain("  error:       %s\n", ui.Err(run.ErrorMessage))
	}
	return nil
}

func statusLabel(run *models.Run) string {
	switch run.Status {
	case models.RunSucceeded:
		return ui.OK(string(run.Status))
	case models.RunFailed:
		return ui.Err(fmt.Sprintf("%s (%s)", run.Status, run.FailedStage))
	default:
		return ui.Warn(string(run.Status))
	}
}
