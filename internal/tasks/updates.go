package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current stage number
	Total   int    // Number of stages in this run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data (row counts, the failing error)
}

// Pipeline phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	Extract
	Transform
	Load
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case Extract:
		return "extract"
	case Transform:
		return "transform"
	case Load:
		return "load"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

func authenticatingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   total,
		Message: "Requesting access token...",
	}
}

func authenticatedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   total,
		Message: "Access token acquired",
	}
}

func extractingUpdate(total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Extract,
		Step:    2,
		Total:   total,
		Message: fmt.Sprintf("Fetching tracks for playlist %s...", playlistID),
	}
}

func extractedUpdate(total, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Extract,
		Step:    2,
		Total:   total,
		Message: fmt.Sprintf("Extracted %d tracks", rows),
		Data:    rows,
	}
}

func transformedUpdate(total, extracted, cleaned int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Transform,
		Step:    3,
		Total:   total,
		Message: fmt.Sprintf("Kept %d of %d tracks after cleaning", cleaned, extracted),
		Data:    cleaned,
	}
}

func loadingUpdate(total int, table string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Load,
		Step:    4,
		Total:   total,
		Message: fmt.Sprintf("Replacing table %s...", table),
	}
}

func loadedUpdate(total, rows int, table string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Load,
		Step:    4,
		Total:   total,
		Message: fmt.Sprintf("Loaded %d rows into %s", rows, table),
		Data:    rows,
	}
}

func doneUpdate(total int, result *RunResult) ProgressUpdate {
	msg := "Pipeline finished"
	if result.DryRun {
		msg = "Preview finished, nothing was loaded"
	}
	return ProgressUpdate{
		Phase:   Done,
		Step:    total,
		Total:   total,
		Message: msg,
		Data:    result,
	}
}

func failedUpdate(total int, stage Phase, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Pipeline failed during %s: %v", stage, err),
		Data:    err,
	}
}
