package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tracketl/internal/tasks"
)

// RenderUpdate formats u as a single status line, e.g. "[2/4] extract    Extracted 12 tracks".
func RenderUpdate(u tasks.ProgressUpdate) string {
	step := Help(fmt.Sprintf("[%d/%d]", u.Step, u.Total))
	phase := fmt.Sprintf("%-10s", u.Phase)

	switch u.Phase {
	case tasks.Done:
		return fmt.Sprintf("%s %s %s", step, OK(phase), OK(u.Message))
	case tasks.Failed:
		return fmt.Sprintf("%s %s %s", step, Err(phase), Err(u.Message))
	default:
		return fmt.Sprintf("%s %s %s", step, Title(phase), u.Message)
	}
}

// RenderSummary formats the outcome of a run over several lines.
func RenderSummary(result *tasks.RunResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder

	status := OK("✓ " + string(result.Status))
	if result.FailedStage != "" {
		status = Err(fmt.Sprintf("✗ %s (%s)", result.Status, result.FailedStage))
	}

	fmt.Fprintf(&b, "%s %s\n", Title("Run"), result.RunID)
	if result.Sequence > 0 {
		fmt.Fprintf(&b, "  sequence   #%d\n", result.Sequence)
	}
	fmt.Fprintf(&b, "  status     %s\n", status)
	fmt.Fprintf(&b, "  playlist   %s\n", result.PlaylistID)
	fmt.Fprintf(&b, "  extracted  %d\n", result.RowsExtracted)
	fmt.Fprintf(&b, "  cleaned    %d\n", result.RowsCleaned)
	if result.DryRun {
		fmt.Fprintf(&b, "  loaded     %s\n", Warn("skipped (preview)"))
	} else {
		fmt.Fprintf(&b, "  loaded     %d into %s\n", result.RowsLoaded, result.Table)
	}
	fmt.Fprintf(&b, "  duration   %s\n", result.Duration().Round(time.Millisecond))

	return b.String()
}
