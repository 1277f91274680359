// Package ui renders pipeline progress and results for the terminal.
//
// Styles come from a small [lipgloss] [Palette]: titles, success, error, warning and help text.
// [RenderUpdate] formats one [tasks.ProgressUpdate] as a single status line and [RenderSummary]
// formats the final [tasks.RunResult]. Both return plain strings so callers decide where to write them.
package ui
