// Package tasks orchestrates the playlist pipeline with real-time progress reporting.
//
// # Stages
//
// [PipelineEngine.Run] executes one [Job] in four strictly sequential stages:
//
//  1. Authenticate : exchange client credentials for a bearer token
//  2. Extract : fetch the playlist's first page of tracks
//  3. Transform : dedupe and normalize with [transform.Transform]
//  4. Load : replace the destination table
//
// A failing stage stops the run; later stages never see partial input. A dry run stops after the
// transform and returns the clean records in the [RunResult].
//
// # Progress Reporting
//
// Progress is reported through a [ProgressUpdate] channel at every stage boundary, followed by a final
// Done or Failed update. Updates use select with default so a slow reader never blocks the pipeline.
//
// # Run History
//
// The optional [RunRecorder] (repositories.RunRepository) is told about each run when it starts and when it
// finishes. Recorder errors are logged and ignored.
package tasks
