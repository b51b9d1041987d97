// Package tasks runs the long chart operations with real-time progress reporting.
//
// # Core Operations
//
// [ChartEngine] exposes three loops:
//
//  1. [ChartEngine.Crawl] : weekly chart crawl
//     - Enumerates sample dates between start and end at a fixed step
//     - Appends one observation per chart entry
//     - Hands the whole table to an [ObservationSink] after every row
//     - Resumes from the latest checkpointed date plus one step
//
//  2. [ChartEngine.YearRanks] : year-end charts for a range of years
//
//  3. [ChartEngine.Enrich] : streaming metadata lookup
//     - Searches each row without a track ID, then fetches its audio features
//     - Records a per-row [EnrichResult] and never stops on a lookup miss
//     - Hands the whole table to a [TrackSink] after every processed row
//
// [Aggregate] is the pure reduction from observations to one [models.PeakSummary] per song.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
