// Package ui renders long-running chart jobs and their results in the terminal.
//
// [Monitor] is a bubbletea model (Elm-style Init/Update/View) that runs a [Job] in the background and shows a
// spinner, the latest [tasks.ProgressUpdate], a step counter and a short log of recent chart dates.
// Progress flows through the same non-blocking channel the CLI uses, so the job never waits on the screen.
// Pressing q cancels the job's context; the monitor exits once the job has returned and its last checkpoint is on disk.
//
// [PlotPeaks] draws peak summaries as a horizontal bar chart with lipgloss.
package ui
