// Package models defines the chart and track records passed between chartx's sources, loops and sinks.
//
// Chart data:
//   - [ChartEntry] : one song's row in a chart snapshot, as returned by a chart source
//   - [ChartObservation] : a [ChartEntry] stamped with the chart date it was read from
//   - [PeakSummary] : one row per song, reduced from its observations
//   - [YearRank] : a row of a year-end chart
//
// Track data:
//   - [TrackRecord] : chart fields plus streaming metadata and [AudioFeatures], filled in by enrichment
//   - [TrackMatch] : a search hit from the streaming provider
//
// Run history:
//   - [CrawlRun] : a persisted record of one crawl, year or enrichment job
package models
