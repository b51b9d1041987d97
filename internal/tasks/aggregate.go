package tasks

import (
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// AggregateOpts selects the grouping key of [Aggregate].
type AggregateOpts struct {
	// ByArtist groups by (title, artist) instead of title alone, keeping same-titled songs by different artists apart.
	ByArtist bool
	// FoldCase compares keys case-insensitively with collapsed whitespace.
	FoldCase bool
}

func (o AggregateOpts) key(obs models.ChartObservation) string {
	switch {
	case o.FoldCase && o.ByArtist:
		return shared.NormalizeTrackKey(obs.Title, obs.Artist)
	case o.FoldCase:
		return shared.NormalizeTitle(obs.Title)
	}
	if o.ByArtist {
		return obs.Title + "\x00" + obs.Artist
	}
	return obs.Title
}

type peakGroup struct {
	summary models.PeakSummary
	maxPeak int
}

// Aggregate reduces weekly observations to one [models.PeakSummary] per song.
//
// The artist is taken from the first observation of a group. Weeks is the maximum weeks-on-chart, PeakRank the
// minimum rank, and PeakDate the date of the first observation carrying the group's maximum peak position.
// Summaries come out in order of each group's first appearance. obs is not modified.
func Aggregate(obs []models.ChartObservation, opts AggregateOpts) []models.PeakSummary {
	groups := make(map[string]*peakGroup)
	order := make([]string, 0)

	for _, o := range obs {
		k := opts.key(o)
		g, ok := groups[k]
		if !ok {
			groups[k] = &peakGroup{
				summary: models.PeakSummary{
					Title:    o.Title,
					Artist:   o.Artist,
					Weeks:    o.WeeksOnChart,
					PeakRank: o.Rank,
					PeakDate: o.Date,
				},
				maxPeak: o.PeakPosition,
			}
			order = append(order, k)
			continue
		}

		if o.WeeksOnChart > g.summary.Weeks {
			g.summary.Weeks = o.WeeksOnChart
		}
		if o.Rank < g.summary.PeakRank {
			g.summary.PeakRank = o.Rank
		}
		if o.PeakPosition > g.maxPeak {
			g.maxPeak = o.PeakPosition
			g.summary.PeakDate = o.Date
		}
	}

	summaries := make([]models.PeakSummary, 0, len(order))
	for _, k := range order {
		summaries = append(summaries, groups[k].summary)
	}
	return summaries
}
