package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/chartx/internal/models"
)

const (
	defaultPlotWidth = 40
	labelWidth       = 32
)

// PlotPeaks draws one bar per summary, scaled to the longest chart run, labelled with the song and its peak rank.
//
// At most limit rows are drawn when limit > 0. width is the bar width in cells; non-positive widths use a default.
func PlotPeaks(summaries []models.PeakSummary, width, limit int) string {
	if len(summaries) == 0 {
		return styles.help.Render("no summaries to plot")
	}
	if width <= 0 {
		width = defaultPlotWidth
	}
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}

	longest := 0
	for _, s := range summaries {
		longest = max(longest, s.Weeks)
	}

	label := lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth)
	rows := make([]string, 0, len(summaries)+1)
	rows = append(rows, styles.title.Render("Weeks on chart"))

	for _, s := range summaries {
		n := 0
		if longest > 0 {
			n = s.Weeks * width / longest
		}
		if s.Weeks > 0 && n == 0 {
			n = 1
		}

		name := truncate(fmt.Sprintf("%s - %s", s.Title, s.Artist), labelWidth-1)
		bar := styles.bar.Render(strings.Repeat("█", n))
		stats := styles.peak.Render(fmt.Sprintf("#%d", s.PeakRank)) + styles.help.Render(fmt.Sprintf(" %dw", s.Weeks))

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(name), bar, " ", stats))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
