package formatter

import (
	"strconv"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws rows under headers in a rounded box. Missing cells render empty.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// limitRows returns the first n rows, or all of them when n <= 0.
func limitRows[T any](rows []T, n int) []T {
	if n > 0 && n < len(rows) {
		return rows[:n]
	}
	return rows
}

// RenderPeaksTable renders peak summaries, at most limit rows when limit > 0.
func RenderPeaksTable(summaries []models.PeakSummary, limit int) string {
	rows := make([][]string, 0, len(summaries))
	for i, s := range limitRows(summaries, limit) {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Title,
			s.Artist,
			strconv.Itoa(s.PeakRank),
			strconv.Itoa(s.Weeks),
			shared.FormatDate(s.PeakDate),
		})
	}
	return renderTable(
		[]string{"#", "Title", "Artist", "Peak", "Weeks", "Peak Date"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

// RenderYearRanksTable renders year-end rows, at most limit rows when limit > 0.
func RenderYearRanksTable(ranks []models.YearRank, limit int) string {
	rows := make([][]string, 0, len(ranks))
	for _, r := range limitRows(ranks, limit) {
		rows = append(rows, []string{strconv.Itoa(r.Year), strconv.Itoa(r.Rank), r.Title, r.Artist})
	}
	return renderTable(
		[]string{"Year", "Rank", "Title", "Artist"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
	)
}

// RenderRunsTable renders crawl run history.
func RenderRunsTable(runs []models.CrawlRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			r.ID[:min(8, len(r.ID))],
			r.Kind,
			r.Chart,
			string(r.Status),
			strconv.Itoa(r.Rows),
			r.StartedAt.Format("2006-01-02 15:04"),
			finished,
			r.Error,
		})
	}
	return renderTable(
		[]string{"ID", "Kind", "Chart", "Status", "Rows", "Started", "Finished", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
