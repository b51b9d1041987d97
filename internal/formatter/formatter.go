// package formatter encodes chart tables as CSV checkpoints and renders them as terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

var (
	ObservationHeaders = []string{"date", "title", "artist", "rank", "peak_position", "previous_rank", "weeks_on_chart"}
	SummaryHeaders     = []string{"title", "artist", "weeks", "peak_rank", "peak_date"}
	YearRankHeaders    = []string{"rank_year", "title", "artist", "rank"}
	TrackHeaders       = []string{
		"title", "artist", "peak_rank", "weeks", "peak_date",
		"id", "name", "album", "popularity", "collaboration", "release_date",
		"danceability", "energy", "key", "loudness", "mode", "speechiness", "acousticness",
		"instrumentalness", "liveness", "valence", "tempo", "time_signature", "duration_ms",
	}
)

// writeCSV writes headers followed by one record per row.
func writeCSV(headers []string, n int, record func(i int) []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range n {
		if err := writer.Write(record(i)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// readCSV reads every record from r and checks the header row against headers.
// An empty input yields no records.
func readCSV(r io.Reader, headers []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(headers)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCheckpoint, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !slices.Equal(records[0], headers) {
		return nil, fmt.Errorf("%w: unexpected header %v", shared.ErrCheckpoint, records[0])
	}
	return records[1:], nil
}

// ExportObservationsCSV encodes observations with columns: date, title, artist, rank, peak_position, previous_rank, weeks_on_chart
func ExportObservationsCSV(rows []models.ChartObservation) ([]byte, error) {
	return writeCSV(ObservationHeaders, len(rows), func(i int) []string {
		r := rows[i]
		prev := ""
		if r.PreviousRank != nil {
			prev = strconv.Itoa(*r.PreviousRank)
		}
		return []string{
			shared.FormatDate(r.Date),
			r.Title,
			r.Artist,
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.PeakPosition),
			prev,
			strconv.Itoa(r.WeeksOnChart),
		}
	})
}

// ParseObservationsCSV decodes the output of [ExportObservationsCSV].
func ParseObservationsCSV(r io.Reader) ([]models.ChartObservation, error) {
	records, err := readCSV(r, ObservationHeaders)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ChartObservation, 0, len(records))
	for i, rec := range records {
		p := fieldParser{line: i + 2}
		obs := models.ChartObservation{
			Date: p.parseDate(rec[0]),
			ChartEntry: models.ChartEntry{
				Title:        rec[1],
				Artist:       rec[2],
				Rank:         p.atoi(rec[3]),
				PeakPosition: p.atoi(rec[4]),
				PreviousRank: p.optionalAtoi(rec[5]),
				WeeksOnChart: p.atoi(rec[6]),
			},
		}
		if p.err != nil {
			return nil, p.err
		}
		rows = append(rows, obs)
	}
	return rows, nil
}

// ExportSummariesCSV encodes peak summaries with columns: title, artist, weeks, peak_rank, peak_date
func ExportSummariesCSV(rows []models.PeakSummary) ([]byte, error) {
	return writeCSV(SummaryHeaders, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.Title, r.Artist, strconv.Itoa(r.Weeks), strconv.Itoa(r.PeakRank), shared.FormatDate(r.PeakDate)}
	})
}

// ParseSummariesCSV decodes the output of [ExportSummariesCSV].
func ParseSummariesCSV(r io.Reader) ([]models.PeakSummary, error) {
	records, err := readCSV(r, SummaryHeaders)
	if err != nil {
		return nil, err
	}

	rows := make([]models.PeakSummary, 0, len(records))
	for i, rec := range records {
		p := fieldParser{line: i + 2}
		s := models.PeakSummary{
			Title:    rec[0],
			Artist:   rec[1],
			Weeks:    p.atoi(rec[2]),
			PeakRank: p.atoi(rec[3]),
			PeakDate: p.parseDate(rec[4]),
		}
		if p.err != nil {
			return nil, p.err
		}
		rows = append(rows, s)
	}
	return rows, nil
}

// ExportYearRanksCSV encodes year-end rows with columns: rank_year, title, artist, rank
func ExportYearRanksCSV(rows []models.YearRank) ([]byte, error) {
	return writeCSV(YearRankHeaders, len(rows), func(i int) []string {
		r := rows[i]
		return []string{strconv.Itoa(r.Year), r.Title, r.Artist, strconv.Itoa(r.Rank)}
	})
}

// ExportTracksCSV encodes the enrichment table. Feature columns are empty for rows without features.
func ExportTracksCSV(rows []models.TrackRecord) ([]byte, error) {
	return writeCSV(TrackHeaders, len(rows), func(i int) []string {
		r := rows[i]
		record := []string{
			r.Title,
			r.Artist,
			strconv.Itoa(r.PeakRank),
			strconv.Itoa(r.Weeks),
			shared.FormatDate(r.PeakDate),
			r.ID,
			r.Name,
			r.Album,
			strconv.Itoa(r.Popularity),
			strconv.FormatBool(r.Collaboration),
			r.ReleaseDate,
		}

		if f := r.Features; f != nil {
			record = append(record,
				formatFloat(f.Danceability),
				formatFloat(f.Energy),
				strconv.Itoa(f.Key),
				formatFloat(f.Loudness),
				strconv.Itoa(f.Mode),
				formatFloat(f.Speechiness),
				formatFloat(f.Acousticness),
				formatFloat(f.Instrumentalness),
				formatFloat(f.Liveness),
				formatFloat(f.Valence),
				formatFloat(f.Tempo),
				strconv.Itoa(f.TimeSignature),
				strconv.Itoa(f.DurationMS),
			)
		} else {
			record = append(record, make([]string, len(TrackHeaders)-len(record))...)
		}
		return record
	})
}

// ParseTracksCSV decodes the output of [ExportTracksCSV].
func ParseTracksCSV(r io.Reader) ([]models.TrackRecord, error) {
	records, err := readCSV(r, TrackHeaders)
	if err != nil {
		return nil, err
	}

	rows := make([]models.TrackRecord, 0, len(records))
	for i, rec := range records {
		p := fieldParser{line: i + 2}
		t := models.TrackRecord{
			Title:       rec[0],
			Artist:      rec[1],
			PeakRank:    p.atoi(rec[2]),
			Weeks:       p.atoi(rec[3]),
			PeakDate:    p.parseDate(rec[4]),
			ID:          rec[5],
			Name:        rec[6],
			Album:       rec[7],
			Popularity:  p.atoi(rec[8]),
			ReleaseDate: rec[10],
		}
		t.Collaboration = p.parseBool(rec[9])

		if rec[11] != "" {
			t.Features = &models.AudioFeatures{
				Danceability:     p.parseFloat(rec[11]),
				Energy:           p.parseFloat(rec[12]),
				Key:              p.atoi(rec[13]),
				Loudness:         p.parseFloat(rec[14]),
				Mode:             p.atoi(rec[15]),
				Speechiness:      p.parseFloat(rec[16]),
				Acousticness:     p.parseFloat(rec[17]),
				Instrumentalness: p.parseFloat(rec[18]),
				Liveness:         p.parseFloat(rec[19]),
				Valence:          p.parseFloat(rec[20]),
				Tempo:            p.parseFloat(rec[21]),
				TimeSignature:    p.atoi(rec[22]),
				DurationMS:       p.atoi(rec[23]),
			}
		}

		if p.err != nil {
			return nil, p.err
		}
		rows = append(rows, t)
	}
	return rows, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// fieldParser keeps the first conversion error of a record. Empty numeric fields read as zero.
type fieldParser struct {
	line int
	err  error
}

func (p *fieldParser) fail(value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: line %d: bad value %q: %v", shared.ErrCheckpoint, p.line, value, err)
	}
}

func (p *fieldParser) atoi(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(s, err)
	}
	return v
}

func (p *fieldParser) optionalAtoi(s string) *int {
	if s == "" {
		return nil
	}
	v := p.atoi(s)
	return &v
}

func (p *fieldParser) parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(s, err)
	}
	return v
}

func (p *fieldParser) parseBool(s string) bool {
	if s == "" {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(s, err)
	}
	return v
}

func (p *fieldParser) parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := shared.ParseDate(s)
	if err != nil {
		p.fail(s, err)
	}
	return d
}
