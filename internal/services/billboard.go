// Billboard chart [ChartSource] implementation
//
// Chart pages are server-rendered HTML; each entry is a "ul.o-chart-results-list-row" element.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	defaultBillboardBaseURL = "https://www.billboard.com/charts"
	defaultUserAgent        = "Mozilla/5.0 (X11; Linux x86_64) chartx/0.1"
)

var (
	rowSelector    = cascadia.MustCompile("ul.o-chart-results-list-row")
	titleSelector  = cascadia.MustCompile("#title-of-a-story")
	artistSelector = cascadia.MustCompile("#title-of-a-story + span.c-label")
	labelSelector  = cascadia.MustCompile("span.c-label")

	statPattern = regexp.MustCompile(`^(\d+|-)$`)
)

// BillboardService implements [ChartSource] by scraping billboard.com chart pages.
type BillboardService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// BillboardOpts configures a [BillboardService]. Zero values fall back to defaults.
type BillboardOpts struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// NewBillboardService creates a chart source for the given options.
func NewBillboardService(opts BillboardOpts) *BillboardService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBillboardBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &BillboardService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

func (b *BillboardService) Name() string {
	return "Billboard"
}

// ChartURL returns the page URL for chartID and q.
func (b *BillboardService) ChartURL(chartID string, q ChartQuery) string {
	if q.IsYear() {
		return fmt.Sprintf("%s/year-end/%d/%s", b.baseURL, q.Year, chartID)
	}
	return fmt.Sprintf("%s/%s/%s", b.baseURL, chartID, shared.FormatDate(q.Date))
}

// Chart fetches and parses one chart page.
func (b *BillboardService) Chart(ctx context.Context, chartID string, q ChartQuery) ([]models.ChartEntry, error) {
	if chartID == "" {
		return nil, fmt.Errorf("%w: chart id is required", shared.ErrMissingArgument)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := b.fetch(ctx, b.ChartURL(chartID, q))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	entries, err := ParseChart(body, q.IsYear())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", chartID, q, err)
	}
	return entries, nil
}

func (b *BillboardService) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrTimeout, pageURL, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: billboard returned status %d for %s", shared.ErrAPIRequest, resp.StatusCode, pageURL)
	}
	return resp.Body, nil
}

// ParseChart extracts chart entries from a chart page.
//
// Year-end pages carry only rank, title and artist; their peak position is the rank and weeks-on-chart is zero.
func ParseChart(r io.Reader, yearEnd bool) ([]models.ChartEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse chart page: %v", shared.ErrAPIRequest, err)
	}

	rows := cascadia.QueryAll(doc, rowSelector)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no chart entries found", shared.ErrAPIRequest)
	}

	entries := make([]models.ChartEntry, 0, len(rows))
	for i, row := range rows {
		entry, err := parseRow(row, yearEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", shared.ErrAPIRequest, i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRow(row *html.Node, yearEnd bool) (models.ChartEntry, error) {
	var entry models.ChartEntry

	titleNode := cascadia.Query(row, titleSelector)
	if titleNode == nil {
		return entry, fmt.Errorf("missing title")
	}
	entry.Title = nodeText(titleNode)

	artistNode := cascadia.Query(row, artistSelector)
	if artistNode != nil {
		entry.Artist = nodeText(artistNode)
	}

	var stats []string
	for _, label := range cascadia.QueryAll(row, labelSelector) {
		if label == artistNode {
			continue
		}
		if text := nodeText(label); statPattern.MatchString(text) {
			stats = append(stats, text)
		}
	}

	if len(stats) == 0 || stats[0] == "-" {
		return entry, fmt.Errorf("missing rank for %q", entry.Title)
	}
	entry.Rank, _ = strconv.Atoi(stats[0])

	if yearEnd {
		entry.PeakPosition = entry.Rank
		return entry, nil
	}

	if len(stats) < 4 {
		return entry, fmt.Errorf("expected rank and three stats for %q, got %d values", entry.Title, len(stats))
	}

	n := len(stats)
	if stats[n-3] != "-" {
		prev, _ := strconv.Atoi(stats[n-3])
		entry.PreviousRank = &prev
	}
	if stats[n-2] == "-" || stats[n-1] == "-" {
		return entry, fmt.Errorf("missing peak position or weeks on chart for %q", entry.Title)
	}
	entry.PeakPosition, _ = strconv.Atoi(stats[n-2])
	entry.WeeksOnChart, _ = strconv.Atoi(stats[n-1])

	return entry, nil
}

// nodeText returns the whitespace-collapsed text content of n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
