package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cinestream/models"
)

// IndexSiteProvider scrapes an HTML torrent index (search result tables of
// title/magnet/seed/leech cells). It is the slowest and least structured
// provider and exists for catalogs that expose no JSON API.
type IndexSiteProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func NewIndexSiteProvider(client *http.Client, name, baseURL string) *IndexSiteProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if name == "" {
		name = "indexsite"
	}
	return &IndexSiteProvider{
		name:       name,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

func (p *IndexSiteProvider) Name() string { return p.name }

func (p *IndexSiteProvider) Search(ctx context.Context, query string, page, pageSize int) ([]models.ProviderHit, int, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&page=%d", p.baseURL, url.QueryEscape(strings.TrimSpace(query)), page)
	return p.scrapeList(ctx, endpoint, pageSize)
}

func (p *IndexSiteProvider) Popular(ctx context.Context, page, pageSize int) ([]models.ProviderHit, int, error) {
	endpoint := fmt.Sprintf("%s/top?page=%d", p.baseURL, page)
	return p.scrapeList(ctx, endpoint, pageSize)
}

func (p *IndexSiteProvider) GetByID(ctx context.Context, externalID string) (*models.ProviderHit, error) {
	id := strings.TrimSpace(externalID)
	if id == "" {
		return nil, ErrNotFound
	}

	doc, err := p.fetchDocument(ctx, fmt.Sprintf("%s/torrent/%s", p.baseURL, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}

	row := doc.Find("table.detail tr.torrent, tr.torrent").First()
	if row.Length() == 0 {
		return nil, ErrNotFound
	}
	hit, ok := p.parseRow(row)
	if !ok {
		return nil, ErrNotFound
	}
	hit.ExternalID = id
	return &hit, nil
}

var indexTitleYearRe = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)\s*$`)

func (p *IndexSiteProvider) scrapeList(ctx context.Context, endpoint string, pageSize int) ([]models.ProviderHit, int, error) {
	doc, err := p.fetchDocument(ctx, endpoint)
	if err != nil {
		return nil, 0, err
	}

	var hits []models.ProviderHit
	doc.Find("table.results tr.torrent, tr.torrent").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if hit, ok := p.parseRow(row); ok {
			hits = append(hits, hit)
		}
		return pageSize <= 0 || len(hits) < pageSize
	})

	total := len(hits)
	if raw := strings.TrimSpace(doc.Find(".result-count").First().Text()); raw != "" {
		if n := extractLeadingInt(raw); n > 0 {
			total = n
		}
	}
	return hits, total, nil
}

// parseRow extracts one hit from a result row. Rows without a title link
// or a magnet href are skipped.
func (p *IndexSiteProvider) parseRow(row *goquery.Selection) (models.ProviderHit, bool) {
	link := row.Find("a.name, td.name a").First()
	titleText := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")

	magnet, _ := row.Find(`a[href^="magnet:"]`).First().Attr("href")
	if titleText == "" || magnet == "" {
		return models.ProviderHit{}, false
	}

	hit := models.ProviderHit{
		Provider:    p.name,
		ExternalID:  externalIDFromHref(href),
		Title:       titleText,
		PrimaryLink: magnet,
		Seeders:     parseCellInt(row.Find("td.seeds").First().Text()),
		Leechers:    parseCellInt(row.Find("td.leeches").First().Text()),
		SizeLabel:   strings.TrimSpace(row.Find("td.size").First().Text()),
	}
	if m := indexTitleYearRe.FindStringSubmatch(titleText); m != nil {
		hit.Title = strings.TrimSpace(m[1])
		hit.Year, _ = strconv.Atoi(m[2])
	}
	if hit.ExternalID == "" {
		return models.ProviderHit{}, false
	}
	return hit, true
}

// externalIDFromHref takes the last path segment of a detail-page href.
func externalIDFromHref(href string) string {
	href = strings.TrimSuffix(strings.TrimSpace(href), "/")
	if href == "" {
		return ""
	}
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		return href[idx+1:]
	}
	return href
}

func parseCellInt(raw string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	return n
}

func extractLeadingInt(raw string) int {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(fields[0])
	return n
}

func (p *IndexSiteProvider) fetchDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cinestream/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned %d: %s", p.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", p.name, err)
	}
	return doc, nil
}
