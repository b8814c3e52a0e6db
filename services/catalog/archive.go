package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinestream/models"
)

const archiveDefaultBaseURL = "https://archive.org"

// ArchiveProvider queries the archive.org advanced-search API for feature
// films. Results carry direct download URLs instead of magnets and have no
// swarm statistics.
type ArchiveProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func NewArchiveProvider(client *http.Client, baseURL string) *ArchiveProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = archiveDefaultBaseURL
	}
	return &ArchiveProvider{
		name:       "archive",
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

func (p *ArchiveProvider) Name() string { return p.name }

func (p *ArchiveProvider) Search(ctx context.Context, query string, page, pageSize int) ([]models.ProviderHit, int, error) {
	q := fmt.Sprintf("title:(%s) AND mediatype:(movies) AND collection:(feature_films)", strings.TrimSpace(query))
	return p.advancedSearch(ctx, q, "downloads desc", page, pageSize)
}

func (p *ArchiveProvider) Popular(ctx context.Context, page, pageSize int) ([]models.ProviderHit, int, error) {
	return p.advancedSearch(ctx, "mediatype:(movies) AND collection:(feature_films)", "week desc", page, pageSize)
}

func (p *ArchiveProvider) GetByID(ctx context.Context, externalID string) (*models.ProviderHit, error) {
	identifier := strings.TrimSpace(externalID)
	if identifier == "" {
		return nil, ErrNotFound
	}

	hits, _, err := p.advancedSearch(ctx, fmt.Sprintf("identifier:(%s)", identifier), "", 1, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrNotFound
	}
	return &hits[0], nil
}

type archiveDoc struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Year       any    `json:"year"`
}

func (p *ArchiveProvider) advancedSearch(ctx context.Context, query, sort string, page, pageSize int) ([]models.ProviderHit, int, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fl[]", "identifier,title,year")
	if sort != "" {
		params.Set("sort[]", sort)
	}
	params.Set("rows", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("output", "json")
	endpoint := fmt.Sprintf("%s/advancedsearch.php?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("archive returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Response struct {
			NumFound int          `json:"numFound"`
			Docs     []archiveDoc `json:"docs"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("decode archive response: %w", err)
	}

	hits := make([]models.ProviderHit, 0, len(payload.Response.Docs))
	for _, doc := range payload.Response.Docs {
		id := strings.TrimSpace(doc.Identifier)
		title := strings.TrimSpace(doc.Title)
		if id == "" || title == "" {
			continue
		}
		hits = append(hits, models.ProviderHit{
			Provider:    p.name,
			ExternalID:  id,
			Title:       title,
			Year:        parseArchiveYear(doc.Year),
			PrimaryLink: fmt.Sprintf("%s/download/%s", p.baseURL, url.PathEscape(id)),
		})
	}
	return hits, payload.Response.NumFound, nil
}

// parseArchiveYear tolerates the year field arriving as a number, a string
// or a list of either.
func parseArchiveYear(raw any) int {
	switch v := raw.(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	case []any:
		if len(v) > 0 {
			return parseArchiveYear(v[0])
		}
	}
	return 0
}
