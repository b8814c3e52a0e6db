package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinestream/models"
)

const ytsDefaultBaseURL = "https://yts.mx"

// defaultTrackers are appended to magnets built from a bare info hash.
var defaultTrackers = []string{
	"udp://open.demonii.com:1337/announce",
	"udp://tracker.openbittorrent.com:80",
	"udp://tracker.coppersurfer.tk:6969",
	"udp://tracker.leechers-paradise.org:6969",
	"udp://p4p.arenabg.ch:1337",
}

// YTSProvider queries a YTS-compatible torrent indexer JSON API.
type YTSProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewYTSProvider constructs a provider with sane defaults. The baseURL
// parameter is optional; defaults to ytsDefaultBaseURL.
func NewYTSProvider(client *http.Client, baseURL string) *YTSProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = ytsDefaultBaseURL
	}
	return &YTSProvider{
		name:       "yts",
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

func (p *YTSProvider) Name() string { return p.name }

func (p *YTSProvider) Search(ctx context.Context, query string, page, pageSize int) ([]models.ProviderHit, int, error) {
	params := url.Values{}
	params.Set("query_term", strings.TrimSpace(query))
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))
	return p.listMovies(ctx, params)
}

func (p *YTSProvider) Popular(ctx context.Context, page, pageSize int) ([]models.ProviderHit, int, error) {
	params := url.Values{}
	params.Set("sort_by", "download_count")
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))
	return p.listMovies(ctx, params)
}

func (p *YTSProvider) GetByID(ctx context.Context, externalID string) (*models.ProviderHit, error) {
	id := strings.TrimSpace(externalID)
	if id == "" {
		return nil, ErrNotFound
	}

	endpoint := fmt.Sprintf("%s/api/v2/movie_details.json?movie_id=%s", p.baseURL, url.QueryEscape(id))
	var payload struct {
		Status string `json:"status"`
		Data   struct {
			Movie ytsMovie `json:"movie"`
		} `json:"data"`
	}
	if err := p.fetchJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" || payload.Data.Movie.ID == 0 {
		return nil, ErrNotFound
	}

	hit := p.toHit(payload.Data.Movie)
	return &hit, nil
}

type ytsMovie struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	IMDBCode   string `json:"imdb_code"`
	Language   string `json:"language"`
	CoverImage string `json:"medium_cover_image"`
	Torrents   []struct {
		Hash    string `json:"hash"`
		Quality string `json:"quality"`
		Size    string `json:"size"`
		Seeds   int    `json:"seeds"`
		Peers   int    `json:"peers"`
	} `json:"torrents"`
}

func (p *YTSProvider) listMovies(ctx context.Context, params url.Values) ([]models.ProviderHit, int, error) {
	endpoint := fmt.Sprintf("%s/api/v2/list_movies.json?%s", p.baseURL, params.Encode())

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			MovieCount int        `json:"movie_count"`
			Movies     []ytsMovie `json:"movies"`
		} `json:"data"`
	}
	if err := p.fetchJSON(ctx, endpoint, &payload); err != nil {
		return nil, 0, err
	}
	if payload.Status != "ok" {
		return nil, 0, fmt.Errorf("yts returned status %q", payload.Status)
	}

	hits := make([]models.ProviderHit, 0, len(payload.Data.Movies))
	for _, m := range payload.Data.Movies {
		if m.ID == 0 || strings.TrimSpace(m.Title) == "" {
			continue
		}
		hits = append(hits, p.toHit(m))
	}
	log.Printf("[yts] %d hits (total %d)", len(hits), payload.Data.MovieCount)
	return hits, payload.Data.MovieCount, nil
}

// toHit flattens a YTS movie to one hit using its best-seeded torrent.
func (p *YTSProvider) toHit(m ytsMovie) models.ProviderHit {
	hit := models.ProviderHit{
		Provider:   p.name,
		ExternalID: strconv.FormatInt(m.ID, 10),
		Title:      strings.TrimSpace(m.Title),
		Year:       m.Year,
		IMDBID:     strings.TrimSpace(m.IMDBCode),
		Language:   strings.TrimSpace(m.Language),
		CoverURL:   strings.TrimSpace(m.CoverImage),
	}
	for _, t := range m.Torrents {
		if t.Hash == "" {
			continue
		}
		if hit.PrimaryLink == "" || t.Seeds > hit.Seeders {
			hit.PrimaryLink = buildMagnet(t.Hash, hit.Title)
			hit.Seeders = t.Seeds
			hit.Leechers = t.Peers
			hit.SizeLabel = strings.TrimSpace(t.Size)
			hit.QualityLabel = strings.TrimSpace(t.Quality)
		}
	}
	return hit
}

// buildMagnet assembles a magnet URI from an info hash and display name.
func buildMagnet(infoHash, displayName string) string {
	var b strings.Builder
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(strings.ToLower(strings.TrimSpace(infoHash)))
	if displayName != "" {
		b.WriteString("&dn=")
		b.WriteString(url.QueryEscape(displayName))
	}
	for _, tr := range defaultTrackers {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tr))
	}
	return b.String()
}

func (p *YTSProvider) fetchJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("yts returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode yts response: %w", err)
	}
	return nil
}
