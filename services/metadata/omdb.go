package metadata

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

const omdbDefaultBaseURL = "https://www.omdbapi.com"

// OMDBSource fetches descriptive metadata from an OMDb-compatible API.
// It is the richest source (plot, cast, runtime) and serves as primary.
type OMDBSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      Store
}

func NewOMDBSource(client *http.Client, baseURL, apiKey string, cache Store) *OMDBSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = omdbDefaultBaseURL
	}
	return &OMDBSource{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		cache:      cache,
	}
}

func (s *OMDBSource) Name() string { return "omdb" }

// Fetch looks up a record by IMDB ID or title+year, consulting the shared
// TTL cache first. A nil record with nil error means the source has no
// match.
func (s *OMDBSource) Fetch(ctx context.Context, titleOrIMDBID string, year int) (*models.MetadataRecord, error) {
	key := s.Name() + ":" + cacheKey(titleOrIMDBID, year)
	if s.cache != nil {
		if rec, ok := s.cache.Get(key); ok {
			return rec, nil
		}
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("type", "movie")
	if looksLikeIMDBID(titleOrIMDBID) {
		params.Set("i", strings.ToLower(strings.TrimSpace(titleOrIMDBID)))
	} else {
		params.Set("t", strings.TrimSpace(titleOrIMDBID))
		if year > 0 {
			params.Set("y", strconv.Itoa(year))
		}
	}
	endpoint := fmt.Sprintf("%s/?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("omdb returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Response   string `json:"Response"`
		Poster     string `json:"Poster"`
		IMDBRating string `json:"imdbRating"`
		Plot       string `json:"Plot"`
		Genre      string `json:"Genre"`
		Runtime    string `json:"Runtime"`
		Director   string `json:"Director"`
		Actors     string `json:"Actors"`
		IMDBID     string `json:"imdbID"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if !strings.EqualFold(payload.Response, "True") {
		return nil, nil
	}

	record := &models.MetadataRecord{
		PosterURL:   omdbField(payload.Poster),
		RatingText:  omdbField(payload.IMDBRating),
		Plot:        omdbField(payload.Plot),
		Genre:       omdbField(payload.Genre),
		RuntimeText: omdbField(payload.Runtime),
		Director:    omdbField(payload.Director),
		ActorsText:  omdbField(payload.Actors),
		IMDBID:      omdbField(payload.IMDBID),
	}

	if s.cache != nil {
		if err := s.cache.Put(key, record, time.Now().Add(recordTTL)); err != nil {
			log.Printf("[omdb] cache write failed for %s: %v", key, err)
		}
	}
	return record, nil
}

// omdbField normalizes OMDb's "N/A" placeholder to empty.
func omdbField(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "N/A") {
		return ""
	}
	return v
}
