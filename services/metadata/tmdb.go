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

const (
	tmdbDefaultBaseURL   = "https://api.themoviedb.org/3"
	tmdbPosterBaseURL    = "https://image.tmdb.org/t/p/w500"
	tmdbExternalSourceID = "imdb_id"
)

// TMDBSource fetches metadata from a TMDB-compatible API. Its search
// payloads carry fewer fields than OMDb (no cast or runtime), so it acts
// as the poster/plot fallback.
type TMDBSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      Store
}

func NewTMDBSource(client *http.Client, baseURL, apiKey string, cache Store) *TMDBSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = tmdbDefaultBaseURL
	}
	return &TMDBSource{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		cache:      cache,
	}
}

func (s *TMDBSource) Name() string { return "tmdb" }

func (s *TMDBSource) Fetch(ctx context.Context, titleOrIMDBID string, year int) (*models.MetadataRecord, error) {
	key := s.Name() + ":" + cacheKey(titleOrIMDBID, year)
	if s.cache != nil {
		if rec, ok := s.cache.Get(key); ok {
			return rec, nil
		}
	}

	var (
		movie *tmdbMovie
		err   error
	)
	if looksLikeIMDBID(titleOrIMDBID) {
		movie, err = s.findByIMDBID(ctx, strings.ToLower(strings.TrimSpace(titleOrIMDBID)))
	} else {
		movie, err = s.searchByTitle(ctx, strings.TrimSpace(titleOrIMDBID), year)
	}
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, nil
	}

	record := &models.MetadataRecord{
		Plot: strings.TrimSpace(movie.Overview),
	}
	if movie.PosterPath != "" {
		record.PosterURL = tmdbPosterBaseURL + movie.PosterPath
	}
	if movie.VoteAverage > 0 {
		record.RatingText = fmt.Sprintf("%.1f", movie.VoteAverage)
	}
	if looksLikeIMDBID(titleOrIMDBID) {
		record.IMDBID = strings.ToLower(strings.TrimSpace(titleOrIMDBID))
	}

	if s.cache != nil {
		if err := s.cache.Put(key, record, time.Now().Add(recordTTL)); err != nil {
			log.Printf("[tmdb] cache write failed for %s: %v", key, err)
		}
	}
	return record, nil
}

type tmdbMovie struct {
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

func (s *TMDBSource) findByIMDBID(ctx context.Context, imdbID string) (*tmdbMovie, error) {
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("external_source", tmdbExternalSourceID)
	endpoint := fmt.Sprintf("%s/find/%s?%s", s.baseURL, url.PathEscape(imdbID), params.Encode())

	var payload struct {
		MovieResults []tmdbMovie `json:"movie_results"`
	}
	if err := s.fetchJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.MovieResults) == 0 {
		return nil, nil
	}
	return &payload.MovieResults[0], nil
}

func (s *TMDBSource) searchByTitle(ctx context.Context, title string, year int) (*tmdbMovie, error) {
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("query", title)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	endpoint := fmt.Sprintf("%s/search/movie?%s", s.baseURL, params.Encode())

	var payload struct {
		Results []tmdbMovie `json:"results"`
	}
	if err := s.fetchJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}
	return &payload.Results[0], nil
}

func (s *TMDBSource) fetchJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tmdb returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
