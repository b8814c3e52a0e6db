package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"cinestream/models"
)

// DatasetProvider serves movies from a static JSON dataset file loaded at
// construction time. Useful for air-gapped deployments and as a stable
// fixture source; all paging and filtering happens in memory.
type DatasetProvider struct {
	name   string
	movies []datasetMovie
}

type datasetMovie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	IMDBID   string `json:"imdbId"`
	Link     string `json:"link"`
	Seeders  int    `json:"seeders"`
	Leechers int    `json:"leechers"`
	Size     string `json:"size"`
	Language string `json:"language"`
	Cover    string `json:"cover"`
	Quality  string `json:"quality"`
}

// NewDatasetProvider loads the dataset from path. The file is a JSON array
// of movie entries; entries without an id or title are skipped.
func NewDatasetProvider(path string) (*DatasetProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var raw []datasetMovie
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	movies := make([]datasetMovie, 0, len(raw))
	for _, m := range raw {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Title) == "" {
			continue
		}
		movies = append(movies, m)
	}
	return &DatasetProvider{name: "dataset", movies: movies}, nil
}

func (p *DatasetProvider) Name() string { return p.name }

func (p *DatasetProvider) Search(_ context.Context, query string, page, pageSize int) ([]models.ProviderHit, int, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	var matched []datasetMovie
	for _, m := range p.movies {
		if needle == "" || strings.Contains(strings.ToLower(m.Title), needle) {
			matched = append(matched, m)
		}
	}
	return p.window(matched, page, pageSize), len(matched), nil
}

func (p *DatasetProvider) Popular(_ context.Context, page, pageSize int) ([]models.ProviderHit, int, error) {
	ranked := make([]datasetMovie, len(p.movies))
	copy(ranked, p.movies)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Seeders > ranked[j].Seeders
	})
	return p.window(ranked, page, pageSize), len(ranked), nil
}

func (p *DatasetProvider) GetByID(_ context.Context, externalID string) (*models.ProviderHit, error) {
	id := strings.TrimSpace(externalID)
	for _, m := range p.movies {
		if m.ID == id {
			hit := p.toHit(m)
			return &hit, nil
		}
	}
	return nil, ErrNotFound
}

func (p *DatasetProvider) window(movies []datasetMovie, page, pageSize int) []models.ProviderHit {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(movies) {
		return nil
	}
	end := start + pageSize
	if end > len(movies) {
		end = len(movies)
	}
	hits := make([]models.ProviderHit, 0, end-start)
	for _, m := range movies[start:end] {
		hits = append(hits, p.toHit(m))
	}
	return hits
}

func (p *DatasetProvider) toHit(m datasetMovie) models.ProviderHit {
	return models.ProviderHit{
		Provider:     p.name,
		ExternalID:   m.ID,
		Title:        m.Title,
		Year:         m.Year,
		IMDBID:       m.IMDBID,
		PrimaryLink:  m.Link,
		Seeders:      m.Seeders,
		Leechers:     m.Leechers,
		SizeLabel:    m.Size,
		Language:     m.Language,
		CoverURL:     m.Cover,
		QualityLabel: m.Quality,
	}
}
