package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const datasetFixture = `[
	{"id": "night-of-the-living-dead", "title": "Night of the Living Dead", "year": 1968, "imdbId": "tt0063350", "link": "https://files/notld.mp4", "seeders": 12, "cover": "https://covers/notld.jpg"},
	{"id": "nosferatu", "title": "Nosferatu", "year": 1922, "link": "https://files/nosferatu.mp4", "seeders": 44},
	{"id": "metropolis", "title": "Metropolis", "year": 1927, "link": "https://files/metropolis.mp4", "seeders": 31},
	{"id": "", "title": "skipped"},
	{"id": "no-title", "title": " "}
]`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.json")
	if err := os.WriteFile(path, []byte(datasetFixture), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestDatasetLoadSkipsInvalidEntries(t *testing.T) {
	p, err := NewDatasetProvider(writeDataset(t))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	hits, total, err := p.Search(context.Background(), "", 1, 20)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if total != 3 || len(hits) != 3 {
		t.Fatalf("expected 3 valid movies, got %d (total %d)", len(hits), total)
	}
}

func TestDatasetSearchFiltersByTitleSubstring(t *testing.T) {
	p, err := NewDatasetProvider(writeDataset(t))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	hits, total, err := p.Search(context.Background(), "NOSFE", 1, 20)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if total != 1 || len(hits) != 1 || hits[0].ExternalID != "nosferatu" {
		t.Fatalf("unexpected results %+v", hits)
	}
}

func TestDatasetPopularSortsBySeeders(t *testing.T) {
	p, err := NewDatasetProvider(writeDataset(t))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	hits, _, err := p.Popular(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("popular returned error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected page of 2, got %d", len(hits))
	}
	if hits[0].ExternalID != "nosferatu" || hits[1].ExternalID != "metropolis" {
		t.Fatalf("expected seeders-descending order, got %+v", hits)
	}
}

func TestDatasetPaging(t *testing.T) {
	p, err := NewDatasetProvider(writeDataset(t))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	page2, total, err := p.Search(context.Background(), "", 2, 2)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if total != 3 || len(page2) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d (total %d)", len(page2), total)
	}

	empty, _, err := p.Search(context.Background(), "", 5, 2)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(empty))
	}
}

func TestDatasetGetByID(t *testing.T) {
	p, err := NewDatasetProvider(writeDataset(t))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	hit, err := p.GetByID(context.Background(), "metropolis")
	if err != nil {
		t.Fatalf("getById returned error: %v", err)
	}
	if hit.Title != "Metropolis" || hit.Year != 1927 {
		t.Fatalf("unexpected hit %+v", hit)
	}

	if _, err := p.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDatasetMissingFile(t *testing.T) {
	if _, err := NewDatasetProvider(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing dataset file")
	}
}
