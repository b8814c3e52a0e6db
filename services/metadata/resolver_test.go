package metadata

import (
	"context"
	"errors"
	"testing"

	"cinestream/models"
)

type stubSource struct {
	name   string
	record *models.MetadataRecord
	err    error
	calls  int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ string, _ int) (*models.MetadataRecord, error) {
	s.calls++
	return s.record, s.err
}

func TestResolvePrimaryWithPosterShortCircuits(t *testing.T) {
	primary := &stubSource{name: "primary", record: &models.MetadataRecord{PosterURL: "https://poster", Plot: "plot"}}
	fallback := &stubSource{name: "fallback", record: &models.MetadataRecord{PosterURL: "https://other"}}

	r := NewResolver(primary, fallback)
	got := r.Resolve(context.Background(), "Inception", 2010)
	if got == nil || got.PosterURL != "https://poster" {
		t.Fatalf("expected primary record, got %+v", got)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not be consulted, got %d calls", fallback.calls)
	}
}

func TestResolveMergesFallbackPoster(t *testing.T) {
	primary := &stubSource{name: "primary", record: &models.MetadataRecord{
		Plot:       "A thief who steals secrets.",
		Director:   "Christopher Nolan",
		ActorsText: "Leonardo DiCaprio",
	}}
	fallback := &stubSource{name: "fallback", record: &models.MetadataRecord{
		PosterURL: "https://fallback/poster",
		Plot:      "Short overview.",
	}}

	r := NewResolver(primary, fallback)
	got := r.Resolve(context.Background(), "Inception", 2010)
	if got == nil {
		t.Fatal("expected merged record")
	}
	if got.PosterURL != "https://fallback/poster" {
		t.Fatalf("expected fallback poster, got %q", got.PosterURL)
	}
	if got.Plot != "A thief who steals secrets." {
		t.Fatalf("primary plot should win the tie, got %q", got.Plot)
	}
	if got.Director != "Christopher Nolan" {
		t.Fatalf("expected primary director preserved, got %q", got.Director)
	}
}

func TestResolveFallbackOnlyWhenPrimaryEmpty(t *testing.T) {
	primary := &stubSource{name: "primary"}
	fallback := &stubSource{name: "fallback", record: &models.MetadataRecord{PosterURL: "https://fallback"}}

	r := NewResolver(primary, fallback)
	got := r.Resolve(context.Background(), "Heat", 1995)
	if got == nil || got.PosterURL != "https://fallback" {
		t.Fatalf("expected fallback record as-is, got %+v", got)
	}
}

func TestResolveNoneWhenBothEmpty(t *testing.T) {
	r := NewResolver(&stubSource{name: "primary"}, &stubSource{name: "fallback"})
	if got := r.Resolve(context.Background(), "Unknown", 0); got != nil {
		t.Fatalf("expected no record, got %+v", got)
	}
}

func TestResolveTreatsSourceErrorAsNone(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("timeout")}
	fallback := &stubSource{name: "fallback", record: &models.MetadataRecord{PosterURL: "https://fallback"}}

	r := NewResolver(primary, fallback)
	got := r.Resolve(context.Background(), "Heat", 1995)
	if got == nil || got.PosterURL != "https://fallback" {
		t.Fatalf("expected fallback despite primary error, got %+v", got)
	}
}
