package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTMDBFindByIMDBID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/find/tt1375666") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" {
			t.Errorf("unexpected query %v", r.URL.Query())
		}
		w.Write([]byte(`{"movie_results":[{"poster_path":"/inc.jpg","overview":"Dream heist.","vote_average":8.4}]}`))
	}))
	defer server.Close()

	src := NewTMDBSource(server.Client(), server.URL, "test-key", nil)
	record, err := src.Fetch(context.Background(), "tt1375666", 0)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if record.PosterURL != tmdbPosterBaseURL+"/inc.jpg" {
		t.Fatalf("unexpected poster %q", record.PosterURL)
	}
	if record.Plot != "Dream heist." || record.RatingText != "8.4" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.IMDBID != "tt1375666" {
		t.Fatalf("expected imdb id carried through, got %q", record.IMDBID)
	}
}

func TestTMDBSearchByTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/search/movie") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "Heat" || r.URL.Query().Get("year") != "1995" {
			t.Errorf("unexpected query %v", r.URL.Query())
		}
		w.Write([]byte(`{"results":[{"poster_path":"/heat.jpg","overview":"Heist thriller."}]}`))
	}))
	defer server.Close()

	src := NewTMDBSource(server.Client(), server.URL, "test-key", nil)
	record, err := src.Fetch(context.Background(), "Heat", 1995)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if record == nil || record.Plot != "Heist thriller." {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestTMDBEmptyResultsReturnsNone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	src := NewTMDBSource(server.Client(), server.URL, "test-key", nil)
	record, err := src.Fetch(context.Background(), "Nothing", 0)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected no record, got %+v", record)
	}
}
