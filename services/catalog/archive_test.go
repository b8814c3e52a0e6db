package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestArchiveSearchParsesDocs(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"response":{"numFound":12,"docs":[
			{"identifier":"night_of_the_living_dead","title":"Night of the Living Dead","year":"1968"},
			{"identifier":"metropolis","title":"Metropolis","year":1927},
			{"identifier":"","title":"skipped"}
		]}}`))
	}))
	defer server.Close()

	p := NewArchiveProvider(server.Client(), server.URL)
	hits, total, err := p.Search(context.Background(), "living dead", 1, 20)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}

	if !strings.Contains(gotQuery, "living dead") || !strings.Contains(gotQuery, "mediatype:(movies)") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if total != 12 {
		t.Fatalf("expected numFound 12, got %d", total)
	}
	if len(hits) != 2 {
		t.Fatalf("expected docs without identifiers skipped, got %d", len(hits))
	}
	if hits[0].Year != 1968 || hits[1].Year != 1927 {
		t.Fatalf("expected mixed year formats parsed, got %+v", hits)
	}
	if !strings.HasSuffix(hits[0].PrimaryLink, "/download/night_of_the_living_dead") {
		t.Fatalf("unexpected download link %q", hits[0].PrimaryLink)
	}
}

func TestArchiveGetByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	}))
	defer server.Close()

	p := NewArchiveProvider(server.Client(), server.URL)
	if _, err := p.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseArchiveYear(t *testing.T) {
	cases := []struct {
		raw  any
		want int
	}{
		{float64(1968), 1968},
		{"1927", 1927},
		{" 1922 ", 1922},
		{[]any{"1954", "1956"}, 1954},
		{nil, 0},
		{"unknown", 0},
	}
	for _, tc := range cases {
		if got := parseArchiveYear(tc.raw); got != tc.want {
			t.Errorf("parseArchiveYear(%v) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
