package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const ytsListFixture = `{
	"status": "ok",
	"data": {
		"movie_count": 137,
		"movies": [
			{
				"id": 100,
				"title": "Inception",
				"year": 2010,
				"imdb_code": "tt1375666",
				"language": "en",
				"medium_cover_image": "https://yts/covers/inception.jpg",
				"torrents": [
					{"hash": "AAA111", "quality": "720p", "size": "1.1 GB", "seeds": 40, "peers": 10},
					{"hash": "BBB222", "quality": "1080p", "size": "2.2 GB", "seeds": 350, "peers": 80}
				]
			},
			{"id": 0, "title": "dropped"},
			{"id": 101, "title": "   "}
		]
	}
}`

func TestYTSSearchParsesMovies(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query_term")
		w.Write([]byte(ytsListFixture))
	}))
	defer server.Close()

	p := NewYTSProvider(server.Client(), server.URL)
	hits, total, err := p.Search(context.Background(), "inception", 1, 20)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if gotQuery != "inception" {
		t.Fatalf("expected query_term=inception, got %q", gotQuery)
	}
	if total != 137 {
		t.Fatalf("expected total 137, got %d", total)
	}
	if len(hits) != 1 {
		t.Fatalf("expected invalid entries skipped, got %d hits", len(hits))
	}

	hit := hits[0]
	if hit.Provider != "yts" || hit.ExternalID != "100" {
		t.Fatalf("unexpected identity %s/%s", hit.Provider, hit.ExternalID)
	}
	if hit.IMDBID != "tt1375666" || hit.Year != 2010 {
		t.Fatalf("unexpected hit %+v", hit)
	}
	// The best-seeded torrent wins.
	if hit.Seeders != 350 || hit.QualityLabel != "1080p" || hit.SizeLabel != "2.2 GB" {
		t.Fatalf("expected 1080p torrent selected, got %+v", hit)
	}
	if !strings.HasPrefix(hit.PrimaryLink, "magnet:?xt=urn:btih:bbb222") {
		t.Fatalf("unexpected magnet %q", hit.PrimaryLink)
	}
}

func TestYTSGetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("movie_id") == "100" {
			w.Write([]byte(`{"status":"ok","data":{"movie":{"id":100,"title":"Inception","year":2010,"imdb_code":"tt1375666","torrents":[{"hash":"AAA","quality":"1080p","seeds":5}]}}}`))
			return
		}
		w.Write([]byte(`{"status":"ok","data":{"movie":{"id":0}}}`))
	}))
	defer server.Close()

	p := NewYTSProvider(server.Client(), server.URL)
	hit, err := p.GetByID(context.Background(), "100")
	if err != nil {
		t.Fatalf("getById returned error: %v", err)
	}
	if hit.Title != "Inception" {
		t.Fatalf("unexpected hit %+v", hit)
	}

	if _, err := p.GetByID(context.Background(), "999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestYTSErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewYTSProvider(server.Client(), server.URL)
	if _, _, err := p.Search(context.Background(), "x", 1, 20); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestBuildMagnet(t *testing.T) {
	magnet := buildMagnet("ABCDEF", "Some Movie")
	if !strings.HasPrefix(magnet, "magnet:?xt=urn:btih:abcdef&dn=Some+Movie") {
		t.Fatalf("unexpected magnet %q", magnet)
	}
	if !strings.Contains(magnet, "&tr=") {
		t.Fatal("expected trackers appended")
	}
}
