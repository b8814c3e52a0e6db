package library

import (
	"fmt"
	"strings"

	"cinestream/models"
)

// movieGroup clusters hits believed to be the same movie. The first hit
// inserted is the anchor; later hits join only by exact case-insensitive
// title and year match against the anchor, never against each other, so
// insertion order decides clustering.
type movieGroup struct {
	anchor models.ProviderHit
	hits   []models.ProviderHit
	meta   *models.MetadataRecord
}

func (g *movieGroup) id() string {
	return EncodeStableID(g.anchor.Provider, g.anchor.ExternalID)
}

// providers returns the distinct contributing provider names in first-seen
// order.
func (g *movieGroup) providers() []string {
	var names []string
	seen := make(map[string]struct{}, len(g.hits))
	for _, h := range g.hits {
		if _, ok := seen[h.Provider]; ok {
			continue
		}
		seen[h.Provider] = struct{}{}
		names = append(names, h.Provider)
	}
	return names
}

func groupKey(title string, year int) string {
	return fmt.Sprintf("%s\x00%d", strings.ToLower(title), year)
}

// groupHits clusters the merged hit list, preserving the first-seen order
// of groups. Anchors are unique per (lowercased title, year) pair, so the
// anchor-match rule reduces to a key lookup.
func groupHits(hits []models.ProviderHit) []*movieGroup {
	var groups []*movieGroup
	byKey := make(map[string]*movieGroup)
	for _, hit := range hits {
		key := groupKey(hit.Title, hit.Year)
		if g, ok := byKey[key]; ok {
			g.hits = append(g.hits, hit)
			continue
		}
		g := &movieGroup{anchor: hit, hits: []models.ProviderHit{hit}}
		byKey[key] = g
		groups = append(groups, g)
	}
	return groups
}

// posterFor picks the group's poster: resolved metadata first, the
// anchor's cover art as fallback. Empty means the group is dropped from
// list views.
func (g *movieGroup) posterFor() string {
	if g.meta != nil && g.meta.PosterURL != "" {
		return g.meta.PosterURL
	}
	return g.anchor.CoverURL
}

// toListItem projects an enriched group to a list entry.
func (g *movieGroup) toListItem() models.MovieListItem {
	item := models.MovieListItem{
		ID:        g.id(),
		Title:     g.anchor.Title,
		Year:      g.anchor.Year,
		PosterURL: g.posterFor(),
		Providers: g.providers(),
	}
	if g.meta != nil {
		item.RatingText = g.meta.RatingText
		item.Genre = g.meta.Genre
	}
	return item
}
