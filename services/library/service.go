package library

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cinestream/models"
	"cinestream/services/catalog"
	"cinestream/services/metadata"
)

// ErrNotFound is returned by GetByID for undecodable ids, unknown
// providers and provider-reported misses. It is the only error the
// aggregation surface exposes; upstream degradation never fails a request.
var ErrNotFound = errors.New("library: movie not found")

const (
	// defaultProviderTimeout bounds each provider call inside a fan-out
	// so one hung upstream cannot stall the whole barrier.
	defaultProviderTimeout = 5 * time.Second

	// enrichWorkers bounds concurrent metadata lookups per request.
	enrichWorkers = 8

	// relatedSourcePageSize is how many hits each other provider is asked
	// for when assembling alternate sources on the detail view.
	relatedSourcePageSize = 5
)

// WatchedStore is the per-user watched-state collaborator. Membership is
// the batch form used by list views.
type WatchedStore interface {
	IsWatched(userID, movieID string) (bool, error)
	Membership(userID string, movieIDs []string) (map[string]bool, error)
}

// Service is the aggregation engine: it fans out to all catalog
// providers, merges and clusters their hits, enriches clusters with
// descriptive metadata and joins per-user watched state.
type Service struct {
	registry        *catalog.Registry
	resolver        *metadata.Resolver
	watched         WatchedStore
	providerTimeout time.Duration
}

func NewService(registry *catalog.Registry, resolver *metadata.Resolver, watched WatchedStore) *Service {
	return &Service{
		registry:        registry,
		resolver:        resolver,
		watched:         watched,
		providerTimeout: defaultProviderTimeout,
	}
}

// fanOut issues one call per registered provider concurrently and blocks
// until all complete. Failures contribute an empty result; successes keep
// provider registration order, not completion order.
func (s *Service) fanOut(ctx context.Context, call func(ctx context.Context, p catalog.Provider) ([]models.ProviderHit, int, error)) ([]models.ProviderHit, int) {
	providers := s.registry.All()
	hitsByProvider := make([][]models.ProviderHit, len(providers))
	totals := make([]int, len(providers))

	fanout := pool.New().WithMaxGoroutines(len(providers) + 1)
	for i, p := range providers {
		fanout.Go(func() {
			callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()

			hits, total, err := call(callCtx, p)
			if err != nil {
				log.Printf("[library] provider %s degraded: %v", p.Name(), err)
				return
			}
			hitsByProvider[i] = hits
			totals[i] = total
		})
	}
	fanout.Wait()

	var merged []models.ProviderHit
	totalApprox := 0
	for i := range providers {
		merged = append(merged, hitsByProvider[i]...)
		totalApprox += totals[i]
	}
	return merged, totalApprox
}

// Search aggregates provider search results for one page: merge, cluster,
// enrich, drop posterless clusters, sort by title and join watched state.
func (s *Service) Search(ctx context.Context, query string, page, pageSize int, userID string) (*models.PaginatedMovies, error) {
	page, pageSize = normalizePage(page, pageSize)

	merged, totalApprox := s.fanOut(ctx, func(callCtx context.Context, p catalog.Provider) ([]models.ProviderHit, int, error) {
		return p.Search(callCtx, query, page, pageSize)
	})

	groups := groupHits(merged)
	s.enrich(ctx, groups)
	items := projectWithPosters(groups)

	collator := collate.New(language.English, collate.Loose)
	sort.SliceStable(items, func(i, j int) bool {
		return collator.CompareString(items[i].Title, items[j].Title) < 0
	})

	s.joinWatched(userID, items)

	return &models.PaginatedMovies{
		Items:       items,
		Page:        page,
		PageSize:    pageSize,
		HasMore:     len(items) == pageSize,
		TotalApprox: totalApprox,
	}, nil
}

// Popular aggregates provider popularity lists. Ranking happens before
// clustering: the merged hit list is sorted by seeders and truncated to
// one page, then clustered in that order. HasMore reflects the merged
// pre-truncation count, unlike Search.
func (s *Service) Popular(ctx context.Context, page, pageSize int, userID string) (*models.PaginatedMovies, error) {
	page, pageSize = normalizePage(page, pageSize)

	merged, totalApprox := s.fanOut(ctx, func(callCtx context.Context, p catalog.Provider) ([]models.ProviderHit, int, error) {
		return p.Popular(callCtx, page, pageSize)
	})

	mergedCount := len(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Seeders > merged[j].Seeders
	})
	if len(merged) > pageSize {
		merged = merged[:pageSize]
	}

	groups := groupHits(merged)
	s.enrich(ctx, groups)
	items := projectWithPosters(groups)

	s.joinWatched(userID, items)

	return &models.PaginatedMovies{
		Items:       items,
		Page:        page,
		PageSize:    pageSize,
		HasMore:     mergedCount > pageSize,
		TotalApprox: totalApprox,
	}, nil
}

// GetByID assembles the detail view for one stable id. Unlike list views
// a missing poster does not exclude the movie.
func (s *Service) GetByID(ctx context.Context, id, userID string) (*models.MovieDetails, error) {
	providerName, externalID, err := DecodeStableID(id)
	if err != nil {
		log.Printf("[library] reject movie id %q: %v", id, err)
		return nil, ErrNotFound
	}

	owner, ok := s.registry.Get(providerName)
	if !ok {
		return nil, ErrNotFound
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	hit, err := owner.GetByID(callCtx, externalID)
	cancel()
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			log.Printf("[library] provider %s lookup %q failed: %v", providerName, externalID, err)
		}
		return nil, ErrNotFound
	}

	var meta *models.MetadataRecord
	if s.resolver != nil {
		meta = s.resolver.Resolve(ctx, metadataQuery(*hit), hit.Year)
	}

	sources := []models.Source{sourceFromHit(*hit)}
	sources = append(sources, s.relatedSources(ctx, owner.Name(), *hit)...)

	details := &models.MovieDetails{
		MovieListItem: models.MovieListItem{
			ID:        id,
			Title:     hit.Title,
			Year:      hit.Year,
			Providers: providerSet(sources),
		},
		Sources: sources,
	}
	details.PosterURL = hit.CoverURL
	if meta != nil {
		if meta.PosterURL != "" {
			details.PosterURL = meta.PosterURL
		}
		details.RatingText = meta.RatingText
		details.Genre = meta.Genre
		details.Plot = meta.Plot
		details.RuntimeText = meta.RuntimeText
		details.Director = meta.Director
		details.ActorsText = meta.ActorsText
	}

	if userID != "" && s.watched != nil {
		watched, err := s.watched.IsWatched(userID, id)
		if err != nil {
			log.Printf("[library] watched lookup failed for %s: %v", userID, err)
		} else {
			details.IsWatched = watched
		}
	}
	return details, nil
}

// relatedSources re-queries every provider other than the owner for the
// hit's title and keeps exact title/year matches as alternate sources.
func (s *Service) relatedSources(ctx context.Context, ownerName string, hit models.ProviderHit) []models.Source {
	merged, _ := s.fanOut(ctx, func(callCtx context.Context, p catalog.Provider) ([]models.ProviderHit, int, error) {
		if p.Name() == ownerName {
			return nil, 0, nil
		}
		hits, total, err := p.Search(callCtx, hit.Title, 1, relatedSourcePageSize)
		return hits, total, err
	})

	var sources []models.Source
	for _, other := range merged {
		if !strings.EqualFold(other.Title, hit.Title) || other.Year != hit.Year {
			continue
		}
		sources = append(sources, sourceFromHit(other))
	}
	return sources
}

// enrich resolves metadata for each group concurrently.
func (s *Service) enrich(ctx context.Context, groups []*movieGroup) {
	if s.resolver == nil || len(groups) == 0 {
		return
	}
	workers := pool.New().WithMaxGoroutines(enrichWorkers)
	for _, g := range groups {
		workers.Go(func() {
			g.meta = s.resolver.Resolve(ctx, metadataQuery(g.anchor), g.anchor.Year)
		})
	}
	workers.Wait()
}

// joinWatched sets the watched flag on items with one batch membership
// query. Store failures leave the flags unset.
func (s *Service) joinWatched(userID string, items []models.MovieListItem) {
	if userID == "" || s.watched == nil || len(items) == 0 {
		return
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	membership, err := s.watched.Membership(userID, ids)
	if err != nil {
		log.Printf("[library] watched membership failed for %s: %v", userID, err)
		return
	}
	for i := range items {
		items[i].IsWatched = membership[items[i].ID]
	}
}

// projectWithPosters turns enriched groups into list items, dropping any
// group that resolved no poster at all.
func projectWithPosters(groups []*movieGroup) []models.MovieListItem {
	items := make([]models.MovieListItem, 0, len(groups))
	for _, g := range groups {
		if g.posterFor() == "" {
			continue
		}
		items = append(items, g.toListItem())
	}
	return items
}

// metadataQuery prefers the anchor's IMDB id over its title.
func metadataQuery(hit models.ProviderHit) string {
	if hit.IMDBID != "" {
		return hit.IMDBID
	}
	return hit.Title
}

func sourceFromHit(hit models.ProviderHit) models.Source {
	return models.Source{
		Provider:     hit.Provider,
		ExternalID:   hit.ExternalID,
		DownloadRef:  hit.PrimaryLink,
		QualityLabel: hit.QualityLabel,
		Seeders:      hit.Seeders,
		Leechers:     hit.Leechers,
		SizeLabel:    hit.SizeLabel,
		Language:     hit.Language,
	}
}

func providerSet(sources []models.Source) []string {
	var names []string
	seen := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		if _, ok := seen[src.Provider]; ok {
			continue
		}
		seen[src.Provider] = struct{}{}
		names = append(names, src.Provider)
	}
	return names
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}
