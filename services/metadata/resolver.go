package metadata

import (
	"context"
	"log"

	"cinestream/models"
)

// Source is one external metadata API normalized to a common record.
// A nil record with a nil error means the source has no match.
type Source interface {
	Name() string
	Fetch(ctx context.Context, titleOrIMDBID string, year int) (*models.MetadataRecord, error)
}

// Resolver orchestrates the primary/fallback lookup chain and merges the
// two records field by field.
type Resolver struct {
	primary  Source
	fallback Source
}

func NewResolver(primary, fallback Source) *Resolver {
	return &Resolver{primary: primary, fallback: fallback}
}

// Resolve returns the best available record for a title or IMDB ID, or
// nil when neither source knows the movie. A primary record with a poster
// is returned as-is; otherwise the fallback fills in what the primary is
// missing, with the primary's non-empty fields winning ties. Source
// failures are logged and degrade to "no record".
func (r *Resolver) Resolve(ctx context.Context, titleOrIMDBID string, year int) *models.MetadataRecord {
	primary := r.lookup(ctx, r.primary, titleOrIMDBID, year)
	if primary != nil && primary.PosterURL != "" {
		return primary
	}

	fallback := r.lookup(ctx, r.fallback, titleOrIMDBID, year)
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return mergeRecords(primary, fallback)
}

func (r *Resolver) lookup(ctx context.Context, src Source, titleOrIMDBID string, year int) *models.MetadataRecord {
	if src == nil {
		return nil
	}
	record, err := src.Fetch(ctx, titleOrIMDBID, year)
	if err != nil {
		log.Printf("[metadata] %s lookup %q failed: %v", src.Name(), titleOrIMDBID, err)
		return nil
	}
	return record
}

// mergeRecords fills empty primary fields from the fallback record.
func mergeRecords(primary, fallback *models.MetadataRecord) *models.MetadataRecord {
	merged := *primary
	if merged.PosterURL == "" {
		merged.PosterURL = fallback.PosterURL
	}
	if merged.RatingText == "" {
		merged.RatingText = fallback.RatingText
	}
	if merged.Plot == "" {
		merged.Plot = fallback.Plot
	}
	if merged.Genre == "" {
		merged.Genre = fallback.Genre
	}
	if merged.RuntimeText == "" {
		merged.RuntimeText = fallback.RuntimeText
	}
	if merged.Director == "" {
		merged.Director = fallback.Director
	}
	if merged.ActorsText == "" {
		merged.ActorsText = fallback.ActorsText
	}
	if merged.IMDBID == "" {
		merged.IMDBID = fallback.IMDBID
	}
	return &merged
}
