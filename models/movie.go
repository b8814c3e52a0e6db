package models

// ProviderHit is one raw result returned by a catalog provider. Hits are
// assembled per request and discarded after the response is built.
type ProviderHit struct {
	Provider     string `json:"provider"`
	ExternalID   string `json:"externalId"`
	Title        string `json:"title"`
	Year         int    `json:"year,omitempty"`
	IMDBID       string `json:"imdbId,omitempty"`
	PrimaryLink  string `json:"primaryLink,omitempty"`
	Seeders      int    `json:"seeders,omitempty"`
	Leechers     int    `json:"leechers,omitempty"`
	SizeLabel    string `json:"sizeLabel,omitempty"`
	Language     string `json:"language,omitempty"`
	CoverURL     string `json:"coverUrl,omitempty"`
	QualityLabel string `json:"qualityLabel,omitempty"`
}

// MetadataRecord is the normalized enrichment payload produced by a
// metadata source (poster, rating, plot, cast).
type MetadataRecord struct {
	PosterURL   string `json:"posterUrl,omitempty"`
	RatingText  string `json:"ratingText,omitempty"`
	Plot        string `json:"plot,omitempty"`
	Genre       string `json:"genre,omitempty"`
	RuntimeText string `json:"runtimeText,omitempty"`
	Director    string `json:"director,omitempty"`
	ActorsText  string `json:"actorsText,omitempty"`
	IMDBID      string `json:"imdbId,omitempty"`
}

// MovieListItem is one entry of a list view. PosterURL is always set;
// items without a poster are dropped before projection.
type MovieListItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	PosterURL  string   `json:"posterUrl"`
	RatingText string   `json:"ratingText,omitempty"`
	Genre      string   `json:"genre,omitempty"`
	Providers  []string `json:"providers"`
	IsWatched  bool     `json:"isWatched,omitempty"`
}

// Source is one downloadable origin of a movie. DownloadRef is a magnet
// URI or a direct URL depending on the owning provider.
type Source struct {
	Provider     string `json:"provider"`
	ExternalID   string `json:"externalId"`
	DownloadRef  string `json:"downloadRef"`
	QualityLabel string `json:"qualityLabel,omitempty"`
	Seeders      int    `json:"seeders,omitempty"`
	Leechers     int    `json:"leechers,omitempty"`
	SizeLabel    string `json:"sizeLabel,omitempty"`
	Language     string `json:"language,omitempty"`
}

// MovieDetails is the detail view of a single movie. Unlike list items it
// may carry an empty poster.
type MovieDetails struct {
	MovieListItem
	Plot        string   `json:"plot,omitempty"`
	RuntimeText string   `json:"runtimeText,omitempty"`
	Director    string   `json:"director,omitempty"`
	ActorsText  string   `json:"actorsText,omitempty"`
	Sources     []Source `json:"sources"`
}

// PaginatedMovies is the list-view response envelope.
type PaginatedMovies struct {
	Items       []MovieListItem `json:"items"`
	Page        int             `json:"page"`
	PageSize    int             `json:"pageSize"`
	HasMore     bool            `json:"hasMore"`
	TotalApprox int             `json:"totalApprox,omitempty"`
}
