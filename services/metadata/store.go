package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"cinestream/models"
)

// recordTTL is how long a fetched metadata record stays valid.
const recordTTL = 7 * 24 * time.Hour

// Store is the TTL-keyed cache shared by the metadata sources. Expired
// entries are treated as misses and removed on read.
type Store interface {
	Get(key string) (*models.MetadataRecord, bool)
	Put(key string, record *models.MetadataRecord, expiresAt time.Time) error
}

var bucketMetadata = []byte("metadata")

type storedRecord struct {
	Record    models.MetadataRecord `json:"record"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// BoltStore persists metadata records in a bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the cache bucket on an already-open
// database. The database is shared with other stores and is closed by the
// owner, not here.
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMetadata)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create metadata bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(key string) (*models.MetadataRecord, bool) {
	var stored storedRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMetadata).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false
	}
	if time.Now().After(stored.ExpiresAt) {
		// Stale entry, drop it and report a miss.
		_ = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketMetadata).Delete([]byte(key))
		})
		return nil, false
	}
	rec := stored.Record
	return &rec, true
}

func (s *BoltStore) Put(key string, record *models.MetadataRecord, expiresAt time.Time) error {
	if key == "" || record == nil {
		return fmt.Errorf("empty key or record")
	}
	data, err := json.Marshal(storedRecord{Record: *record, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put([]byte(key), data)
	})
}

var (
	imdbIDRe    = regexp.MustCompile(`^tt\d+$`)
	nonSlugRe   = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrimRe  = regexp.MustCompile(`^-+|-+$`)
	multiDashRe = regexp.MustCompile(`-{2,}`)
)

// looksLikeIMDBID reports whether the query is an IMDB identifier rather
// than a title.
func looksLikeIMDBID(query string) bool {
	return imdbIDRe.MatchString(strings.ToLower(strings.TrimSpace(query)))
}

// cacheKey derives the source-independent part of a cache key:
// imdb:<id> for IMDB lookups, title:<slug>[:<year>] otherwise. Callers
// prepend the source name so two sources never collide on the same movie.
func cacheKey(titleOrIMDBID string, year int) string {
	q := strings.TrimSpace(titleOrIMDBID)
	if looksLikeIMDBID(q) {
		return "imdb:" + strings.ToLower(q)
	}
	key := "title:" + slugify(q)
	if year > 0 {
		key = fmt.Sprintf("%s:%d", key, year)
	}
	return key
}

func slugify(s string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(s), "-")
	slug = multiDashRe.ReplaceAllString(slug, "-")
	return slugTrimRe.ReplaceAllString(slug, "")
}
