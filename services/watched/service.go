package watched

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketWatched = []byte("watched")

// keySep joins user and movie ids in one flat bucket. Movie ids are
// base64url and user ids are UUIDs, so the NUL byte can't collide.
const keySep = "\x00"

// Service persists per-user watched state in a bbolt bucket. The engine
// consumes it through point lookups and one batch membership query per
// list view; the mark endpoints are plumbing for the transport layer.
type Service struct {
	db *bolt.DB
}

// NewService opens (or creates) the watched bucket on an already-open
// database shared with the other stores.
func NewService(db *bolt.DB) (*Service, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketWatched)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create watched bucket: %w", err)
	}
	return &Service{db: db}, nil
}

func stateKey(userID, movieID string) []byte {
	return []byte(userID + keySep + movieID)
}

// IsWatched reports whether the user has marked the movie watched.
func (s *Service) IsWatched(userID, movieID string) (bool, error) {
	var watched bool
	err := s.db.View(func(tx *bolt.Tx) error {
		watched = tx.Bucket(bucketWatched).Get(stateKey(userID, movieID)) != nil
		return nil
	})
	return watched, err
}

// Membership answers the batch form used by list views: which of the
// given movie ids the user has watched.
func (s *Service) Membership(userID string, movieIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(movieIDs))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatched)
		for _, id := range movieIDs {
			if b.Get(stateKey(userID, id)) != nil {
				result[id] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Mark records the movie as watched for the user. Idempotent.
func (s *Service) Mark(userID, movieID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatched).Put(stateKey(userID, movieID), []byte{1})
	})
}

// Unmark clears the watched flag. Removing an unmarked movie is a no-op.
func (s *Service) Unmark(userID, movieID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatched).Delete(stateKey(userID, movieID))
	})
}
