package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "activity"

// Store persists board activity comments in BoltDB until the board accepts them.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Enqueue stores a comment keyed by creation time so batches come out oldest first.
func (s *Store) Enqueue(_ context.Context, comment Comment) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	comment.normalize()
	comment.bucketKey = []byte(buildKey(comment))

	payload, err := json.Marshal(comment)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(comment.bucketKey, payload)
	})
}

// GetBatch returns up to limit comments without removing them.
func (s *Store) GetBatch(_ context.Context, limit int) ([]Comment, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var comments []Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(comments) < limit; k, v = c.Next() {
			var comment Comment
			if err := json.Unmarshal(v, &comment); err != nil {
				continue
			}
			comment.bucketKey = append([]byte(nil), k...)
			comments = append(comments, comment)
		}
		return nil
	})
	return comments, err
}

// Remove deletes the comment from the outbox.
func (s *Store) Remove(_ context.Context, comment Comment) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(comment.bucketKey) == 0 {
		comment.bucketKey = []byte(buildKey(comment))
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(comment.bucketKey)
	})
}

// Requeue rewrites the comment in place with its attempt counter bumped.
// The key is kept so the comment keeps its place in the queue.
func (s *Store) Requeue(_ context.Context, comment Comment, cause error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	comment.Attempts++
	if cause != nil {
		comment.LastError = cause.Error()
	}
	if len(comment.bucketKey) == 0 {
		comment.bucketKey = []byte(buildKey(comment))
	}

	payload, err := json.Marshal(comment)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(comment.bucketKey, payload)
	})
}

// Size returns the number of pending comments.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes comments created before olderThan and returns how many were dropped.
func (s *Store) Cleanup(_ context.Context, olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var comment Comment
			if err := json.Unmarshal(v, &comment); err != nil {
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			if comment.CreatedAt.Before(olderThan) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, key := range stale {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(comment Comment) string {
	return fmt.Sprintf("%020d_%s", comment.CreatedAt.UnixNano(), comment.ID)
}
