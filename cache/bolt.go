package cache

import (
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vinayprograms/resumekit/errors"
)

// bucketName holds every resolved record.
var bucketName = []byte("resolved")

// BoltStore implements Store on a bbolt file.
type BoltStore struct {
	db     *bolt.DB
	closed atomic.Bool
}

// OpenBolt opens or creates the bbolt file at path. It waits at most one
// second for another process holding the file lock.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeBadConfig, "opening cache "+path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating cache bucket")
	}
	return &BoltStore{db: db}, nil
}

// Path returns the file backing the store.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Get retrieves a copy of the value stored under key.
func (s *BoltStore) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put stores value under key.
func (s *BoltStore) Put(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// Delete removes key.
func (s *BoltStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Close closes the file.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	return s.db.Close()
}
