package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Common errors.
var (
	ErrNotFound   = errors.New("key not found")
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("invalid key")
)

// Store is a key-value store for resolved records.
type Store interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stores a value, replacing any previous one.
	Put(key string, value []byte) error

	// Delete removes a key.
	// Returns nil if the key does not exist.
	Delete(key string) error

	// Close releases resources. Later calls fail with ErrClosed.
	Close() error
}

// Fingerprint returns the cache key for an input document.
func Fingerprint(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

// ValidateKey checks if a key is valid.
func ValidateKey(key string) error {
	if key == "" || len(key) > 1024 || strings.ContainsAny(key, " \t\n") {
		return ErrInvalidKey
	}
	return nil
}
