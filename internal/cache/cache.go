// Package cache provides the layered (memory + disk) store for segment
// extraction results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by all layers
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a scope (provider/model/schema identity) and
// the segment content. Identical segments under the same scope share a key.
func Key(scope, content string) string {
	hash := sha256.New()
	hash.Write([]byte(scope))
	hash.Write([]byte{0})
	hash.Write([]byte(content))
	return "coalesce:v1:" + hex.EncodeToString(hash.Sum(nil))
}
