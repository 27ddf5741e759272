package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/caseline/internal/model"
)

// Cache is the byte-level store a ResultStore sits on top of.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from the narrative text and the report
// family it was analyzed under. Same text, different family, different key.
func CacheKey(text, family string) string {
	hash := sha256.Sum256([]byte(family + "\x00" + text))
	return "caseline:v1:" + hex.EncodeToString(hash[:])
}

// ResultStore caches finished analysis results keyed on narrative text and
// report family. It owns the key derivation and the JSON encoding, so
// callers exchange *model.DocumentFeature values, never raw bytes.
type ResultStore struct {
	store Cache
	ttl   time.Duration
}

// NewResultStore wraps a byte cache. A nil store means caching is disabled;
// the returned nil ResultStore is safe to call and misses on every Get.
func NewResultStore(store Cache, ttl time.Duration) *ResultStore {
	if store == nil {
		return nil
	}
	return &ResultStore{store: store, ttl: ttl}
}

// Get returns the cached result for a narrative. Undecodable entries count
// as misses; the caller re-analyzes and overwrites them.
func (s *ResultStore) Get(text string, family model.ReportFamily) (*model.DocumentFeature, bool) {
	if s == nil {
		return nil, false
	}
	raw, ok := s.store.Get(CacheKey(text, string(family)))
	if !ok {
		return nil, false
	}
	var res model.DocumentFeature
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Set stores a finished result under the narrative's key.
func (s *ResultStore) Set(text string, family model.ReportFamily, res *model.DocumentFeature) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return s.store.Set(CacheKey(text, string(family)), raw, s.ttl)
}
