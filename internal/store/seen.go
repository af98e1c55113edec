// Package store provides within-run duplicate suppression keyed by derived
// file names, backed by a Bloom filter and an LRU cache.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenStore is a thread-safe set of file-name identity keys. The Bloom filter
// answers the common "never seen" case without touching the map; the LRU
// bounds memory on very large batches by evicting the oldest keys.
type SeenStore struct {
	keys              map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	maxKeys           int
	falsePositiveRate float64
}

// NewSeenStore creates a store sized for maxKeys entries with the given Bloom
// false positive rate.
func NewSeenStore(maxKeys int, falsePositiveRate float64) *SeenStore {
	if maxKeys < 1 {
		maxKeys = 1
	}

	lruCache, _ := lru.New[string, struct{}](maxKeys)

	return &SeenStore{
		keys:              make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(maxKeys), falsePositiveRate),
		lru:               lruCache,
		maxKeys:           maxKeys,
		falsePositiveRate: falsePositiveRate,
	}
}

// Has reports whether the key was added earlier in this run.
func (s *SeenStore) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.bloom.TestString(key) {
		return false
	}

	_, exists := s.keys[key]
	return exists
}

// Add records a key. Adding an existing key is a no-op.
func (s *SeenStore) Add(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.keys[key]; exists {
		return
	}

	s.keys[key] = struct{}{}
	s.bloom.AddString(key)
	s.lru.Add(key, struct{}{})

	if len(s.keys) > s.maxKeys {
		s.evictOldest()
	}
}

// Size returns the number of keys currently stored.
func (s *SeenStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.keys)
}

// Clear resets the store for a fresh run.
func (s *SeenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.keys = make(map[string]struct{})
	s.bloom = bloom.NewWithEstimates(uint(s.maxKeys), s.falsePositiveRate)
	s.lru.Purge()
}

func (s *SeenStore) evictOldest() {
	oldestKey, _, ok := s.lru.GetOldest()
	if !ok {
		return
	}

	delete(s.keys, oldestKey)
	s.lru.Remove(oldestKey)
	// The Bloom filter cannot forget the evicted key; the resulting false
	// positives are filtered by the map lookup in Has.
}
