package store

import (
	lru "github.com/hashicorp/golang-lru"
)

// memoryTier is the in-process LRU in front of the disk. A nil tier is a
// valid, always-empty tier.
type memoryTier struct {
	cache *lru.Cache
}

func newMemoryTier(size int) (*memoryTier, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &memoryTier{cache: c}, nil
}

func (m *memoryTier) get(key Key) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// add keeps whichever of the cached and the new entry is newer.
func (m *memoryTier) add(key Key, e Entry) {
	if m == nil {
		return
	}
	if prev, ok := m.get(key); ok && prev.FetchedAt.After(e.FetchedAt) {
		return
	}
	m.cache.Add(key, e)
}

func (m *memoryTier) remove(key Key) {
	if m == nil {
		return
	}
	m.cache.Remove(key)
}

func (m *memoryTier) purge() {
	if m == nil {
		return
	}
	m.cache.Purge()
}
