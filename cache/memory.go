package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/cppla/minipost/models"
)

// MemoryStore is an in-process LRU with a fixed time-to-live per entry.
// It is safe for concurrent use.
type MemoryStore struct {
	lru *expirable.LRU[uint, []models.Post]
}

// NewMemoryStore keeps at most capacity owners, each for ttl after insertion.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[uint, []models.Post](capacity, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, ownerID uint) ([]models.Post, bool) {
	posts, ok := m.lru.Get(ownerID)
	if !ok {
		return nil, false
	}
	return clonePosts(posts), true
}

func (m *MemoryStore) Set(_ context.Context, ownerID uint, posts []models.Post) {
	m.lru.Add(ownerID, clonePosts(posts))
}

func (m *MemoryStore) Invalidate(_ context.Context, ownerID uint) {
	m.lru.Remove(ownerID)
}

// Len reports the number of owners currently cached.
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
