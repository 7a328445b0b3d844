package cache

import (
	"context"

	"github.com/cppla/minipost/models"
	"github.com/cppla/minipost/repository"
)

// CachedPostStore reads post lists through a Store and drops an owner's
// entry whenever that owner's posts change, so a list never outlives a write.
type CachedPostStore struct {
	repository.PostStore
	cache Store
}

var _ repository.PostStore = (*CachedPostStore)(nil)

// NewCachedPostStore wraps next with cache.
func NewCachedPostStore(next repository.PostStore, cache Store) *CachedPostStore {
	return &CachedPostStore{PostStore: next, cache: cache}
}

func (c *CachedPostStore) Create(ctx context.Context, ownerID uint, text string) (*models.Post, error) {
	post, err := c.PostStore.Create(ctx, ownerID, text)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(context.WithoutCancel(ctx), ownerID)
	return post, nil
}

func (c *CachedPostStore) ListByOwner(ctx context.Context, ownerID uint) ([]models.Post, error) {
	if posts, ok := c.cache.Get(ctx, ownerID); ok {
		return posts, nil
	}
	posts, err := c.PostStore.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, ownerID, posts)
	return posts, nil
}

func (c *CachedPostStore) DeleteByIDAndOwner(ctx context.Context, postID, ownerID uint) (bool, error) {
	deleted, err := c.PostStore.DeleteByIDAndOwner(ctx, postID, ownerID)
	if err != nil {
		return false, err
	}
	if deleted {
		// the write is committed even if the caller has gone away
		c.cache.Invalidate(context.WithoutCancel(ctx), ownerID)
	}
	return deleted, nil
}
