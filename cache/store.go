// Package cache memoizes per-owner post lists in front of the post store.
package cache

import (
	"context"
	"strconv"

	"github.com/cppla/minipost/models"
)

// Store holds post lists keyed by owner id. Implementations never fail: a
// backend error is logged and behaves like a miss.
type Store interface {
	Get(ctx context.Context, ownerID uint) ([]models.Post, bool)
	Set(ctx context.Context, ownerID uint, posts []models.Post)
	Invalidate(ctx context.Context, ownerID uint)
}

func postsKey(ownerID uint) string {
	return "cache:user:" + strconv.FormatUint(uint64(ownerID), 10) + ":posts"
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}
