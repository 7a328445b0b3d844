package cache

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/minipost/config"
	"github.com/cppla/minipost/models"
	"github.com/cppla/minipost/utils"
)

const redisOpTimeout = 2 * time.Second

// NewRedisClient builds a client from configuration and pings it once.
func NewRedisClient(cfg config.AppConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  redisOpTimeout,
		WriteTimeout: redisOpTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisStore keeps post lists as JSON values that Redis expires on its own.
// Capacity is bounded by the server's maxmemory eviction policy.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore stores each list for ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, ownerID uint) ([]models.Post, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	key := postsKey(ownerID)
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.Sugar.Warnw("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var posts []models.Post
	if err := json.Unmarshal(b, &posts); err != nil {
		utils.Sugar.Warnw("cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, true
}

func (r *RedisStore) Set(ctx context.Context, ownerID uint, posts []models.Post) {
	b, err := json.Marshal(posts)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	key := postsKey(ownerID)
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		utils.Sugar.Warnw("cache set failed", "key", key, "error", err)
	}
}

func (r *RedisStore) Invalidate(ctx context.Context, ownerID uint) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	key := postsKey(ownerID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		utils.Sugar.Warnw("cache invalidate failed", "key", key, "error", err)
	}
}
