// Package cache holds the redis read-through cache for hydrated lessons.
// Caching is entity-level rather than response-level: lesson visibility
// differs per account, so cached HTTP responses would leak across
// accounts, while a cached lesson aggregate is the same for everyone who
// may read it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// LessonCache caches fully hydrated lessons under "lesson:<id>".  Every
// method is a no-op when the client is nil, so the service runs the same
// code path with or without redis.
type LessonCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLessonCache(rdb *redis.Client, ttl time.Duration) *LessonCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LessonCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached lesson and whether it was present.  Any redis or
// decoding problem counts as a miss.
func (c *LessonCache) Get(ctx context.Context, id string) (*model.Lesson, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var l model.Lesson
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, false
	}
	return &l, true
}

// Put stores the lesson for the configured TTL.  Failures are ignored;
// the cache is an optimization, never a source of truth.
func (c *LessonCache) Put(ctx context.Context, l *model.Lesson) {
	if c == nil || c.rdb == nil || l == nil {
		return
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key(l.ID), raw, c.ttl)
}

// Invalidate drops the cached entry.  Called after every update and
// delete of the lesson, and after teacher link changes.
func (c *LessonCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, key(id))
}

func key(id string) string { return "lesson:" + id }
