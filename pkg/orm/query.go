// Package orm is a small chainable layer over GORM that adds request
// contexts, not-found detection and Redis cache-aside reads.
//
//	var cats []models.Category
//	err := orm.On(db).WithContext(ctx).Order("id").Cache(ctx, "catalog:categories", time.Hour, &cats)
package orm

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/heartscript/pkg/cache"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"gorm.io/gorm"
)

type Query struct {
	db *gorm.DB
}

func On(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Not(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Not(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Exists() (bool, error) {
	var n int64
	if err := q.db.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Cache reads dest from Redis, or runs the query and stores the result.
// Cache write failures are logged, never returned.
func (q *Query) Cache(ctx context.Context, key string, ttl time.Duration, dest interface{}) error {
	if cache.Get(ctx, key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	if err := cache.Set(ctx, key, dest, ttl); err != nil {
		logger.WithCtx(ctx).Warn("orm: cache write failed", "key", key, "error", err)
	}
	return nil
}

// Forget drops cached keys after a write.
func Forget(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("orm: cache invalidation failed", "keys", keys, "error", err)
	}
}

// IsNotFound reports whether err is GORM's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
