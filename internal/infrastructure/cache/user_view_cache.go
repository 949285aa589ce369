package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/pkg/helpers"
)

const keyPrefix = "user:view:"

// UserViewCache keeps projected users in redis. Concurrent misses for the
// same id share one load. Redis failures are logged and the load runs anyway.
// A load that was in flight when any Delete ran is returned to its callers
// but not written back.
type UserViewCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	group  singleflight.Group
	logger *logrus.Logger

	invalidations atomic.Uint64
}

func NewUserViewCache(rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *UserViewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserViewCache{rdb: rdb, ttl: ttl, logger: logger}
}

func Key(id string) string { return keyPrefix + id }

func (c *UserViewCache) GetOrLoad(ctx context.Context, id string, load func(ctx context.Context) (*application.UserView, error)) (*application.UserView, error) {
	key := Key(id)

	var cached application.UserView
	hit, err := helpers.RedisGetJSON(ctx, c.rdb, key, &cached)
	if err != nil {
		c.warn(err, key, "user cache read failed")
	} else if hit {
		return &cached, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.invalidations.Load()
		// one caller giving up must not fail the others sharing this load
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if c.invalidations.Load() == gen {
			c.Set(ctx, v)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(res.(*application.UserView)), nil
}

func (c *UserViewCache) Set(ctx context.Context, v *application.UserView) {
	if v == nil || v.ID == "" {
		return
	}
	key := Key(v.ID)
	if err := helpers.RedisSetJSON(ctx, c.rdb, key, v, c.ttl); err != nil {
		c.warn(err, key, "user cache write failed")
	}
}

func (c *UserViewCache) Delete(ctx context.Context, id string) {
	key := Key(id)
	c.invalidations.Add(1)
	c.group.Forget(key)
	if err := helpers.RedisDel(ctx, c.rdb, key); err != nil {
		c.warn(err, key, "user cache delete failed")
	}
}

func (c *UserViewCache) warn(err error, key, msg string) {
	if c.logger != nil {
		c.logger.WithError(err).WithField("key", key).Warn(msg)
	}
}

func clone(v *application.UserView) *application.UserView {
	cp := *v
	cp.Roles = slices.Clone(v.Roles)
	return &cp
}

var _ application.ViewCache = (*UserViewCache)(nil)
