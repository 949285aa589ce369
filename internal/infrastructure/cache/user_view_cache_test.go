package cache_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/cache"
)

// unreachable returns a client whose every command fails fast.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestKey(t *testing.T) {
	if got := cache.Key("42"); got != "user:view:42" {
		t.Errorf("Key = %q", got)
	}
}

func TestUserViewCache_FallsThroughWhenRedisIsDown(t *testing.T) {
	c := cache.NewUserViewCache(unreachable(t), time.Minute, quietLogger())

	want := &application.UserView{ID: "u-1", Username: "ana", Roles: []string{"Buyer"}}
	got, err := c.GetOrLoad(context.Background(), "u-1", func(context.Context) (*application.UserView, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if got.ID != "u-1" || got.Username != "ana" {
		t.Errorf("got %+v", got)
	}
	got.Roles[0] = "Administrator"
	if want.Roles[0] != "Buyer" {
		t.Errorf("caller mutation leaked into the loaded view")
	}
}

func TestUserViewCache_PropagatesLoadErrors(t *testing.T) {
	c := cache.NewUserViewCache(unreachable(t), time.Minute, quietLogger())

	_, err := c.GetOrLoad(context.Background(), "missing", func(context.Context) (*application.UserView, error) {
		return nil, application.ErrUserNotFound
	})
	if !errors.Is(err, application.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserViewCache_SharesConcurrentLoads(t *testing.T) {
	c := cache.NewUserViewCache(unreachable(t), time.Minute, quietLogger())

	var loads atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (*application.UserView, error) {
		loads.Add(1)
		<-release
		return &application.UserView{ID: "u-1"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrLoad(context.Background(), "u-1", load); err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
		}()
	}
	time.Sleep(300 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestUserViewCache_SetAndDeleteTolerateRedisErrors(t *testing.T) {
	c := cache.NewUserViewCache(unreachable(t), time.Minute, quietLogger())
	c.Set(context.Background(), &application.UserView{ID: "u-1"})
	c.Set(context.Background(), nil)
	c.Delete(context.Background(), "u-1")
}

// memRedis answers the three commands the cache uses from a map.
type memRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string][]byte
}

func newMemRedis() *memRedis { return &memRedis{data: map[string][]byte{}} }

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (m *memRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func TestUserViewCache_ServesHitsFromRedis(t *testing.T) {
	rdb := newMemRedis()
	c := cache.NewUserViewCache(rdb, time.Minute, quietLogger())

	var loads atomic.Int32
	load := func(context.Context) (*application.UserView, error) {
		loads.Add(1)
		return &application.UserView{ID: "u-1", Username: "ana", Roles: []string{"Buyer"}}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := c.GetOrLoad(context.Background(), "u-1", load)
		if err != nil || got.Username != "ana" {
			t.Fatalf("GetOrLoad = %+v, %v", got, err)
		}
	}
	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}

	c.Delete(context.Background(), "u-1")
	if rdb.has(cache.Key("u-1")) {
		t.Error("entry survived Delete")
	}
}

func TestUserViewCache_DeleteDuringLoadSkipsWriteBack(t *testing.T) {
	rdb := newMemRedis()
	c := cache.NewUserViewCache(rdb, time.Minute, quietLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	var loads atomic.Int32
	load := func(context.Context) (*application.UserView, error) {
		if loads.Add(1) == 1 {
			close(started)
			<-release
		}
		return &application.UserView{ID: "u-1", Username: "ana"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(context.Background(), "u-1", load)
		done <- err
	}()
	<-started
	c.Delete(context.Background(), "u-1")
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}

	if rdb.has(cache.Key("u-1")) {
		t.Fatal("stale view written back after Delete")
	}

	if _, err := c.GetOrLoad(context.Background(), "u-1", load); err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if n := loads.Load(); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
	if !rdb.has(cache.Key("u-1")) {
		t.Error("a load after Delete should fill the cache again")
	}
}
