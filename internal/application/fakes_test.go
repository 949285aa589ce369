package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/memory"
)

type fakeHasher struct {
	calls int
	err   error
}

func (h *fakeHasher) Hash(p string) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + p, nil
}

// stubRepo wraps the in-memory repository and lets a test override single calls.
type stubRepo struct {
	*memory.UserRepository
	findByEmailErr error
	findByIDErr    error
	saveErr        error
	findByIDCalls  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{UserRepository: memory.NewUserRepository()}
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.findByEmailErr != nil {
		return nil, r.findByEmailErr
	}
	return r.UserRepository.FindByEmail(ctx, email)
}

func (r *stubRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.findByIDCalls++
	if r.findByIDErr != nil {
		return nil, r.findByIDErr
	}
	return r.UserRepository.FindByID(ctx, id)
}

func (r *stubRepo) Save(ctx context.Context, u *entity.User) (string, error) {
	if r.saveErr != nil {
		return "", r.saveErr
	}
	return r.UserRepository.Save(ctx, u)
}

var _ repository.UserRepository = (*stubRepo)(nil)

type mapCache struct {
	mu    sync.Mutex
	views map[string]application.UserView
}

func newMapCache() *mapCache { return &mapCache{views: map[string]application.UserView{}} }

func (c *mapCache) GetOrLoad(ctx context.Context, id string, load func(context.Context) (*application.UserView, error)) (*application.UserView, error) {
	c.mu.Lock()
	v, ok := c.views[id]
	c.mu.Unlock()
	if ok {
		return &v, nil
	}
	loaded, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(ctx, loaded)
	return loaded, nil
}

func (c *mapCache) Set(_ context.Context, v *application.UserView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[v.ID] = *v
}

func (c *mapCache) Delete(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, id)
}

func (c *mapCache) get(id string) (application.UserView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[id]
	return v, ok
}

type recordingIndex struct {
	indexed  []application.UserView
	deleted  []string
	lastSize int
	err      error
}

func (x *recordingIndex) Index(_ context.Context, v *application.UserView) error {
	x.indexed = append(x.indexed, *v)
	return x.err
}

func (x *recordingIndex) Delete(_ context.Context, id string) error {
	x.deleted = append(x.deleted, id)
	return x.err
}

func (x *recordingIndex) Search(_ context.Context, q string, size int) ([]application.UserView, error) {
	x.lastSize = size
	if x.err != nil {
		return nil, x.err
	}
	var out []application.UserView
	for _, v := range x.indexed {
		if v.Username == q {
			out = append(out, v)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []application.UserEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, body any) error {
	if ev, ok := body.(application.UserEvent); ok && ev.Type == eventType {
		p.events = append(p.events, ev)
	}
	return p.err
}

var errBoom = errors.New("boom")
