package application

import (
	"context"

	repo "github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
)

type QueryService struct {
	Repo  repo.UserRepository
	Cache ViewCache
	Index SearchIndex
}

func NewQueryService(r repo.UserRepository, cache ViewCache, index SearchIndex) *QueryService {
	return &QueryService{Repo: r, Cache: cache, Index: index}
}

// GetByID returns the projected user or ErrUserNotFound.
func (s *QueryService) GetByID(ctx context.Context, id string) (*UserView, error) {
	load := func(ctx context.Context) (*UserView, error) {
		u, err := loadUser(ctx, s.Repo, id)
		if err != nil {
			return nil, err
		}
		return NewUserView(u), nil
	}
	if s.Cache == nil {
		return load(ctx)
	}
	return s.Cache.GetOrLoad(ctx, id, load)
}

// Search runs a free-text query against the search index, if one is configured.
func (s *QueryService) Search(ctx context.Context, q string, size int) ([]UserView, error) {
	if s.Index == nil {
		return []UserView{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}

// Ping checks the backing store.
func (s *QueryService) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}
