package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
)

func seed(t *testing.T, repo *stubRepo, username, email string) *application.UserView {
	t.Helper()
	reg := application.NewRegistrationService(repo, &fakeHasher{}, application.Projections{}, nil)
	v, err := reg.Register(context.Background(), application.RegisterInput{Username: username, Email: email, Password: "pw"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return v
}

func TestGetByID(t *testing.T) {
	repo := newStubRepo()
	created := seed(t, repo, "ana", "ana@shop.com")
	svc := application.NewQueryService(repo, nil, nil)

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != "ana" || got.Email != "ana@shop.com" {
		t.Errorf("view = %+v", got)
	}

	if _, err := svc.GetByID(context.Background(), "unknown"); !errors.Is(err, application.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetByID_StorageFailure(t *testing.T) {
	repo := newStubRepo()
	repo.findByIDErr = errBoom
	svc := application.NewQueryService(repo, nil, nil)

	_, err := svc.GetByID(context.Background(), "any")
	if !errors.Is(err, application.ErrPersistence) || errors.Is(err, application.ErrUserNotFound) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestGetByID_ReadsThroughCache(t *testing.T) {
	repo := newStubRepo()
	created := seed(t, repo, "ana", "ana@shop.com")
	svc := application.NewQueryService(repo, newMapCache(), nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.GetByID(context.Background(), created.ID); err != nil {
			t.Fatalf("GetByID: %v", err)
		}
	}
	if repo.findByIDCalls != 1 {
		t.Errorf("repository calls = %d, want 1", repo.findByIDCalls)
	}
}

func TestSearch(t *testing.T) {
	t.Run("no index", func(t *testing.T) {
		svc := application.NewQueryService(newStubRepo(), nil, nil)
		got, err := svc.Search(context.Background(), "ana", 5)
		if err != nil || got == nil || len(got) != 0 {
			t.Fatalf("got %v, %v", got, err)
		}
	})

	t.Run("clamps size", func(t *testing.T) {
		index := &recordingIndex{}
		svc := application.NewQueryService(newStubRepo(), nil, index)
		for _, tc := range []struct{ in, want int }{{0, 10}, {-1, 10}, {51, 10}, {50, 50}, {7, 7}} {
			if _, err := svc.Search(context.Background(), "ana", tc.in); err != nil {
				t.Fatalf("Search: %v", err)
			}
			if index.lastSize != tc.want {
				t.Errorf("size %d -> %d, want %d", tc.in, index.lastSize, tc.want)
			}
		}
	})

	t.Run("returns hits", func(t *testing.T) {
		index := &recordingIndex{indexed: []application.UserView{{ID: "1", Username: "ana"}, {ID: "2", Username: "bob"}}}
		svc := application.NewQueryService(newStubRepo(), nil, index)
		got, err := svc.Search(context.Background(), "ana", 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("got %+v", got)
		}
	})
}
