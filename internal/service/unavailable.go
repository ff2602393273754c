package service

import (
	"context"
	"time"

	"github.com/studyflow/accounthub/internal/domain/user"
)

// UnavailableStore stands in for the real store when the database could
// not be reached at startup. The process keeps serving (health checks,
// metrics) while every store operation fails cleanly instead of nil-
// dereferencing a missing pool.
type UnavailableStore struct{}

func (UnavailableStore) Create(ctx context.Context, email, passwordHash, role string) (user.User, error) {
	return user.User{}, user.ErrStoreUnavailable
}

func (UnavailableStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrStoreUnavailable
}

func (UnavailableStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	return user.User{}, user.ErrStoreUnavailable
}

func (UnavailableStore) List(ctx context.Context) ([]user.User, error) {
	return nil, user.ErrStoreUnavailable
}

func (UnavailableStore) UpdateRole(ctx context.Context, id int64, role string) (user.User, error) {
	return user.User{}, user.ErrStoreUnavailable
}

func (UnavailableStore) Delete(ctx context.Context, id int64) error {
	return user.ErrStoreUnavailable
}

func (UnavailableStore) CountAll(ctx context.Context) (int, error) {
	return 0, user.ErrStoreUnavailable
}

func (UnavailableStore) CountByRole(ctx context.Context, role string) (int, error) {
	return 0, user.ErrStoreUnavailable
}

func (UnavailableStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return 0, user.ErrStoreUnavailable
}
