package service

import (
	"context"
	"time"

	"github.com/studyflow/accounthub/internal/domain/user"
)

// UserStore is the persistence contract the services depend on. Both the
// Postgres and the in-memory repos satisfy it.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (user.User, error)
	Delete(ctx context.Context, id int64) error
	CountAll(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}
