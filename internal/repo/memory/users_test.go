package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/repo/memory"
)

func TestCreateEnforcesEmailUniqueness(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, "a@x.com", "hash", user.RoleUser)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = repo.Create(ctx, "a@x.com", "other-hash", user.RoleUser)
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("duplicate create: got %v, want ErrEmailTaken", err)
	}

	// the failed create left no row behind
	n, err := repo.CountAll(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d rows, want 1", n)
	}
}

func TestDeleteFreesEmailForReuse(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, "a@x.com", "hash", user.RoleUser)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := repo.Delete(ctx, u.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}

	if _, err := repo.Create(ctx, "a@x.com", "hash", user.RoleUser); err != nil {
		t.Fatalf("email should be reusable after delete: %v", err)
	}
}

func TestCountByRoleTracksPromotions(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, "a@x.com", "hash", user.RoleUser)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	n, err := repo.CountByRole(ctx, user.RoleAdmin)
	if err != nil || n != 0 {
		t.Fatalf("got %d admins (err=%v), want 0", n, err)
	}

	if _, err := repo.UpdateRole(ctx, u.ID, user.RoleAdmin); err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	n, err = repo.CountByRole(ctx, user.RoleAdmin)
	if err != nil || n != 1 {
		t.Fatalf("got %d admins (err=%v), want 1", n, err)
	}
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, "a@x.com", "hash", user.RoleUser)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = repo.UpdateRole(ctx, u.ID, "superuser")
	if !errors.Is(err, user.ErrInvalidRole) {
		t.Fatalf("got %v, want ErrInvalidRole", err)
	}

	// row untouched
	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Role != user.RoleUser {
		t.Fatalf("role mutated to %q", got.Role)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	first, _ := repo.Create(ctx, "first@x.com", "hash", user.RoleUser)
	second, _ := repo.Create(ctx, "second@x.com", "hash", user.RoleUser)

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	// both rows land in the same instant on a fast machine, so the id
	// tiebreak decides: newest id first
	if users[0].ID != second.ID || users[1].ID != first.ID {
		t.Fatalf("unexpected order: %d then %d", users[0].ID, users[1].ID)
	}
}

func TestCountCreatedSince(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, "a@x.com", "hash", user.RoleUser); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	n, err := repo.CountCreatedSince(ctx, time.Now().UTC().Add(-user.RecentWindow))
	if err != nil || n != 1 {
		t.Fatalf("got %d recent (err=%v), want 1", n, err)
	}

	n, err = repo.CountCreatedSince(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("got %d future-window (err=%v), want 0", n, err)
	}
}
