package service

import (
	"context"
	"errors"

	"github.com/studyflow/accounthub/internal/domain/user"
)

// AccessGate authorizes admin-only operations. The caller's role is
// resolved from the store on every call rather than trusted from the
// token claim, so a role change takes effect on the next request.
type AccessGate struct {
	store UserStore
}

func NewAccessGate(store UserStore) *AccessGate {
	return &AccessGate{store: store}
}

// Authorize resolves the caller and checks the required role. A caller
// the store no longer knows is unauthenticated, not forbidden: their
// identity could not be established at all.
func (g *AccessGate) Authorize(ctx context.Context, callerID int64, requiredRole string) (user.User, error) {
	caller, err := g.store.GetByID(ctx, callerID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrUnauthenticated
		}

		return user.User{}, err
	}

	if caller.Role != requiredRole {
		return user.User{}, user.ErrForbidden
	}

	return caller, nil
}

// AuthorizeDelete layers the self-protection rule on top of the role
// check: an admin can never delete their own account, which keeps the
// system from losing its last administrator by accident.
func (g *AccessGate) AuthorizeDelete(ctx context.Context, callerID, targetID int64) (user.User, error) {
	if callerID == targetID {
		return user.User{}, user.ErrSelfDeletion
	}

	return g.Authorize(ctx, callerID, user.RoleAdmin)
}
