package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/accounthub/internal/cache"
	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/http/middlewares"
)

type AdminStore interface {
	List(ctx context.Context) ([]user.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (user.User, error)
	Delete(ctx context.Context, id int64) error
	CountAll(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

type DeleteAuthorizer interface {
	AuthorizeDelete(ctx context.Context, callerID, targetID int64) (user.User, error)
}

// AdminHandler serves the admin-only surface. The RequireAdmin
// middleware has already gated the role; delete additionally runs the
// self-protection rule through the gate.
type AdminHandler struct {
	store AdminStore
	gate  DeleteAuthorizer
	stats *cache.StatsCache // nil disables caching
}

func NewAdminHandler(store AdminStore, gate DeleteAuthorizer, stats *cache.StatsCache) *AdminHandler {
	return &AdminHandler{store: store, gate: gate, stats: stats}
}

func (h *AdminHandler) Stats(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	if h.stats != nil {
		if s, ok := h.stats.Get(cctx); ok {
			ctx.JSON(http.StatusOK, s)
			return
		}
	}

	total, err := h.store.CountAll(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	admins, err := h.store.CountByRole(cctx, user.RoleAdmin)

	if err != nil {
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	recent, err := h.store.CountCreatedSince(cctx, time.Now().UTC().Add(-user.RecentWindow))

	if err != nil {
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	s := user.Stats{
		TotalUsers:  total,
		TotalAdmins: admins,
		RecentUsers: recent,
	}

	if h.stats != nil {
		h.stats.Set(cctx, s)
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	users, err := h.store.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	items := make([]user.Public, 0, len(users))

	for _, u := range users {
		items = append(items, u.Public())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *AdminHandler) UpdateRole(ctx *gin.Context) {
	id, ok := parseUserID(ctx, "id")

	if !ok {
		return
	}

	var req UpdateRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	u, err := h.store.UpdateRole(cctx, id, req.Role)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrInvalidRole):
			RespondBadRequest(ctx, "invalid_role", "role must be user or admin", nil)
		default:
			RespondInternal(ctx, "Could not update role")
		}
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(cctx)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "role updated",
		"user":    u.Public(),
	})
}

func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	id, ok := parseUserID(ctx, "id")

	if !ok {
		return
	}

	callerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	_, err := h.gate.AuthorizeDelete(cctx, callerID, id)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrSelfDeletion):
			RespondBadRequest(ctx, "self_delete", "You cannot delete your own account.", nil)
		case errors.Is(err, user.ErrUnauthenticated):
			RespondUnAuthorized(ctx, "unauthorized", "Unknown caller")
		case errors.Is(err, user.ErrForbidden):
			RespondForbidden(ctx, "forbidden", "Admin role required")
		default:
			RespondInternal(ctx, "Could not delete user")
		}
		return
	}

	err = h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(cctx)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "user deleted",
	})
}
