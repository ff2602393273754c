package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/accounthub/internal/cache"
	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/observability"
)

type Authenticator interface {
	Register(ctx context.Context, email, password string) (user.User, error)
	Login(ctx context.Context, email, password string) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64, email, role string) (string, error)
}

type AuthHandler struct {
	svc    Authenticator
	tokens TokenIssuer
	prom   *observability.Prom
	stats  *cache.StatsCache // nil disables invalidation
}

func NewAuthHandler(svc Authenticator, tokens TokenIssuer, prom *observability.Prom, stats *cache.StatsCache) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens, prom: prom, stats: stats}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) countAuth(counter string, outcome string) {
	if h.prom == nil {
		return
	}

	switch counter {
	case "login":
		h.prom.LoginsTotal.WithLabelValues(outcome).Inc()
	case "register":
		h.prom.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt plus the insert; give it room
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	u, err := h.svc.Register(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.countAuth("register", "email_taken")
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		h.countAuth("register", "error")
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.countAuth("register", "success")

	// a new row moves totalUsers and recentUsers
	if h.stats != nil {
		h.stats.Invalidate(cctx)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":    u.ID,
		"email": u.Email,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	u, err := h.svc.Login(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			// one shared message for unknown email and wrong password
			h.countAuth("login", "invalid_credentials")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.countAuth("login", "error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(u.ID, u.Email, u.Role)

	if err != nil {
		h.countAuth("login", "error")
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.countAuth("login", "success")

	ctx.JSON(http.StatusOK, gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"role":        u.Role,
		"accessToken": accessToken,
	})
}
