package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/accounthub/internal/domain/user"
)

type UserReader interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type UsersHandler struct {
	store UserReader
}

func NewUsersHandler(store UserReader) *UsersHandler {
	return &UsersHandler{store: store}
}

func parseUserID(ctx *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(param), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "invalid_id", "user id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	id, ok := parseUserID(ctx, "id")

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	u, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u.Public())
}
