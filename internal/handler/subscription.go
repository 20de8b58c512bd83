package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clipverse/clipverse/internal/middleware"
	"github.com/clipverse/clipverse/internal/repository"
)

// SubscriptionHandler manages the follower graph behind channel pages.
type SubscriptionHandler struct {
	Users *repository.UserRepo
	Subs  *repository.SubscriptionRepo
}

func NewSubscriptionHandler(u *repository.UserRepo, s *repository.SubscriptionRepo) *SubscriptionHandler {
	return &SubscriptionHandler{Users: u, Subs: s}
}

// Subscribe makes the authenticated user follow the channel named in the
// path.  Repeat calls are a no-op.
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	return h.toggle(c, h.Subs.Subscribe)
}

// Unsubscribe removes the follow edge.  Idempotent.
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	return h.toggle(c, h.Subs.Unsubscribe)
}

func (h *SubscriptionHandler) toggle(c echo.Context,
	op func(ctx context.Context, subscriberID, channelID uint64) error) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	channel, err := h.Users.FindByIdentifier(ctx, username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if channel == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "channel not found"})
	}
	if channel.ID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot subscribe to yourself"})
	}
	if err := op(ctx, uid, channel.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
