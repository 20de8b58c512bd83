package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clipverse/clipverse/internal/config"
	"github.com/clipverse/clipverse/internal/media"
	"github.com/clipverse/clipverse/internal/middleware"
	"github.com/clipverse/clipverse/internal/repository"
	"github.com/clipverse/clipverse/internal/utils"
)

// UserHandler serves profile endpoints: the current-user view, profile
// and password updates, image uploads and the public channel page.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Media *media.Uploader // nil when media storage is disabled
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, m *media.Uploader) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Media: m}
}

type updateProfileReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Me returns the authenticated user's safe projection.
func (h *UserHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.FindByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// UpdateProfile changes display name and/or email.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" && req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, uid, req.FullName, req.Email); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.FindByID(ctx, uid)
	if err != nil || u == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// ChangePassword verifies the old password before storing a new hash.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "old_password/new_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.FindByID(ctx, uid)
	if err != nil || u == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateAvatar uploads a new avatar image and stores its URL.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", "avatars", h.Users.UpdateAvatarURL)
}

// UpdateCover uploads a new channel cover image and stores its URL.
func (h *UserHandler) UpdateCover(c echo.Context) error {
	return h.updateImage(c, "cover", "covers", h.Users.UpdateCoverImageURL)
}

func (h *UserHandler) updateImage(c echo.Context, field, folder string,
	save func(context.Context, uint64, string) error) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Media == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "media storage disabled"})
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": field + " file required"})
	}
	if fh.Size > h.Cfg.MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file must be an image"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	defer func(f multipart.File) { _ = f.Close() }(src)

	ctx := c.Request().Context()
	url, err := h.Media.Upload(ctx, folder, fh.Filename, contentType, src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := save(dbCtx, uid, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.FindByID(dbCtx, uid)
	if err != nil || u == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// ChannelProfile serves the public channel page: user fields joined with
// subscription counts and the viewer's is_subscribed flag.  Works for
// guests; the flag is enriched when a valid bearer token is presented.
func (h *UserHandler) ChannelProfile(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}
	viewerID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "channel not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"channel": echo.Map{
			"id":               p.ID,
			"username":         p.Username,
			"full_name":        p.FullName,
			"avatar_url":       p.AvatarURL,
			"cover_image_url":  p.CoverImageURL,
			"subscriber_count": p.SubscriberCount,
			"subscribed_count": p.SubscribedCount,
			"is_subscribed":    p.IsSubscribed,
			"created_at":       p.CreatedAt,
		},
	})
}
