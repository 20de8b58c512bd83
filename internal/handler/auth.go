package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clipverse/clipverse/internal/config"
	"github.com/clipverse/clipverse/internal/middleware"
	"github.com/clipverse/clipverse/internal/queue"
	"github.com/clipverse/clipverse/internal/repository"
	queue_publisher "github.com/clipverse/clipverse/internal/service"
	"github.com/clipverse/clipverse/internal/session"
)

// AuthHandler bundles dependencies for the account-lifecycle endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *session.Manager
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *session.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	// Identifier takes a username or an email; the older username/email
	// fields are still accepted.
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and returns the safe projection.  It never
// issues tokens: registration and login are distinct steps.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Username == "" || req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name/username/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.FullName, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch err {
		case repository.ErrUsernameExists, repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.FindByID(ctx, uid)
	if err != nil || u == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// Fire-and-forget: a broker outage must not fail registration.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			RegisteredAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(u)})
}

// Login verifies credentials and starts a session.  Tokens are returned
// in the body and mirrored into httpOnly cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		identifier = req.Email
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	pair, err := h.Sessions.Issue(ctx, u.ID)
	if err != nil {
		return respondError(c, err)
	}
	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// Refresh rotates the token pair.  The candidate refresh token is taken
// from the cookie when present, with the JSON body as fallback.
func (h *AuthHandler) Refresh(c echo.Context) error {
	presented := ""
	if ck, err := c.Cookie("refresh_token"); err == nil && ck.Value != "" {
		presented = ck.Value
	} else {
		var req refreshReq
		_ = c.Bind(&req)
		presented = strings.TrimSpace(req.RefreshToken)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Sessions.VerifyRefresh(ctx, presented)
	if err != nil {
		return respondError(c, err)
	}
	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, toAuthResp(u, pair))
}

// Logout revokes the authenticated user's refresh slot and clears the
// auth cookies.  Requires a valid access token.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, uid); err != nil {
		return respondError(c, err)
	}
	h.clearAuthCookies(c)
	return c.NoContent(http.StatusNoContent)
}

// ----- cookies -----

func (h *AuthHandler) setAuthCookies(c echo.Context, pair session.TokenPair) {
	c.SetCookie(authCookie("access_token", pair.Access.Token, pair.Access.Exp, h.Cfg.CookieSecure))
	c.SetCookie(authCookie("refresh_token", pair.Refresh.Token, pair.Refresh.Exp, h.Cfg.CookieSecure))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	expired := time.Now().UTC().Add(-time.Hour)
	c.SetCookie(authCookie("access_token", "", expired, h.Cfg.CookieSecure))
	c.SetCookie(authCookie("refresh_token", "", expired, h.Cfg.CookieSecure))
}

func authCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
