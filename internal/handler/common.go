package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clipverse/clipverse/internal/model"
	"github.com/clipverse/clipverse/internal/session"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// userPart is the safe projection of a user returned to callers: no
// password hash, no refresh token.
type userPart struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Avatar    string    `json:"avatar_url,omitempty"`
	Cover     string    `json:"cover_image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserPart(u *model.User) userPart {
	return userPart{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Avatar:    u.AvatarURL,
		Cover:     u.CoverImageURL,
		CreatedAt: u.CreatedAt,
	}
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toAuthResp(u *model.User, pair session.TokenPair) authResp {
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: pair.Access.Token, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.Refresh.Token, Expires: pair.Refresh.Exp},
	}
}

// respondError renders a classified rejection.  The session core knows
// nothing about HTTP; this is the single place where error kinds become
// status codes.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch session.KindOf(err) {
	case session.KindBadRequest:
		status, msg = http.StatusBadRequest, err.Error()
	case session.KindUnauthenticated:
		status, msg = http.StatusUnauthorized, err.Error()
	case session.KindConflict:
		status, msg = http.StatusConflict, err.Error()
	case session.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	}
	return c.JSON(status, echo.Map{"error": msg})
}
