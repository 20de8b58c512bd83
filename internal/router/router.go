// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/clipverse/clipverse/internal/handler"
	"github.com/clipverse/clipverse/internal/middleware"
	"github.com/clipverse/clipverse/internal/utils"
)

// RegisterRoutes registers routes that need no dependencies.  Currently
// only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account-lifecycle endpoints.  The limiter is
// applied to the whole group: credential endpoints are the ones worth
// protecting from stuffing attacks.  Logout alone requires a valid
// access token since it revokes by authenticated identity.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, codec *utils.TokenCodec, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(codec))
}

// RegisterUsers registers the protected profile endpoints and the public
// channel page.  The channel page takes OptionalJWT so the is_subscribed
// flag is enriched for signed-in viewers, plus the response cache.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, codec *utils.TokenCodec, cache echo.MiddlewareFunc) {
	me := e.Group("/v1/users/me")
	me.Use(middleware.JWTAuth(codec))
	me.GET("", u.Me)
	me.PATCH("", u.UpdateProfile)
	me.POST("/password", u.ChangePassword)
	me.PATCH("/avatar", u.UpdateAvatar)
	me.PATCH("/cover", u.UpdateCover)

	mws := []echo.MiddlewareFunc{middleware.OptionalJWT(codec)}
	if cache != nil {
		mws = append(mws, cache)
	}
	e.GET("/v1/channels/:username", u.ChannelProfile, mws...)
}

// RegisterSubscriptions registers the follow/unfollow endpoints.
func RegisterSubscriptions(e *echo.Echo, s *handler.SubscriptionHandler, codec *utils.TokenCodec) {
	g := e.Group("/v1/channels/:username/subscribe")
	g.Use(middleware.JWTAuth(codec))
	g.POST("", s.Subscribe)
	g.DELETE("", s.Unsubscribe)
}
