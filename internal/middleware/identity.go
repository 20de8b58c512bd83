package middleware

// identity.go provides the helper handlers use to read the authenticated
// user ID injected by JWTAuth/OptionalJWT.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user ID from the request context, or
// (0, false) for guests.
func UserID(c echo.Context) (uint64, bool) {
	if v := c.Get("user_id"); v != nil {
		if id, ok := v.(uint64); ok && id != 0 {
			return id, true
		}
	}
	return 0, false
}
