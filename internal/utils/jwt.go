package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// SignedToken bundles a serialized JWT with its expiration time.  The Exp
// field is returned alongside the token so callers can report it to
// clients without re-parsing the JWT.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned when a token fails signature or expiry
// verification, or when its claims are not in the expected shape.
var ErrInvalidToken = errors.New("invalid token")

// TokenCodec signs and verifies the two token types used by the session
// manager.  Access and refresh tokens are both HS256 JWTs but use separate
// secrets and lifetimes.  The codec holds no per-user state.
type TokenCodec struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewTokenCodec builds a codec from the configured secrets and TTLs
// expressed in the units the environment uses (minutes for access tokens,
// days for refresh tokens).
func NewTokenCodec(accessSecret, refreshSecret string, accessTTLMin, refreshTTLDays int) *TokenCodec {
	return &TokenCodec{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     time.Duration(accessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// SignAccess builds and signs a short-lived HS256 JWT for a user.  The
// claims carry the subject (user ID), the username for convenience at the
// HTTP layer, the expiration and issued-at timestamps.  Access tokens are
// never persisted; they are verified purely by signature and expiry.
func (tc *TokenCodec) SignAccess(userID uint64, username string) (SignedToken, error) {
	exp := time.Now().UTC().Add(tc.AccessTTL)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(userID, 10),
		"username": username,
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.AccessSecret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// SignRefresh builds and signs a long-lived HS256 JWT carrying the user
// identity and a unique jti.  The jti guarantees two tokens minted in the
// same second still differ, so rotation always invalidates the prior
// slot.  The caller persists the raw string on the user record; a refresh
// token is only honored while it matches that stored slot.
func (tc *TokenCodec) SignRefresh(userID uint64) (SignedToken, error) {
	exp := time.Now().UTC().Add(tc.RefreshTTL)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"jti": uuid.NewString(),
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.RefreshSecret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyRefresh checks the signature and expiry of a refresh token and
// returns the user ID embedded in its subject claim.  This is only the
// cryptographic half of refresh validation; the session manager still
// compares the raw token against the slot stored on the user record.
func (tc *TokenCodec) VerifyRefresh(raw string) (uint64, error) {
	return tc.verify(raw, tc.RefreshSecret)
}

// VerifyAccess checks the signature and expiry of an access token and
// returns the embedded user ID.
func (tc *TokenCodec) VerifyAccess(raw string) (uint64, error) {
	return tc.verify(raw, tc.AccessSecret)
}

func (tc *TokenCodec) verify(raw, secret string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || id == 0 {
			return 0, ErrInvalidToken
		}
		return id, nil
	case float64:
		// Numeric subjects appear when tokens were minted by older builds.
		if sub <= 0 {
			return 0, ErrInvalidToken
		}
		return uint64(sub), nil
	}
	return 0, ErrInvalidToken
}
