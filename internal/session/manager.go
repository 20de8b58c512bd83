package session

import (
	"context"
	"strings"

	"github.com/clipverse/clipverse/internal/model"
	"github.com/clipverse/clipverse/internal/utils"
)

// UserStore is the slice of the persistence layer the session manager
// depends on.  Absent users surface as (nil, nil), not as errors.
// SetRefreshToken is a narrow patch: it writes only the refresh-token
// column and must not re-validate unrelated fields.
type UserStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	SetRefreshToken(ctx context.Context, id uint64, token *string) error
}

// TokenCodec signs and verifies tokens.  Satisfied by *utils.TokenCodec.
type TokenCodec interface {
	SignAccess(userID uint64, username string) (utils.SignedToken, error)
	SignRefresh(userID uint64) (utils.SignedToken, error)
	VerifyRefresh(raw string) (uint64, error)
}

// TokenPair is the result of issuing a session: both tokens by value.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// Manager implements the session state machine.  It holds no session data
// itself; each call is an isolated unit of work against the store.
type Manager struct {
	users UserStore
	codec TokenCodec
}

func NewManager(users UserStore, codec TokenCodec) *Manager {
	return &Manager{users: users, codec: codec}
}

// Issue mints a fresh access/refresh pair for an existing user and
// persists the refresh token on the user record, replacing any prior
// value.  Callers must have established the user's identity first, so
// every failure here is an infrastructure fault, never a caller error.
func (m *Manager) Issue(ctx context.Context, userID uint64) (TokenPair, error) {
	u, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return TokenPair{}, Wrap(KindInternal, "token generation failed", err)
	}
	if u == nil {
		return TokenPair{}, E(KindInternal, "token generation failed")
	}
	access, err := m.codec.SignAccess(u.ID, u.Username)
	if err != nil {
		return TokenPair{}, Wrap(KindInternal, "token generation failed", err)
	}
	refresh, err := m.codec.SignRefresh(u.ID)
	if err != nil {
		return TokenPair{}, Wrap(KindInternal, "token generation failed", err)
	}
	// Last writer wins: a login elsewhere invalidates the previous slot.
	if err := m.users.SetRefreshToken(ctx, u.ID, &refresh.Token); err != nil {
		return TokenPair{}, Wrap(KindInternal, "token generation failed", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyRefresh validates a presented refresh token and rotates the
// session.  Each step is a rejection point:
//
//  1. an empty candidate is a bad request
//  2. signature/expiry must verify against the refresh secret
//  3. the embedded user must exist
//  4. the candidate must match the stored slot byte-for-byte; a
//     structurally valid but superseded or revoked token is refused —
//     this is the anti-replay check
//
// On success a new pair is issued; the old refresh token dies implicitly
// because Issue overwrites the slot.
func (m *Manager) VerifyRefresh(ctx context.Context, presented string) (*model.User, TokenPair, error) {
	if presented == "" {
		return nil, TokenPair{}, E(KindBadRequest, "refresh token required")
	}
	userID, err := m.codec.VerifyRefresh(presented)
	if err != nil {
		return nil, TokenPair{}, E(KindUnauthenticated, "invalid or expired refresh token")
	}
	u, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return nil, TokenPair{}, Wrap(KindInternal, "refresh lookup failed", err)
	}
	if u == nil {
		return nil, TokenPair{}, E(KindUnauthenticated, "invalid refresh token")
	}
	if u.RefreshToken == nil || *u.RefreshToken != presented {
		return nil, TokenPair{}, E(KindUnauthenticated, "refresh token is expired or used")
	}
	pair, err := m.Issue(ctx, u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Revoke clears the stored refresh token for a user, immediately
// invalidating any outstanding refresh token even if it has not expired.
// Revoking a user with no active token is a no-op.
func (m *Manager) Revoke(ctx context.Context, userID uint64) error {
	if err := m.users.SetRefreshToken(ctx, userID, nil); err != nil {
		return Wrap(KindInternal, "logout failed", err)
	}
	return nil
}

// Login authenticates a username-or-email identifier against a plaintext
// password and returns the matching user.  Lookup misses and password
// mismatches are deliberately indistinguishable to the caller so that
// login responses cannot be used to enumerate accounts.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, E(KindBadRequest, "identifier and password required")
	}
	u, err := m.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, Wrap(KindInternal, "login lookup failed", err)
	}
	if u == nil {
		return nil, E(KindUnauthenticated, "invalid credentials")
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, E(KindUnauthenticated, "invalid credentials")
	}
	return u, nil
}
