package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipverse/clipverse/internal/model"
	"github.com/clipverse/clipverse/internal/utils"
)

// fakeUserStore is an in-memory UserStore mirroring the repository
// contract: absent users are (nil, nil), SetRefreshToken touches only the
// slot.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint64]*model.User
	setErr error
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uint64]*model.User)}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *fakeUserStore) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identifier = strings.ToLower(identifier)
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, id uint64, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	if u, ok := s.users[id]; ok {
		if token == nil {
			u.RefreshToken = nil
		} else {
			cp := *token
			u.RefreshToken = &cp
		}
	}
	return nil
}

func (s *fakeUserStore) storedToken(id uint64) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].RefreshToken
}

func testCodec() *utils.TokenCodec {
	return utils.NewTokenCodec("access-secret", "refresh-secret", 15, 7)
}

func testUser(t *testing.T) *model.User {
	t.Helper()
	hash, err := utils.HashPassword("p1", 4)
	require.NoError(t, err)
	return &model.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@x.com",
		FullName:     "Alice",
		PasswordHash: hash,
	}
}

func TestLoginIssuesVerifiableAccessToken(t *testing.T) {
	codec := testCodec()
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, codec)

	u, err := m.Login(context.Background(), "alice", "p1")
	require.NoError(t, err)
	pair, err := m.Issue(context.Background(), u.ID)
	require.NoError(t, err)

	uid, err := codec.VerifyAccess(pair.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
	assert.NotEqual(t, pair.Access.Token, pair.Refresh.Token)
	assert.True(t, pair.Refresh.Exp.After(pair.Access.Exp), "refresh must outlive access")
}

func TestLoginByEmail(t *testing.T) {
	m := NewManager(newFakeUserStore(testUser(t)), testCodec())
	u, err := m.Login(context.Background(), "ALICE@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
}

func TestLoginRejections(t *testing.T) {
	m := NewManager(newFakeUserStore(testUser(t)), testCodec())

	_, err := m.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))

	_, err = m.Login(context.Background(), "nobody", "p1")
	require.Error(t, err)
	// Unknown users and wrong passwords must be indistinguishable.
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.EqualError(t, err, "invalid credentials")

	_, err = m.Login(context.Background(), "", "p1")
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestIssueOverwritesStoredSlot(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, testCodec())

	first, err := m.Issue(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, store.storedToken(1))
	assert.Equal(t, first.Refresh.Token, *store.storedToken(1))

	second, err := m.Issue(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, second.Refresh.Token, *store.storedToken(1))
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)
}

func TestIssueFailuresAreInternal(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	store.setErr = errors.New("disk on fire")
	m := NewManager(store, testCodec())

	_, err := m.Issue(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))

	// Unknown user is a precondition violation, still an internal fault.
	_, err = m.Issue(context.Background(), 42)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestVerifyRefreshRotates(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, testCodec())

	pair, err := m.Issue(context.Background(), 1)
	require.NoError(t, err)

	u, next, err := m.VerifyRefresh(context.Background(), pair.Refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.NotEqual(t, pair.Refresh.Token, next.Refresh.Token)
	assert.Equal(t, next.Refresh.Token, *store.storedToken(1))

	// Reusing the now-stale token must fail even though its signature
	// and expiry are still valid in isolation.
	_, _, err = m.VerifyRefresh(context.Background(), pair.Refresh.Token)
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.EqualError(t, err, "refresh token is expired or used")
}

func TestVerifyRefreshSupersededByLaterIssue(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, testCodec())

	old, err := m.Issue(context.Background(), 1)
	require.NoError(t, err)
	_, err = m.Issue(context.Background(), 1) // login elsewhere
	require.NoError(t, err)

	_, _, err = m.VerifyRefresh(context.Background(), old.Refresh.Token)
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestVerifyRefreshRejections(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, testCodec())

	_, _, err := m.VerifyRefresh(context.Background(), "")
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, _, err = m.VerifyRefresh(context.Background(), "not-a-jwt")
	assert.Equal(t, KindUnauthenticated, KindOf(err))

	// Structurally valid token for a user the store has never seen.
	ghost, err := testCodec().SignRefresh(99)
	require.NoError(t, err)
	_, _, err = m.VerifyRefresh(context.Background(), ghost.Token)
	assert.Equal(t, KindUnauthenticated, KindOf(err))

	// Token signed with the wrong secret.
	other := utils.NewTokenCodec("access-secret", "other-secret", 15, 7)
	forged, err := other.SignRefresh(1)
	require.NoError(t, err)
	_, _, err = m.VerifyRefresh(context.Background(), forged.Token)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestVerifyRefreshExpiredToken(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	expired := &utils.TokenCodec{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     -2 * time.Minute, // already in the past
		RefreshTTL:    -time.Minute,
	}
	tok, err := expired.SignRefresh(1)
	require.NoError(t, err)
	_ = store.SetRefreshToken(context.Background(), 1, &tok.Token)

	m := NewManager(store, testCodec())
	_, _, err = m.VerifyRefresh(context.Background(), tok.Token)
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestRevokeInvalidatesOutstandingToken(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, testCodec())

	pair, err := m.Issue(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(context.Background(), 1))
	assert.Nil(t, store.storedToken(1))

	_, _, err = m.VerifyRefresh(context.Background(), pair.Refresh.Token)
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestRevokeIsIdempotent(t *testing.T) {
	store := newFakeUserStore(testUser(t))
	m := NewManager(store, testCodec())

	require.NoError(t, m.Revoke(context.Background(), 1))
	require.NoError(t, m.Revoke(context.Background(), 1))
}
