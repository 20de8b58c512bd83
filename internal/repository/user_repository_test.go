package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func userRows(refresh interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "full_name", "avatar_url", "cover_image_url",
		"password_hash", "refresh_token", "created_at", "updated_at",
	}).AddRow(1, "alice", "alice@x.com", "Alice", nil, nil, "$2a$hash", refresh, now, now)
}

func TestCreateNormalizesAndReturnsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@x.com", "Alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), "  Alice ", " ALICE@X.com ", "Alice", "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMapsDuplicateKeys(t *testing.T) {
	cases := []struct {
		name    string
		driver  string
		wantErr error
	}{
		{"email", "Error 1062 (23000): Duplicate entry 'alice@x.com' for key 'users.uq_users_email'", ErrEmailExists},
		{"username", "Error 1062 (23000): Duplicate entry 'alice' for key 'users.uq_users_username'", ErrUsernameExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(errors.New(tc.driver))

			_, err := repo.Create(context.Background(), "alice", "alice@x.com", "Alice", "p1", 4)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestFindByIDAbsentIsNilNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindByIdentifierScansUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE username=? OR email=?")).
		WithArgs("alice", "alice").
		WillReturnRows(userRows("stored-token"))

	u, err := repo.FindByIdentifier(context.Background(), " Alice ")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	require.NotNil(t, u.RefreshToken)
	assert.Equal(t, "stored-token", *u.RefreshToken)
}

func TestSetRefreshTokenWritesOnlyTheSlot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	tok := "new-token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token=? WHERE id=?")).
		WithArgs(sql.NullString{String: tok, Valid: true}, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetRefreshToken(context.Background(), 1, &tok))

	// nil clears the slot with a SQL NULL.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token=? WHERE id=?")).
		WithArgs(sql.NullString{}, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetRefreshToken(context.Background(), 1, nil))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileBuildsPartialSet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET full_name=? WHERE id=?")).
		WithArgs("New Name", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateProfile(context.Background(), 1, "New Name", ""))

	// No fields set is a no-op without touching the database.
	require.NoError(t, repo.UpdateProfile(context.Background(), 1, "", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannelProfileAggregation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "username", "full_name", "avatar_url", "cover_image_url", "created_at",
		"subscriber_count", "subscribed_count", "is_subscribed",
	}).AddRow(1, "alice", "Alice", "http://cdn/a.png", nil, now, 12, 3, true)

	mock.ExpectQuery("SELECT u.id, u.username").
		WithArgs(uint64(7), "alice").
		WillReturnRows(rows)

	p, err := repo.ChannelProfile(context.Background(), "Alice", 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, uint64(12), p.SubscriberCount)
	assert.Equal(t, uint64(3), p.SubscribedCount)
	assert.True(t, p.IsSubscribed)
	assert.Equal(t, "http://cdn/a.png", p.AvatarURL)
	assert.Equal(t, "", p.CoverImageURL)
}

func TestChannelProfileAbsentIsNilNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT u.id, u.username").
		WithArgs(uint64(0), "ghost").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.ChannelProfile(context.Background(), "ghost", 0)
	require.NoError(t, err)
	assert.Nil(t, p)
}
