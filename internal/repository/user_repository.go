package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/clipverse/clipverse/internal/model"
	"github.com/clipverse/clipverse/internal/utils"
)

const userColumns = "id,username,email,full_name,avatar_url,cover_image_url,password_hash,refresh_token,created_at,updated_at"

// UserRepo persists account records.  Lookup misses are reported as
// (nil, nil) so callers can distinguish "absent" from "store broken".
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  Username and email are
// normalized to lowercase before insert.  Unique-key collisions map to
// the ErrUsernameExists / ErrEmailExists sentinels.
func (r *UserRepo) Create(ctx context.Context, username, email, fullName, password string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash) VALUES (?,?,?,?)",
		username, email, fullName, hash)
	if err != nil {
		if dup := dupKeyError(err); dup != nil {
			return 0, dup
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByIdentifier fetches a user whose username or email equals the
// normalized identifier.
func (r *UserRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1",
		identifier, identifier)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// SetRefreshToken writes only the refresh-token column for a user.  A nil
// token clears the slot (logout).  This is deliberately a narrow patch:
// token issuance must never trip over validation of unrelated fields.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uint64, token *string) error {
	var v sql.NullString
	if token != nil {
		v = sql.NullString{String: *token, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", v, id)
	return err
}

// UpdateProfile changes the display name and email.  Either argument may
// be empty to leave the field untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName, email string) error {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if fullName != "" {
		sets = append(sets, "full_name=?")
		args = append(args, fullName)
	}
	if email != "" {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(email)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if dup := dupKeyError(err); dup != nil {
			return dup
		}
	}
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	return err
}

// UpdateAvatarURL stores the public URL of a freshly uploaded avatar.
func (r *UserRepo) UpdateAvatarURL(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=? WHERE id=?", url, id)
	return err
}

// UpdateCoverImageURL stores the public URL of a freshly uploaded cover.
func (r *UserRepo) UpdateCoverImageURL(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET cover_image_url=? WHERE id=?", url, id)
	return err
}

// ChannelProfile aggregates a channel page in one round trip: public user
// fields plus follower/following counts and, for an authenticated viewer,
// whether the viewer subscribes to the channel.  viewerID zero means a
// guest and always yields IsSubscribed=false.
func (r *UserRepo) ChannelProfile(ctx context.Context, username string, viewerID uint64) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var p model.ChannelProfile
	var avatar, cover sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_image_url, u.created_at,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscriber_count,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_count,
		       EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS is_subscribed
		FROM users u WHERE u.username = ? LIMIT 1`,
		viewerID, username).
		Scan(&p.ID, &p.Username, &p.FullName, &avatar, &cover, &p.CreatedAt,
			&p.SubscriberCount, &p.SubscribedCount, &p.IsSubscribed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.AvatarURL = avatar.String
	p.CoverImageURL = cover.String
	return &p, nil
}

// scanUser maps one row onto a model.User, folding sql.ErrNoRows into a
// nil result.
func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var avatar, cover, refresh sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName,
		&avatar, &cover, &u.PasswordHash, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.AvatarURL = avatar.String
	u.CoverImageURL = cover.String
	if refresh.Valid {
		u.RefreshToken = &refresh.String
	}
	return &u, nil
}

// dupKeyError maps a MySQL duplicate-key failure (error 1062) to the
// sentinel for whichever unique index was violated, or nil when the error
// is something else.
func dupKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return nil
	}
	if strings.Contains(msg, "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}
