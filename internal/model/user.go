package model

import "time"

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column.  The json tags are omitted here
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// RefreshToken is the single-slot session field: at most one refresh
// token is valid per user at any time.  Logging in or refreshing
// overwrites the slot, logging out clears it.  The raw token is stored
// so that a presented token can be compared byte-for-byte on rotation.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Username      – unique handle, lowercase.
//  Email         – unique email address, lowercase.
//  FullName      – display name.
//  AvatarURL     – public URL of the avatar image (may be empty).
//  CoverImageURL – public URL of the channel cover image (may be empty).
//  PasswordHash  – bcrypt hashed password.
//  RefreshToken  – currently valid refresh token, nil when logged out.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64     // users.id
	Username      string     // users.username
	Email         string     // users.email
	FullName      string     // users.full_name
	AvatarURL     string     // users.avatar_url
	CoverImageURL string     // users.cover_image_url
	PasswordHash  string     // users.password_hash
	RefreshToken  *string    // users.refresh_token (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}

// Subscription models a row in the `subscriptions` table.  A subscriber
// follows a channel (both are users).  The pair is unique.
//
// Fields:
//  ID           – primary key identifier.
//  SubscriberID – the following user.
//  ChannelID    – the followed user.
//  CreatedAt    – timestamp of creation.
type Subscription struct {
	ID           uint64    // subscriptions.id
	SubscriberID uint64    // subscriptions.subscriber_id
	ChannelID    uint64    // subscriptions.channel_id
	CreatedAt    time.Time // subscriptions.created_at
}

// ChannelProfile is the aggregation result for a channel page: the public
// user fields joined with subscription counts and, when a viewer is
// authenticated, whether that viewer follows the channel.
type ChannelProfile struct {
	ID              uint64
	Username        string
	FullName        string
	AvatarURL       string
	CoverImageURL   string
	SubscriberCount uint64 // users subscribed to this channel
	SubscribedCount uint64 // channels this user subscribes to
	IsSubscribed    bool   // true when the viewer follows the channel
	CreatedAt       time.Time
}
