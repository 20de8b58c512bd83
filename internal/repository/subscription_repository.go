package repository

import (
	"context"
	"database/sql"
)

// SubscriptionRepo persists the follower graph the channel-profile
// aggregation joins against.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Subscribe records that subscriberID follows channelID.  The pair is
// unique in the schema; INSERT IGNORE makes repeat calls a no-op.
func (r *SubscriptionRepo) Subscribe(ctx context.Context, subscriberID, channelID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO subscriptions (subscriber_id, channel_id) VALUES (?,?)",
		subscriberID, channelID)
	return err
}

// Unsubscribe removes the follow edge.  Idempotent.
func (r *SubscriptionRepo) Unsubscribe(ctx context.Context, subscriberID, channelID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE subscriber_id=? AND channel_id=?",
		subscriberID, channelID)
	return err
}
