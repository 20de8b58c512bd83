// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredQueue is the durable queue new-account events are
// published to.  Consumers include the audit logger in this process and
// the notification service.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published after an account is created.  It
// carries enough for downstream consumers (welcome email, audit trail,
// analytics) without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
}
