// Package events defines the payloads written to the outbox and relayed to Kafka.
package events

import "time"

// Event types.
const (
	TypeActivityCreated = "activity.created"
	TypeActivityUpdated = "activity.updated"
	TypeActivityDeleted = "activity.deleted"
	TypeUserDeleted     = "user.deleted"
)

// ActivityTopic receives every activity lifecycle event.
const ActivityTopic = "jogging.activities.v1"

// UserTopic receives account lifecycle events.
const UserTopic = "jogging.users.v1"

// ActivityRecorded is emitted when an activity is created or changed.
type ActivityRecorded struct {
	ActivityID string    `json:"activity_id"`
	OwnerID    string    `json:"owner_id"`
	Date       string    `json:"date"`
	Distance   float64   `json:"distance"`
	Weather    *string   `json:"weather"`
	OccurredAt time.Time `json:"occurred_at"`
	Version    string    `json:"version"`
}

// ActivityDeleted is emitted when an activity is removed.
type ActivityDeleted struct {
	ActivityID string    `json:"activity_id"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserDeleted is emitted when an account and its activities are removed.
type UserDeleted struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PayloadVersion tags ActivityRecorded payloads.
const PayloadVersion = "v1"
