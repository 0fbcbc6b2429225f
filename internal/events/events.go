package events

import (
	"context"
	"time"
)

// Event source identifier attached to every published event.
const Source = "faradaycoins"

// Event version for downstream consumers.
const Version = "1.0"

// Topics
const (
	TopicCoins       = "coins.events"
	TopicRedemptions = "redemptions.events"
	TopicUsers       = "users.events"
)

// Event types
const (
	EventCoinsGranted       = "coins.granted"
	EventCoinsDeducted      = "coins.deducted"
	EventCoinsRedeemed      = "coins.redeemed"
	EventRedemptionApproved = "redemption.approved"
	EventRedemptionRejected = "redemption.rejected"
	EventUserProvisioned    = "user.provisioned"
	EventUserDeleted        = "user.deleted"
)

// Event is the envelope for everything published to the bus
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// CoinEvent carries a balance change for a user
type CoinEvent struct {
	UserID      string `json:"user_id"`
	Amount      int    `json:"amount"`
	Balance     int    `json:"balance"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// RedemptionEvent carries a reward redemption lifecycle change
type RedemptionEvent struct {
	RedemptionID uint   `json:"redemption_id"`
	UserID       string `json:"user_id"`
	RewardID     uint   `json:"reward_id"`
	RewardName   string `json:"reward_name"`
	Cost         int    `json:"cost"`
	Status       string `json:"status"`
}

// UserEvent carries a user lifecycle change
type UserEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// EventPublisher publishes events to a topic
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// EventSubscriber delivers published events for a topic. Used by the
// live-update stream handlers.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *Event, error)
}
