package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPointsEarned       EventType = "points_earned"
	EventRewardRedeemed     EventType = "reward_redeemed"
	EventPointsConverted    EventType = "points_converted"
	EventChallengeCompleted EventType = "challenge_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       any       `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, userID, transactionID string, payload any) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
}

// PointsEarnedPayload payload.
type PointsEarnedPayload struct {
	WasteType string `json:"waste_type"`
	Points    int    `json:"points"`
	Balance   int    `json:"balance"`
}

// RewardRedeemedPayload payload.
type RewardRedeemedPayload struct {
	RewardID   int    `json:"reward_id"`
	RewardName string `json:"reward_name"`
	Points     int    `json:"points"`
	Balance    int    `json:"balance"`
}

// PointsConvertedPayload payload.
type PointsConvertedPayload struct {
	Points     int    `json:"points"`
	CashAmount string `json:"cash_amount"`
	Balance    int    `json:"balance"`
}

// ChallengeCompletedPayload payload.
type ChallengeCompletedPayload struct {
	Target      int `json:"target"`
	BonusPoints int `json:"bonus_points"`
}
