package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	UserID     uuid.UUID        `json:"user_id" db:"user_id"`
	FromUserID *uuid.UUID       `json:"from_user_id,omitempty" db:"from_user_id"`
	FromUser   *UserSummary     `json:"from_user,omitempty" db:"-"`
	Type       NotificationType `json:"type" db:"type"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	Data       json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead     bool             `json:"is_read" db:"is_read"`
	ReadAt     *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifFriendRequest      NotificationType = "friend_request"
	NotifChallengeReceived  NotificationType = "challenge_received"
	NotifChallengeAccepted  NotificationType = "challenge_accepted"
	NotifChallengeRejected  NotificationType = "challenge_rejected"
	NotifChallengeCompleted NotificationType = "challenge_completed"
)

// ChallengePayload is the data carried by every challenge_* notification.
type ChallengePayload struct {
	ChallengeID   uuid.UUID `json:"challengeId"`
	Category      string    `json:"category,omitempty"`
	Difficulty    string    `json:"difficulty,omitempty"`
	ScoreToBeat   *int      `json:"scoreToBeat,omitempty"`
	MyScore       *int      `json:"myScore,omitempty"`
	OpponentScore *int      `json:"opponentScore,omitempty"`
}

// ChallengeData decodes Data as a ChallengePayload. ok is false for other types or bad JSON.
func (n *Notification) ChallengeData() (ChallengePayload, bool) {
	var p ChallengePayload
	if len(n.Data) == 0 {
		return p, false
	}
	if err := json.Unmarshal(n.Data, &p); err != nil {
		return p, false
	}
	return p, p.ChallengeID != uuid.Nil
}

type AppendNotificationInput struct {
	Recipient uuid.UUID
	Type      NotificationType
	FromUser  *uuid.UUID
	Payload   interface{}

	// Message overrides the catalog text. MessageArgs fill the catalog text's verbs.
	Message     string
	MessageArgs []interface{}
}
