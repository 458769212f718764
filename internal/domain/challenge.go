package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Challenge struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ChallengerID    uuid.UUID       `json:"challenger" db:"challenger_id"`
	ChallengedID    uuid.UUID       `json:"challenged" db:"challenged_id"`
	Category        string          `json:"category" db:"category"`
	Difficulty      string          `json:"difficulty" db:"difficulty"`
	ChallengerScore *int            `json:"challengerScore" db:"challenger_score"`
	ChallengedScore *int            `json:"challengedScore" db:"challenged_score"`
	Status          ChallengeStatus `json:"status" db:"status"`
	WinnerID        *uuid.UUID      `json:"winner" db:"winner_id"`
	Questions       QuestionSet     `json:"questions" db:"questions"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
}

type ChallengeStatus string

const (
	ChallengeInvited   ChallengeStatus = "invited"
	ChallengePending   ChallengeStatus = "pending"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeDeclined  ChallengeStatus = "declined"
)

func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeCompleted || s == ChallengeDeclined
}

func (c *Challenge) IsParticipant(userID uuid.UUID) bool {
	return c.ChallengerID == userID || c.ChallengedID == userID
}

// Opponent returns the other participant. The caller must be a participant.
func (c *Challenge) Opponent(userID uuid.UUID) uuid.UUID {
	if c.ChallengerID == userID {
		return c.ChallengedID
	}
	return c.ChallengerID
}

// ScoreOf returns the score slot owned by userID.
func (c *Challenge) ScoreOf(userID uuid.UUID) *int {
	if c.ChallengerID == userID {
		return c.ChallengerScore
	}
	return c.ChallengedScore
}

func (c *Challenge) BothScored() bool {
	return c.ChallengerScore != nil && c.ChallengedScore != nil
}

// StatusView is the payload of the status poll endpoint.
func (c *Challenge) StatusView() ChallengeStatusView {
	questions := c.Questions
	if questions == nil {
		questions = QuestionSet{}
	}
	return ChallengeStatusView{
		ID:              c.ID,
		Status:          c.Status,
		ChallengerID:    c.ChallengerID,
		ChallengedID:    c.ChallengedID,
		ChallengerScore: c.ChallengerScore,
		ChallengedScore: c.ChallengedScore,
		WinnerID:        c.WinnerID,
		Questions:       questions,
	}
}

type ChallengeStatusView struct {
	ID              uuid.UUID       `json:"id"`
	Status          ChallengeStatus `json:"status"`
	ChallengerID    uuid.UUID       `json:"challenger"`
	ChallengedID    uuid.UUID       `json:"challenged"`
	ChallengerScore *int            `json:"challengerScore"`
	ChallengedScore *int            `json:"challengedScore"`
	WinnerID        *uuid.UUID      `json:"winner"`
	Questions       QuestionSet     `json:"questions"`
}

func (v ChallengeStatusView) BothScored() bool {
	return v.ChallengerScore != nil && v.ChallengedScore != nil
}

type Question struct {
	Question         string   `json:"question" validate:"required"`
	CorrectAnswer    string   `json:"correct_answer" validate:"required"`
	IncorrectAnswers []string `json:"incorrect_answers" validate:"required,min=1"`
	Answers          []string `json:"answers,omitempty"`
}

// QuestionSet is stored as a JSONB array on the challenge row.
type QuestionSet []Question

func (q QuestionSet) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

func (q *QuestionSet) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*q = QuestionSet{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for QuestionSet")
	}
	return json.Unmarshal(data, q)
}

type CreateChallengeInput struct {
	ChallengedID uuid.UUID `json:"challengedId" validate:"required"`
	Category     string    `json:"category" validate:"required,max=100"`
	Difficulty   string    `json:"difficulty" validate:"required,oneof=easy medium hard any"`
	Score        *int      `json:"score,omitempty" validate:"omitempty,min=0"`
}

type ChallengeActionInput struct {
	ChallengeID uuid.UUID `json:"challengeId" validate:"required"`
}

type CompleteChallengeInput struct {
	ChallengeID uuid.UUID `json:"challengeId" validate:"required"`
	Score       *int      `json:"score" validate:"required,min=0"`
}

type SaveQuestionsInput struct {
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}
