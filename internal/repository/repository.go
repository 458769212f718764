package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Challenge    ChallengeRepository
	Notification NotificationRepository
	Friend       FriendRepository
	Score        ScoreRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		Challenge:    NewChallengeRepository(db),
		Notification: NewNotificationRepository(db),
		Friend:       NewFriendRepository(db),
		Score:        NewScoreRepository(db),
	}
}
