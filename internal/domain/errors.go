package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("not a party to this resource")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDeliveryFailure   = errors.New("delivery failure")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")

	// ErrSessionInvalid is returned by the poll client when the server rejects the
	// bearer token itself, as opposed to rejecting the actor for a specific resource.
	ErrSessionInvalid = errors.New("session invalid")
)

var (
	ErrChallengeNotFound    = wrap(ErrNotFound, "challenge not found")
	ErrNotificationNotFound = wrap(ErrNotFound, "notification not found")
	ErrUserNotFound         = wrap(ErrNotFound, "user not found")
	ErrFriendRequestMissing = wrap(ErrNotFound, "friend request not found")
	ErrNotParticipant       = wrap(ErrUnauthorized, "user is not a participant of this challenge")
	ErrNotChallenged        = wrap(ErrUnauthorized, "only the challenged user may respond")
	ErrNotRecipient         = wrap(ErrUnauthorized, "notification belongs to another user")
	ErrScoreAlreadySet      = wrap(ErrInvalidTransition, "score already submitted")
	ErrChallengeNotInvited  = wrap(ErrInvalidTransition, "challenge is not awaiting a response")
	ErrChallengeNotPending  = wrap(ErrInvalidTransition, "challenge is not open for scores")
	ErrChallengeClosed      = wrap(ErrInvalidTransition, "challenge is already closed")
	ErrAlreadyFriends       = wrap(ErrConflict, "already friends")
	ErrFriendRequestExists  = wrap(ErrConflict, "friend request already sent")
	ErrEmailTaken           = wrap(ErrConflict, "email or username already registered")
	ErrSelfChallenge        = wrap(ErrValidation, "cannot challenge yourself")
	ErrScoreOutOfRange      = wrap(ErrValidation, "score out of range")
	ErrSelfFriendRequest    = wrap(ErrValidation, "cannot befriend yourself")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

func wrap(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}
