package poller

import (
	"github.com/google/uuid"

	"quizduel/internal/domain"
)

type EffectKind string

const (
	ShowChallengeInvite    EffectKind = "show_challenge_invite"
	ShowFriendRequest      EffectKind = "show_friend_request"
	ShowChallengeAccepted  EffectKind = "show_challenge_accepted"
	ShowChallengeRejected  EffectKind = "show_challenge_rejected"
	ShowChallengeCompleted EffectKind = "show_challenge_completed"
)

var effectKinds = map[domain.NotificationType]EffectKind{
	domain.NotifChallengeReceived:  ShowChallengeInvite,
	domain.NotifFriendRequest:      ShowFriendRequest,
	domain.NotifChallengeAccepted:  ShowChallengeAccepted,
	domain.NotifChallengeRejected:  ShowChallengeRejected,
	domain.NotifChallengeCompleted: ShowChallengeCompleted,
}

// Effect is one UI action derived from a newly observed notification.
type Effect struct {
	Kind         EffectKind
	Notification domain.Notification
	// Challenge is set for challenge_* notifications with a readable payload.
	Challenge *domain.ChallengePayload
}

// FromUsername is the actor's display name, or "someone" when the server sent no summary.
func (e Effect) FromUsername() string {
	if e.Notification.FromUser != nil && e.Notification.FromUser.Username != "" {
		return e.Notification.FromUser.Username
	}
	return "someone"
}

// Cursor is the state one polling context carries between ticks.
type Cursor struct {
	Primed bool
	Count  int
	Seen   map[uuid.UUID]struct{}
}

func (c Cursor) hasSeen(id uuid.UUID) bool {
	_, ok := c.Seen[id]
	return ok
}

// Forget drops id from the cursor after the user dismissed it locally.
func (c Cursor) Forget(id uuid.UUID) Cursor {
	if !c.hasSeen(id) {
		return c
	}
	seen := make(map[uuid.UUID]struct{}, len(c.Seen))
	for k := range c.Seen {
		if k != id {
			seen[k] = struct{}{}
		}
	}
	next := Cursor{Primed: c.Primed, Count: c.Count - 1, Seen: seen}
	if next.Count < 0 {
		next.Count = 0
	}
	return next
}

// Reconcile diffs a newest-first inbox against the cursor. The first call only primes the
// cursor. Otherwise every unseen notification yields one effect in inbox order, whether or
// not other items were dismissed in the meantime. A count-only cursor cannot tell new items
// apart once the inbox shrank, so it rebases without effects.
func Reconcile(cursor Cursor, inbox []domain.Notification) ([]Effect, Cursor) {
	next := Cursor{Primed: true, Count: len(inbox), Seen: make(map[uuid.UUID]struct{}, len(inbox))}
	for _, n := range inbox {
		next.Seen[n.ID] = struct{}{}
	}

	if !cursor.Primed {
		return nil, next
	}

	candidates := inbox
	if cursor.Seen == nil {
		if len(inbox) < cursor.Count {
			return nil, next
		}
		// Count-only cursor: the new items are the leading ones.
		candidates = inbox[:len(inbox)-cursor.Count]
	}

	var effects []Effect
	for _, n := range candidates {
		if cursor.hasSeen(n.ID) {
			continue
		}
		kind, ok := effectKinds[n.Type]
		if !ok {
			continue
		}
		effect := Effect{Kind: kind, Notification: n}
		if payload, ok := n.ChallengeData(); ok {
			effect.Challenge = &payload
		}
		effects = append(effects, effect)
	}
	return effects, next
}
