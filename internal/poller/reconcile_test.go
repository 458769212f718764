package poller

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizduel/internal/domain"
)

func notif(t domain.NotificationType) domain.Notification {
	return domain.Notification{ID: uuid.New(), Type: t}
}

func challengeNotif(t *testing.T, typ domain.NotificationType, challengeID uuid.UUID) domain.Notification {
	t.Helper()
	data, err := json.Marshal(domain.ChallengePayload{ChallengeID: challengeID, Category: "Science"})
	require.NoError(t, err)
	n := notif(typ)
	n.Data = data
	n.FromUser = &domain.UserSummary{Username: "alice"}
	return n
}

func TestReconcile_PrimesWithoutEffects(t *testing.T) {
	inbox := []domain.Notification{notif(domain.NotifFriendRequest), notif(domain.NotifChallengeAccepted)}

	effects, cursor := Reconcile(Cursor{}, inbox)

	assert.Empty(t, effects)
	assert.True(t, cursor.Primed)
	assert.Equal(t, 2, cursor.Count)
}

func TestReconcile_TwoToFive(t *testing.T) {
	old := []domain.Notification{notif(domain.NotifFriendRequest), notif(domain.NotifChallengeAccepted)}
	_, cursor := Reconcile(Cursor{}, old)

	challengeID := uuid.New()
	fresh := []domain.Notification{
		challengeNotif(t, domain.NotifChallengeReceived, challengeID),
		notif(domain.NotifFriendRequest),
		challengeNotif(t, domain.NotifChallengeCompleted, uuid.New()),
	}
	inbox := append(append([]domain.Notification{}, fresh...), old...)

	effects, next := Reconcile(cursor, inbox)

	require.Len(t, effects, 3)
	assert.Equal(t, ShowChallengeInvite, effects[0].Kind)
	assert.Equal(t, ShowFriendRequest, effects[1].Kind)
	assert.Equal(t, ShowChallengeCompleted, effects[2].Kind)
	for i, e := range effects {
		assert.Equal(t, fresh[i].ID, e.Notification.ID)
	}
	require.NotNil(t, effects[0].Challenge)
	assert.Equal(t, challengeID, effects[0].Challenge.ChallengeID)
	assert.Equal(t, "alice", effects[0].FromUsername())
	assert.Nil(t, effects[1].Challenge)
	assert.Equal(t, "someone", effects[1].FromUsername())
	assert.Equal(t, 5, next.Count)

	again, _ := Reconcile(next, inbox)
	assert.Empty(t, again)
}

func TestReconcile_ShrinkRebases(t *testing.T) {
	inbox := []domain.Notification{notif(domain.NotifFriendRequest), notif(domain.NotifChallengeAccepted), notif(domain.NotifChallengeRejected)}
	_, cursor := Reconcile(Cursor{}, inbox)

	effects, next := Reconcile(cursor, inbox[1:])

	assert.Empty(t, effects)
	assert.Equal(t, 2, next.Count)

	grown := append([]domain.Notification{notif(domain.NotifChallengeAccepted)}, inbox[1:]...)
	effects, _ = Reconcile(next, grown)
	assert.Len(t, effects, 1)
}

func TestReconcile_DismissalAndNewItemInOneTick(t *testing.T) {
	a, b, c := notif(domain.NotifFriendRequest), notif(domain.NotifChallengeAccepted), notif(domain.NotifChallengeRejected)
	_, cursor := Reconcile(Cursor{}, []domain.Notification{a, b, c})

	invite := challengeNotif(t, domain.NotifChallengeReceived, uuid.New())
	inbox := []domain.Notification{invite, a}

	effects, next := Reconcile(cursor, inbox)

	require.Len(t, effects, 1)
	assert.Equal(t, ShowChallengeInvite, effects[0].Kind)
	assert.Equal(t, invite.ID, effects[0].Notification.ID)
	assert.Equal(t, 2, next.Count)

	again, _ := Reconcile(next, inbox)
	assert.Empty(t, again)
}

func TestReconcile_CountOnlyCursorRebasesOnShrink(t *testing.T) {
	inbox := []domain.Notification{notif(domain.NotifChallengeReceived), notif(domain.NotifFriendRequest)}

	effects, next := Reconcile(Cursor{Primed: true, Count: 3}, inbox)

	assert.Empty(t, effects)
	assert.Equal(t, 2, next.Count)
	assert.True(t, next.hasSeen(inbox[0].ID))
}

func TestReconcile_SkipsUnknownTypes(t *testing.T) {
	_, cursor := Reconcile(Cursor{}, nil)

	effects, next := Reconcile(cursor, []domain.Notification{notif("system_message"), notif(domain.NotifChallengeRejected)})

	require.Len(t, effects, 1)
	assert.Equal(t, ShowChallengeRejected, effects[0].Kind)
	assert.Equal(t, 2, next.Count)
}

func TestReconcile_CountOnlyCursorUsesPrefix(t *testing.T) {
	inbox := []domain.Notification{
		notif(domain.NotifFriendRequest),
		notif(domain.NotifChallengeAccepted),
		notif(domain.NotifChallengeRejected),
	}

	effects, _ := Reconcile(Cursor{Primed: true, Count: 1}, inbox)

	require.Len(t, effects, 2)
	assert.Equal(t, inbox[0].ID, effects[0].Notification.ID)
	assert.Equal(t, inbox[1].ID, effects[1].Notification.ID)
}

func TestCursor_Forget(t *testing.T) {
	inbox := []domain.Notification{notif(domain.NotifFriendRequest), notif(domain.NotifChallengeAccepted)}
	_, cursor := Reconcile(Cursor{}, inbox)

	forgotten := cursor.Forget(inbox[0].ID)

	assert.Equal(t, 1, forgotten.Count)
	assert.False(t, forgotten.hasSeen(inbox[0].ID))
	assert.True(t, cursor.hasSeen(inbox[0].ID), "original cursor is unchanged")
	assert.Equal(t, forgotten, forgotten.Forget(uuid.New()))
}
