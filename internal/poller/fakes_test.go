package poller

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"quizduel/internal/domain"
)

// fakeAPI is an in-memory server for the poller's collaborators.
type fakeAPI struct {
	mu sync.Mutex

	inboxes    [][]domain.Notification
	inboxErrs  []error
	inboxCalls int

	statuses    []domain.ChallengeStatusView
	statusErrs  []error
	statusCalls int

	acceptErr   error
	accepted    int
	submitErr   error
	submitted   []int
	questions   domain.QuestionSet
	questionErr error
	fetches     int
	deleteErr   error
	deleted     []uuid.UUID

	// onInbox runs after each inbox fetch, before the result is returned.
	onInbox func()
}

func (f *fakeAPI) Notifications(_ context.Context) ([]domain.Notification, error) {
	f.mu.Lock()
	i := f.inboxCalls
	f.inboxCalls++
	var inbox []domain.Notification
	var err error
	if i < len(f.inboxErrs) {
		err = f.inboxErrs[i]
	}
	if len(f.inboxes) > 0 {
		if i >= len(f.inboxes) {
			i = len(f.inboxes) - 1
		}
		inbox = f.inboxes[i]
	}
	hook := f.onInbox
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return inbox, nil
}

func (f *fakeAPI) ChallengeStatus(_ context.Context, _ uuid.UUID) (*domain.ChallengeStatusView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.statusCalls
	f.statusCalls++
	if i < len(f.statusErrs) && f.statusErrs[i] != nil {
		return nil, f.statusErrs[i]
	}
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	view := f.statuses[i]
	return &view, nil
}

func (f *fakeAPI) AcceptChallenge(_ context.Context, id uuid.UUID) (*domain.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted++
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return &domain.Challenge{ID: id, Status: domain.ChallengePending}, nil
}

func (f *fakeAPI) Questions(_ context.Context, _ uuid.UUID) (domain.QuestionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.questions, f.questionErr
}

func (f *fakeAPI) SubmitScore(_ context.Context, id uuid.UUID, score int) (*domain.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, score)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &domain.Challenge{ID: id}, nil
}

func (f *fakeAPI) DeleteNotification(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func intPtr(v int) *int { return &v }
