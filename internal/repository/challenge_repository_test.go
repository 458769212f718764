package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizduel/internal/domain"
)

var challengeCols = []string{
	"id", "challenger_id", "challenged_id", "category", "difficulty", "challenger_score",
	"challenged_score", "status", "winner_id", "questions", "created_at", "updated_at", "completed_at",
}

func challengeRow(id, challenger, challenged uuid.UUID, status string, a, b interface{}, winner interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(challengeCols).AddRow(
		id.String(), challenger.String(), challenged.String(), "Science", "easy", a,
		b, status, winner, []byte(`[]`), now, now, nil,
	)
}

func TestChallengeRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db)
	id, challenger, challenged := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM challenges WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(challengeRow(id, challenger, challenged, "pending", int64(7), nil, nil))

	ch, err := repo.GetByID(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, domain.ChallengePending, ch.Status)
	require.NotNil(t, ch.ChallengerScore)
	assert.Equal(t, 7, *ch.ChallengerScore)
	assert.Nil(t, ch.ChallengedScore)
	assert.Equal(t, domain.QuestionSet{}, ch.Questions)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM challenges WHERE id = $1`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_AcceptIsGuarded(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db)
	id, challenger, challenged := uuid.New(), uuid.New(), uuid.New()
	guard := sqlPattern(`UPDATE challenges SET status = 'pending', updated_at = NOW()
		WHERE id = $1 AND challenged_id = $2 AND status = 'invited'`)

	mock.ExpectQuery(guard).
		WithArgs(id, challenged).
		WillReturnRows(challengeRow(id, challenger, challenged, "pending", nil, nil, nil))

	ch, err := repo.Accept(ctx, id, challenged)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengePending, ch.Status)

	mock.ExpectQuery(guard).
		WithArgs(id, challenged).
		WillReturnRows(sqlmock.NewRows(challengeCols))

	ch, err = repo.Accept(ctx, id, challenged)
	require.NoError(t, err)
	assert.Nil(t, ch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_DeclineIsGuarded(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db)
	id, challenged := uuid.New(), uuid.New()

	mock.ExpectQuery(sqlPattern(`SET status = 'declined', updated_at = NOW()
		WHERE id = $1 AND challenged_id = $2 AND status = 'invited'`)).
		WithArgs(id, challenged).
		WillReturnRows(sqlmock.NewRows(challengeCols))

	ch, err := repo.Decline(context.Background(), id, challenged)

	require.NoError(t, err)
	assert.Nil(t, ch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_SetScoreTargetsOwnColumn(t *testing.T) {
	ctx := context.Background()
	id, challenger, challenged := uuid.New(), uuid.New(), uuid.New()

	t.Run("challenger", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(sqlPattern(`SET challenger_score = $3, updated_at = NOW()
		WHERE id = $1 AND challenger_id = $2 AND challenger_score IS NULL AND status = 'pending'`)).
			WithArgs(id, challenger, 7).
			WillReturnRows(challengeRow(id, challenger, challenged, "pending", int64(7), nil, nil))

		ch, err := NewChallengeRepository(db).SetScore(ctx, id, challenger, true, 7)

		require.NoError(t, err)
		assert.Equal(t, 7, *ch.ChallengerScore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("challenged score already set", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(sqlPattern(`SET challenged_score = $3, updated_at = NOW()
		WHERE id = $1 AND challenged_id = $2 AND challenged_score IS NULL AND status = 'pending'`)).
			WithArgs(id, challenged, 5).
			WillReturnRows(sqlmock.NewRows(challengeCols))

		ch, err := NewChallengeRepository(db).SetScore(ctx, id, challenged, false, 5)

		require.NoError(t, err)
		assert.Nil(t, ch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChallengeRepository_Complete(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewChallengeRepository(db)
	id, challenger, challenged := uuid.New(), uuid.New(), uuid.New()
	guard := sqlPattern(`WHERE id = $1 AND status = 'pending' AND challenger_score IS NOT NULL AND challenged_score IS NOT NULL`)

	mock.ExpectQuery(guard).
		WithArgs(id).
		WillReturnRows(challengeRow(id, challenger, challenged, "completed", int64(7), int64(5), challenger.String()))

	ch, err := repo.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeCompleted, ch.Status)
	require.NotNil(t, ch.WinnerID)
	assert.Equal(t, challenger, *ch.WinnerID)

	// The second submitter's Complete matches nothing once the first one closed the row.
	mock.ExpectQuery(guard).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(challengeCols))

	ch, err = repo.Complete(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, ch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_SaveQuestions(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	questions := domain.QuestionSet{{Question: "Q1", CorrectAnswer: "A", IncorrectAnswers: []string{"B"}}}
	stored := []byte(`[{"question":"Q0","correct_answer":"X","incorrect_answers":["Y"]}]`)
	update := regexp.QuoteMeta(`WHERE id = $1 AND jsonb_array_length(questions) = 0`)

	t.Run("first writer", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(update).
			WithArgs(id, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"questions"}).AddRow([]byte(`[{"question":"Q1","correct_answer":"A","incorrect_answers":["B"]}]`)))

		got, saved, err := NewChallengeRepository(db).SaveQuestions(ctx, id, questions)

		require.NoError(t, err)
		assert.True(t, saved)
		assert.Equal(t, questions[0].Question, got[0].Question)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("later writer gets the stored set", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(update).
			WithArgs(id, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"questions"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT questions FROM challenges WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"questions"}).AddRow(stored))

		got, saved, err := NewChallengeRepository(db).SaveQuestions(ctx, id, questions)

		require.NoError(t, err)
		assert.False(t, saved)
		require.Len(t, got, 1)
		assert.Equal(t, "Q0", got[0].Question)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown challenge", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(update).
			WithArgs(id, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"questions"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT questions FROM challenges WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"questions"}))

		_, _, err := NewChallengeRepository(db).SaveQuestions(ctx, id, questions)

		assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
	})
}
