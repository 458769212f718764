package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"quizduel/internal/domain"
	"quizduel/internal/mocks"
	"quizduel/internal/repository"
)

const testSecret = "test-secret"

func newTestService() (Service, *mocks.UserRepository, *mocks.SessionRepository) {
	userRepo := new(mocks.UserRepository)
	sessionRepo := new(mocks.SessionRepository)
	svc := NewService(userRepo, sessionRepo, Options{Secret: testSecret, AccessExpiry: time.Hour})
	return svc, userRepo, sessionRepo
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and session", func(t *testing.T) {
		svc, userRepo, sessionRepo := newTestService()
		input := domain.RegisterInput{Username: "alice", Email: "Alice@Example.com ", Password: "password123"}

		userRepo.On("Exists", ctx, input.Email, input.Username).Return(false, nil).Once()
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
		})).Return(nil).Once()
		sessionRepo.On("Create", ctx, mock.AnythingOfType("*repository.Session")).Return(nil).Once()

		user, tokens, err := svc.Register(ctx, input, "quizclient/1.0")

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Equal(t, int64(3600), tokens.ExpiresIn)

		claims, err := svc.ValidateAccessToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.NotEqual(t, uuid.Nil, claims.SessionID)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, userRepo, _ := newTestService()
		input := domain.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}
		userRepo.On("Exists", ctx, input.Email, input.Username).Return(true, nil).Once()

		_, _, err := svc.Register(ctx, input, "")

		assert.ErrorIs(t, err, domain.ErrConflict)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: string(hash)}

	t.Run("success", func(t *testing.T) {
		svc, userRepo, sessionRepo := newTestService()
		userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
		sessionRepo.On("Create", ctx, mock.MatchedBy(func(s *repository.Session) bool {
			return s.UserID == user.ID && s.UserAgent == nil
		})).Return(nil).Once()

		got, tokens, err := svc.Login(ctx, domain.LoginInput{Email: user.Email, Password: "password123"}, "")

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, userRepo, _ := newTestService()
		userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: user.Email, Password: "nope"}, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, userRepo, _ := newTestService()
		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil).Once()

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "ghost@example.com", Password: "x"}, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func signed(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	userID, sessionID := uuid.New(), uuid.New()
	valid := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("active session", func(t *testing.T) {
		svc, _, sessionRepo := newTestService()
		sessionRepo.On("GetActive", ctx, sessionID).Return(&repository.Session{ID: sessionID, UserID: userID}, nil).Once()

		claims, err := svc.Authenticate(ctx, signed(t, valid, testSecret))

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("revoked session", func(t *testing.T) {
		svc, _, sessionRepo := newTestService()
		sessionRepo.On("GetActive", ctx, sessionID).Return(nil, nil).Once()

		_, err := svc.Authenticate(ctx, signed(t, valid, testSecret))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc, _, sessionRepo := newTestService()

		_, err := svc.Authenticate(ctx, signed(t, valid, "other"))

		assert.ErrorIs(t, err, ErrInvalidToken)
		sessionRepo.AssertNotCalled(t, "GetActive", mock.Anything, mock.Anything)
	})

	t.Run("expired", func(t *testing.T) {
		svc, _, _ := newTestService()
		expired := *valid
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := svc.Authenticate(ctx, signed(t, &expired, testSecret))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _, sessionRepo := newTestService()
	sessionID := uuid.New()
	sessionRepo.On("Revoke", ctx, sessionID).Return(nil).Once()

	require.NoError(t, svc.Logout(ctx, sessionID))
	sessionRepo.AssertExpectations(t)
}

func TestService_PurgeSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, sessionRepo := newTestService()
	before := time.Now()

	sessionRepo.On("DeleteExpired", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		return cutoff.Before(before.Add(-23*time.Hour)) && cutoff.After(before.Add(-25*time.Hour))
	})).Return(int64(4), nil).Once()

	n, err := svc.PurgeSessions(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	sessionRepo.AssertExpectations(t)
}

func TestService_GetUserByID(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newTestService()
	id := uuid.New()
	userRepo.On("GetByID", ctx, id).Return(nil, nil).Once()

	_, err := svc.GetUserByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
