package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizduel/internal/domain"
	"quizduel/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Service interface {
	Register(ctx context.Context, input domain.RegisterInput, userAgent string) (*domain.User, *domain.TokenPair, error)
	Login(ctx context.Context, input domain.LoginInput, userAgent string) (*domain.User, *domain.TokenPair, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	ValidateAccessToken(token string) (*Claims, error)
	Authenticate(ctx context.Context, token string) (*Claims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	PurgeSessions(ctx context.Context) (int64, error)
}

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"sid"`
	Email     string    `json:"email"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret       string
	AccessExpiry time.Duration
	// RevokedRetention is how long revoked sessions stay in the table before PurgeSessions drops them.
	RevokedRetention time.Duration
}

type service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	opts        Options
}

func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, opts Options) Service {
	if opts.AccessExpiry <= 0 {
		opts.AccessExpiry = 7 * 24 * time.Hour
	}
	if opts.RevokedRetention <= 0 {
		opts.RevokedRetention = 24 * time.Hour
	}
	return &service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		opts:        opts,
	}
}

func (s *service) Register(ctx context.Context, input domain.RegisterInput, userAgent string) (*domain.User, *domain.TokenPair, error) {
	exists, err := s.userRepo.Exists(ctx, input.Email, input.Username)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, domain.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueToken(ctx, user, userAgent)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (s *service) Login(ctx context.Context, input domain.LoginInput, userAgent string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueToken(ctx, user, userAgent)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Logout revokes the session; clients still polling with its token get 401 afterwards.
func (s *service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.Revoke(ctx, sessionID)
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authenticate validates the token and checks that its session is still active.
func (s *service) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetActive(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *service) PurgeSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now().Add(-s.opts.RevokedRetention))
}

func (s *service) issueToken(ctx context.Context, user *domain.User, userAgent string) (*domain.TokenPair, error) {
	now := time.Now()
	session := &repository.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.opts.AccessExpiry),
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	claims := &Claims{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID.String(),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(s.opts.Secret))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken: accessTokenString,
		ExpiresIn:   int64(s.opts.AccessExpiry.Seconds()),
	}, nil
}
