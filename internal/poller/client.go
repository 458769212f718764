package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizduel/internal/domain"
)

// APIError is a non-2xx response. It unwraps to the matching domain error.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrSessionInvalid
	case http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrInvalidTransition
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return domain.ErrValidation
	default:
		return nil
	}
}

// Client talks to the quizduel HTTP API on behalf of one signed-in user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

type loginResponse struct {
	User        domain.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

// Login exchanges credentials for a token and returns a client carrying it.
func (c *Client) Login(ctx context.Context, email, password string) (*Client, *domain.User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", domain.LoginInput{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return c.WithToken(resp.AccessToken), &resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var inbox []domain.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}

func (c *Client) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+id.String(), nil, nil)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+id.String()+"/read", nil, nil)
}

func (c *Client) CreateChallenge(ctx context.Context, input domain.CreateChallengeInput) (*domain.Challenge, error) {
	var ch domain.Challenge
	if err := c.do(ctx, http.MethodPost, "/challenge", input, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) AcceptChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	var ch domain.Challenge
	if err := c.do(ctx, http.MethodPost, "/challenge/accept", domain.ChallengeActionInput{ChallengeID: id}, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) RejectChallenge(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/challenge/reject", domain.ChallengeActionInput{ChallengeID: id}, nil)
}

func (c *Client) SubmitScore(ctx context.Context, id uuid.UUID, score int) (*domain.Challenge, error) {
	var ch domain.Challenge
	input := domain.CompleteChallengeInput{ChallengeID: id, Score: &score}
	if err := c.do(ctx, http.MethodPost, "/challenge/complete", input, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) ChallengeStatus(ctx context.Context, id uuid.UUID) (*domain.ChallengeStatusView, error) {
	var view domain.ChallengeStatusView
	if err := c.do(ctx, http.MethodGet, "/challenge/"+id.String()+"/status", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

type questionsResponse struct {
	Questions domain.QuestionSet `json:"questions"`
}

// Questions returns the challenge's question set, asking the server to fetch one if none is stored.
func (c *Client) Questions(ctx context.Context, id uuid.UUID) (domain.QuestionSet, error) {
	var resp questionsResponse
	if err := c.do(ctx, http.MethodGet, "/challenge/"+id.String()+"/questions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

func (c *Client) SaveQuestions(ctx context.Context, id uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, error) {
	var resp questionsResponse
	body := domain.SaveQuestionsInput{Questions: questions}
	if err := c.do(ctx, http.MethodPost, "/challenge/"+id.String()+"/questions", body, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// IsSessionInvalid reports whether err means the token itself was rejected.
func IsSessionInvalid(err error) bool {
	return errors.Is(err, domain.ErrSessionInvalid)
}
