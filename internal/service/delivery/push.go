package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizduel/internal/domain"
)

const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

type expoMessage struct {
	To    string          `json:"to"`
	Title string          `json:"title,omitempty"`
	Body  string          `json:"body"`
	Data  json.RawMessage `json:"data,omitempty"`
	Sound string          `json:"sound,omitempty"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// PushChannel sends notifications to the Expo push service for users with a registered
// device token.
type PushChannel struct {
	url         string
	accessToken string
	client      *http.Client
}

func NewPushChannel(url, accessToken string, client *http.Client) *PushChannel {
	if url == "" {
		url = DefaultExpoPushURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PushChannel{url: url, accessToken: accessToken, client: client}
}

func (p *PushChannel) Name() string { return "push" }

func IsExpoPushToken(token string) bool {
	return (strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")) &&
		strings.HasSuffix(token, "]")
}

func (p *PushChannel) Deliver(ctx context.Context, user *domain.User, notif *domain.Notification) error {
	if user.PushToken == nil || *user.PushToken == "" {
		return nil
	}
	if !IsExpoPushToken(*user.PushToken) {
		return fmt.Errorf("malformed push token for user %s", user.ID)
	}

	body := notif.Message
	if notif.FromUser != nil {
		body = notif.FromUser.Username + " " + body
	}

	payload, err := json.Marshal([]expoMessage{{
		To:    *user.PushToken,
		Title: notif.Title,
		Body:  body,
		Data:  notif.Data,
		Sound: "default",
	}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed expoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode push response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("push service error %s: %s", parsed.Errors[0].Code, parsed.Errors[0].Message)
	}
	for _, ticket := range parsed.Data {
		if ticket.Status == "error" {
			if ticket.Details.Error != "" {
				return fmt.Errorf("push rejected (%s): %s", ticket.Details.Error, ticket.Message)
			}
			return fmt.Errorf("push rejected: %s", ticket.Message)
		}
	}
	return nil
}
