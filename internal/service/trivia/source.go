package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quizduel/internal/domain"
)

// Source produces an ordered question set for a category and difficulty.
type Source interface {
	Fetch(ctx context.Context, category, difficulty string, amount int) (domain.QuestionSet, error)
}

var (
	ErrNoResults   = errors.New("trivia source has no questions for this selection")
	ErrRateLimited = errors.New("trivia source rate limited")
)

const DefaultBaseURL = "https://opentdb.com/api.php"

type openTDBQuestion struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []openTDBQuestion `json:"results"`
}

// OpenTDB reads multiple-choice questions from an Open Trivia DB compatible endpoint.
type OpenTDB struct {
	baseURL string
	client  *http.Client
	shuffle func(n int, swap func(i, j int))
}

func NewOpenTDB(baseURL string, timeout time.Duration) *OpenTDB {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenTDB{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		shuffle: rand.Shuffle,
	}
}

func (o *OpenTDB) Fetch(ctx context.Context, category, difficulty string, amount int) (domain.QuestionSet, error) {
	if amount <= 0 {
		amount = 10
	}

	u, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid trivia base url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(amount))
	q.Set("type", "multiple")
	if category != "" && category != "any" {
		q.Set("category", category)
	}
	if difficulty != "" && difficulty != "any" {
		q.Set("difficulty", difficulty)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia source returned %d", resp.StatusCode)
	}

	var body openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	switch body.ResponseCode {
	case 0:
	case 1:
		return nil, ErrNoResults
	case 5:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("trivia source response code %d", body.ResponseCode)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	questions := make(domain.QuestionSet, 0, len(body.Results))
	for _, r := range body.Results {
		questions = append(questions, o.toQuestion(r))
	}
	return questions, nil
}

func (o *OpenTDB) toQuestion(r openTDBQuestion) domain.Question {
	incorrect := make([]string, 0, len(r.IncorrectAnswers))
	for _, a := range r.IncorrectAnswers {
		incorrect = append(incorrect, html.UnescapeString(a))
	}
	correct := html.UnescapeString(r.CorrectAnswer)

	answers := make([]string, 0, len(incorrect)+1)
	answers = append(answers, incorrect...)
	answers = append(answers, correct)
	o.shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

	return domain.Question{
		Question:         html.UnescapeString(r.Question),
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
		Answers:          answers,
	}
}
