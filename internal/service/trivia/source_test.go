package trivia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noShuffle(n int, swap func(i, j int)) {}

func TestOpenTDB_Fetch(t *testing.T) {
	t.Run("decodes entities and builds answers", func(t *testing.T) {
		var query map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = map[string]string{
				"amount":     r.URL.Query().Get("amount"),
				"category":   r.URL.Query().Get("category"),
				"difficulty": r.URL.Query().Get("difficulty"),
				"type":       r.URL.Query().Get("type"),
			}
			_, _ = w.Write([]byte(`{"response_code":0,"results":[
				{"question":"What&#039;s 2 &amp; 2?","correct_answer":"4","incorrect_answers":["3","&quot;5&quot;","22"]},
				{"question":"Q2","correct_answer":"A","incorrect_answers":["B","C","D"]}
			]}`))
		}))
		defer srv.Close()

		src := NewOpenTDB(srv.URL, time.Second)
		src.shuffle = noShuffle

		qs, err := src.Fetch(context.Background(), "9", "easy", 2)

		require.NoError(t, err)
		require.Len(t, qs, 2)
		assert.Equal(t, "What's 2 & 2?", qs[0].Question)
		assert.Equal(t, []string{"3", `"5"`, "22"}, qs[0].IncorrectAnswers)
		assert.Equal(t, []string{"3", `"5"`, "22", "4"}, qs[0].Answers)
		assert.Equal(t, "A", qs[1].CorrectAnswer)
		assert.Equal(t, map[string]string{"amount": "2", "category": "9", "difficulty": "easy", "type": "multiple"}, query)
	})

	t.Run("any selections are omitted", func(t *testing.T) {
		var rawQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"response_code":0,"results":[{"question":"Q","correct_answer":"A","incorrect_answers":["B"]}]}`))
		}))
		defer srv.Close()

		_, err := NewOpenTDB(srv.URL, time.Second).Fetch(context.Background(), "any", "any", 0)

		require.NoError(t, err)
		assert.NotContains(t, rawQuery, "category")
		assert.NotContains(t, rawQuery, "difficulty")
		assert.Contains(t, rawQuery, "amount=10")
	})

	t.Run("shuffled answers keep every option", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"response_code":0,"results":[{"question":"Q","correct_answer":"A","incorrect_answers":["B","C","D"]}]}`))
		}))
		defer srv.Close()

		qs, err := NewOpenTDB(srv.URL, time.Second).Fetch(context.Background(), "9", "easy", 1)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, qs[0].Answers)
	})

	t.Run("no results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"response_code":1,"results":[]}`))
		}))
		defer srv.Close()

		_, err := NewOpenTDB(srv.URL, time.Second).Fetch(context.Background(), "9", "hard", 50)
		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"response_code":5,"results":[]}`))
		}))
		defer srv.Close()

		_, err := NewOpenTDB(srv.URL, time.Second).Fetch(context.Background(), "9", "hard", 10)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewOpenTDB(srv.URL, time.Second).Fetch(context.Background(), "9", "hard", 10)
		assert.Error(t, err)
	})
}
