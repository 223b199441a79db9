package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func llmServer(t *testing.T, status int, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("x-goog-api-key"))

		var req llmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(llmResponse{
			Candidates: []struct {
				Content llmContent `json:"content"`
			}{
				{Content: llmContent{Parts: []llmPart{{Text: answer}}}},
			},
		})
	}))
}

func TestParseFood(t *testing.T) {
	srv := llmServer(t, http.StatusOK, `{"calories": 540, "protein_g": 32.5, "carbs_g": 41, "fat_g": 24, "items": ["cheeseburger", "small fries"]}`)
	defer srv.Close()

	svc := NewNutritionService(nil, srv.URL, "test-key")

	analysis, err := svc.ParseFood(context.Background(), "a cheeseburger and small fries")
	require.NoError(t, err)
	assert.Equal(t, 540, analysis.Calories)
	assert.Equal(t, 32.5, analysis.ProteinG)
	assert.Equal(t, []string{"cheeseburger", "small fries"}, analysis.Items)
}

func TestParseFoodStripsCodeFences(t *testing.T) {
	srv := llmServer(t, http.StatusOK, "```json\n{\"calories\": 120, \"protein_g\": 3, \"carbs_g\": 27, \"fat_g\": 0.4, \"items\": [\"banana\"]}\n```")
	defer srv.Close()

	svc := NewNutritionService(nil, srv.URL, "test-key")

	analysis, err := svc.ParseFood(context.Background(), "a banana")
	require.NoError(t, err)
	assert.Equal(t, 120, analysis.Calories)
}

func TestParseFoodModelError(t *testing.T) {
	srv := llmServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	svc := NewNutritionService(nil, srv.URL, "test-key")

	_, err := svc.ParseFood(context.Background(), "a banana")
	assert.Error(t, err)
}

func TestParseFoodMalformedAnswer(t *testing.T) {
	srv := llmServer(t, http.StatusOK, "I had trouble with that one, sorry!")
	defer srv.Close()

	svc := NewNutritionService(nil, srv.URL, "test-key")

	_, err := svc.ParseFood(context.Background(), "a banana")
	assert.Error(t, err)
}

func TestParseFoodEmptyText(t *testing.T) {
	svc := NewNutritionService(nil, "http://unused", "test-key")

	_, err := svc.ParseFood(context.Background(), "  ")
	assert.True(t, IsValidation(err))
}

func TestParseFoodUnconfigured(t *testing.T) {
	svc := NewNutritionService(nil, "", "")

	_, err := svc.ParseFood(context.Background(), "a banana")
	assert.Error(t, err)
}

func TestStripJSONFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                     `{"a":1}`,
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n{\"a\":1}\n```":           `{"a":1}`,
		"  \n```json\n{\"a\":1}\n```\n": `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripJSONFences(in))
	}
}
