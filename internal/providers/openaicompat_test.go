package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *ChatExtractor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewChatExtractor(ChatConfig{
		Name:    GroqName,
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	}, nil)
}

func TestChatExtractorSuccess(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	extractor := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": validRecordJSON}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	})

	record, err := extractor.Extract(context.Background(), "Jane Doe\njane@example.com\nEngineer at Acme")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", record.PersonalInfo.Name)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model)
	require.NotNil(t, gotBody.ResponseFormat)
	assert.Equal(t, "json_object", gotBody.ResponseFormat.Type)
	require.Len(t, gotBody.Messages, 1)
	assert.Contains(t, gotBody.Messages[0].Content, "Jane Doe")
}

func TestChatExtractorRateLimited(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "429 status",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"message": "slow down"}}`,
		},
		{
			name:   "quota message with 400",
			status: http.StatusBadRequest,
			body:   `{"error": {"message": "monthly quota exhausted"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			record, err := extractor.Extract(context.Background(), "resume text")
			assert.Nil(t, record)
			assert.True(t, IsRateLimited(err))
		})
	}
}

func TestChatExtractorServerError(t *testing.T) {
	extractor := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	})

	record, err := extractor.Extract(context.Background(), "resume text")
	assert.Nil(t, record)
	assert.False(t, IsRateLimited(err))

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, GroqName, provErr.Provider)
}

func TestChatExtractorEmptyChoices(t *testing.T) {
	extractor := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	record, err := extractor.Extract(context.Background(), "resume text")
	assert.Nil(t, record)

	var invalid *InvalidOutputError
	require.ErrorAs(t, err, &invalid)
}

func TestChatExtractorUnparseableContent(t *testing.T) {
	extractor := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "I refuse to answer in JSON."}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	})

	record, err := extractor.Extract(context.Background(), "resume text")
	assert.Nil(t, record)

	var invalid *InvalidOutputError
	require.ErrorAs(t, err, &invalid)
}

func TestExtractorDefaults(t *testing.T) {
	groq := NewGroqExtractor("key", "", nil)
	assert.Equal(t, GroqName, groq.Name())
	assert.Equal(t, groqDefaultModel, groq.cfg.Model)
	assert.Equal(t, groqBaseURL, groq.cfg.BaseURL)

	mistral := NewMistralExtractor("key", "custom-model", nil)
	assert.Equal(t, MistralName, mistral.Name())
	assert.Equal(t, "custom-model", mistral.cfg.Model)
	assert.Equal(t, mistralBaseURL, mistral.cfg.BaseURL)
}
