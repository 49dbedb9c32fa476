package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/strategy"
	"honeytrap-lab/pkg/logger"
)

func testPersona() strategy.Persona {
	return strategy.Roster[0]
}

func testDirective() models.Directive {
	return models.Directive{
		Emotion:        "worried",
		Tactics:        []string{"ask for verification"},
		InfoRequest:    "Which number should I call you back on?",
		TargetCategory: "phone_number",
	}
}

func TestFallbackReplyIndexing(t *testing.T) {
	assert.Equal(t, fallbackReplies[0], FallbackReply(0))
	assert.Equal(t, fallbackReplies[3], FallbackReply(3))
	assert.Equal(t, fallbackReplies[0], FallbackReply(len(fallbackReplies)))
	assert.Equal(t, fallbackReplies[0], FallbackReply(-5))
}

func TestReplyDisabledUsesFallback(t *testing.T) {
	g := New(config.GenerationConfig{Enabled: false}, logger.NewDefault())

	reply := g.Reply(context.Background(), testPersona(), testDirective(), nil, 2)
	assert.Equal(t, FallbackReply(2), reply)
}

func TestReplyFromModelService(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "  Oh no, which number do I call?  "}},
			},
		})
	}))
	defer srv.Close()

	g := New(config.GenerationConfig{
		Enabled: true,
		BaseURL: srv.URL,
		Model:   "test-model",
		APIKey:  "sk-test",
	}, logger.NewDefault())

	history := []models.HistoryEntry{
		{Sender: "scammer", Text: "your account is blocked"},
		{Sender: "user", Text: "oh dear, what happened?"},
	}
	reply := g.Reply(context.Background(), testPersona(), testDirective(), history, 1)

	assert.Equal(t, "Oh no, which number do I call?", reply)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.GreaterOrEqual(t, len(gotReq.Messages), 3)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, testPersona().Name)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "assistant", gotReq.Messages[2].Role)
}

func TestReplyUpstreamErrorUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := New(config.GenerationConfig{Enabled: true, BaseURL: srv.URL}, logger.NewDefault())

	reply := g.Reply(context.Background(), testPersona(), testDirective(), nil, 4)
	assert.Equal(t, FallbackReply(4), reply)
}

func TestReplyEmptyChoiceUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "   "}},
			},
		})
	}))
	defer srv.Close()

	g := New(config.GenerationConfig{Enabled: true, BaseURL: srv.URL}, logger.NewDefault())

	reply := g.Reply(context.Background(), testPersona(), testDirective(), nil, 0)
	assert.Equal(t, FallbackReply(0), reply)
}
