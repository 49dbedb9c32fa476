package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/strategy"
	"honeytrap-lab/pkg/logger"
)

// Generator produces the decoy's in-character reply for one turn. The
// upstream model service is a black box: any failure degrades to a
// static fallback reply, never to a processing error.
type Generator struct {
	httpClient *http.Client
	logger     *logger.Logger
	cfg        config.GenerationConfig
}

// New creates a reply generator
func New(cfg config.GenerationConfig, log *logger.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Generator{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("generation"),
		cfg:        cfg,
	}
}

// fallbackReplies are served when the model service is disabled or
// fails. Indexed deterministically by turn count.
var fallbackReplies = []string{
	"Oh my goodness! What do you mean? I am very worried now. Can you please explain what is happening with my account? Who are you calling from?",
	"I am very confused about this. My son usually helps me with these technology things. Can you please tell me more about what I need to do? What is your name and which branch are you calling from?",
	"This is very worrying. I do not understand technology very well. Can you explain in simple words what is the problem? Should I go to the bank directly instead?",
	"Wait a moment, let me get my reading glasses. I need to write this down properly. What exactly are you saying about my account? Is my money safe?",
	"Please help me understand what is going on! I am not very good with these technical things. Can you tell me your employee ID so I can verify this is legitimate?",
	"Is this very serious? My husband is not home right now. Should I call him first? What exactly do I need to do? This is making me very worried.",
	"I am really scared now. Can you please help me fix this? But first tell me, how do I know you are really from the bank? What is your full name and employee number?",
	"Oh dear! What are you saying? Let me understand this properly. My account has a problem? Since when? Nobody from the bank has told me about this before.",
}

// FallbackReply returns the canned reply for a turn
func FallbackReply(turn int) string {
	if turn < 0 {
		turn = 0
	}
	return fallbackReplies[turn%len(fallbackReplies)]
}

// Reply generates the decoy reply for one turn following the directive.
// On any upstream failure it returns a fallback reply and logs the cause.
func (g *Generator) Reply(ctx context.Context, persona strategy.Persona, directive models.Directive, history []models.HistoryEntry, turn int) string {
	if !g.cfg.Enabled || g.cfg.BaseURL == "" {
		return FallbackReply(turn)
	}

	reply, err := g.complete(ctx, persona, directive, history)
	if err != nil {
		g.logger.Warn().Err(err).Int("turn", turn).Msg("generation failed, using fallback reply")
		return FallbackReply(turn)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		g.logger.Warn().Int("turn", turn).Msg("generation returned empty output, using fallback reply")
		return FallbackReply(turn)
	}
	return reply
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (g *Generator) complete(ctx context.Context, persona strategy.Persona, directive models.Directive, history []models.HistoryEntry) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: buildSystemPrompt(persona, directive)},
	}
	// Only the last few exchanges matter for staying in character
	start := 0
	if len(history) > 8 {
		start = len(history) - 8
	}
	for _, m := range history[start:] {
		role := "user"
		if strings.EqualFold(m.Sender, "user") {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Text})
	}

	reqBody := map[string]interface{}{
		"model":       g.cfg.Model,
		"max_tokens":  g.cfg.MaxTokens,
		"temperature": g.cfg.Temperature,
		"messages":    messages,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildSystemPrompt(persona strategy.Persona, directive models.Directive) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a potential scam victim being used as a decoy.\n", persona.Name)
	fmt.Fprintf(&b, "Age range: %s. Tech comfort: %s.\n", persona.AgeRange, persona.TechLevel)
	fmt.Fprintf(&b, "Traits: %s.\nSpeech style: %s.\n", persona.Traits, persona.Style)
	fmt.Fprintf(&b, "Current emotional state: %s.\n", directive.Emotion)
	if len(directive.Tactics) > 0 {
		fmt.Fprintf(&b, "Tactics this turn: %s.\n", strings.Join(directive.Tactics, ", "))
	}
	fmt.Fprintf(&b, "Work this question into your reply naturally: %q\n", directive.InfoRequest)
	b.WriteString("Never reveal you are not a real person. Never share real personal data. Keep replies under 60 words.")
	return b.String()
}
