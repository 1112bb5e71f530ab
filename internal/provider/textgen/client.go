// Package textgen asks an OpenAI-compatible chat completions endpoint for
// short reminder copy.
package textgen

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

	"github.com/saadjs/hydrate-cli/internal/engine"
	"github.com/saadjs/hydrate-cli/internal/model"
)

var ErrInvalidResponse = errors.New("invalid text generator response")

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 10 * time.Second
	maxReplyRunes  = 160
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      modelName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ engine.TextSource = (*Client)(nil)

// Available is false until a base URL is configured.
func (c *Client) Available() bool {
	return c != nil && c.baseURL != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, p engine.Prompt) (string, error) {
	if !c.Available() {
		return "", nil
	}
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(p)},
		},
		MaxTokens:   60,
		Temperature: 0.8,
	}
	body, err := c.doJSON(ctx, "/v1/chat/completions", payload)
	if err != nil {
		return "", err
	}
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}
	return cleanReply(resp.Choices[0].Message.Content), nil
}

const systemPrompt = "You write one-sentence hydration reminders for a phone notification. " +
	"Be warm and brief. Never shame the user. No emojis, no quotes, no hashtags."

func userPrompt(p engine.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user has had %d ml of a %d ml goal today; %d ml remain. ", p.TodayML, p.GoalML, p.RemainingML)
	switch p.Band {
	case model.BandEarly:
		b.WriteString("They are just getting started. ")
	case model.BandMid:
		b.WriteString("They are making steady progress. ")
	case model.BandLate:
		b.WriteString("They are close to the goal. ")
	}
	if p.Escalation {
		b.WriteString("They have not logged a drink in a long while; check in gently. ")
	}
	b.WriteString("Write the reminder.")
	return b.String()
}

func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > maxReplyRunes {
		s = strings.TrimSpace(string(runes[:maxReplyRunes]))
	}
	return s
}

func (c *Client) doJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("text generator request failed, status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}
