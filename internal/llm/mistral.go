package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sotto-labs/sotto-core/internal/config"
)

const mistralEndpoint = "https://api.mistral.ai/v1/chat/completions"

// MistralProvider talks to Mistral's chat completions API. Mistral has no
// speech endpoint, so TTS reports ErrUnsupported.
type MistralProvider struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpc       *http.Client
}

func NewMistralProvider(apiKey string, cfg config.LLMConfig) *MistralProvider {
	return &MistralProvider{
		apiKey:      apiKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpc:       &http.Client{Timeout: 30 * time.Second},
	}
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type mistralResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (m *MistralProvider) chat(ctx context.Context, system, user string) (string, error) {
	payload := mistralRequest{
		Model: m.model,
		Messages: []mistralMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mistralEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("mistral returned status %s", resp.Status)
	}

	var out mistralResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode mistral response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (m *MistralProvider) ClassifyIntent(ctx context.Context, text string, commands []CommandSpec) (Intent, error) {
	table, err := json.Marshal(commands)
	if err != nil {
		return Intent{}, fmt.Errorf("marshal command table: %w", err)
	}
	user := fmt.Sprintf("Commands:\n%s\n\nUtterance: %s", table, text)

	content, err := m.chat(ctx, classifierSystemPrompt, user)
	if err != nil {
		return Intent{}, err
	}
	return parseClassification(content)
}

func (m *MistralProvider) SummarizeSearch(ctx context.Context, query string, snippets []string) (string, error) {
	user := fmt.Sprintf("Question: %s\n\n%s", query, strings.Join(snippets, "\n\n"))
	return m.chat(ctx, summarizerSystemPrompt, user)
}

func (m *MistralProvider) AnswerShort(ctx context.Context, prompt string) (string, error) {
	return m.chat(ctx, assistantSystemPrompt, prompt)
}

func (m *MistralProvider) TTS(ctx context.Context, text string) ([]byte, error) {
	return nil, ErrUnsupported
}
