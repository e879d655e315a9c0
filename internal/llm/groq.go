package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sotto-labs/sotto-core/internal/config"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider talks to Groq's OpenAI-compatible API.
type GroqProvider struct {
	client      openai.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	ttsModel    string
	ttsVoice    string
	httpc       *http.Client
}

func NewGroqProvider(apiKey string, cfg config.LLMConfig) *GroqProvider {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(groqBaseURL),
	)
	return &GroqProvider{
		client:      client,
		apiKey:      apiKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		ttsModel:    cfg.TTSModel,
		ttsVoice:    cfg.TTSVoice,
		httpc:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GroqProvider) chat(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: openai.ChatModel(g.model),
	}
	if g.temperature > 0 {
		params.Temperature = openai.Float(g.temperature)
	}
	if g.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(g.maxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *GroqProvider) ClassifyIntent(ctx context.Context, text string, commands []CommandSpec) (Intent, error) {
	table, err := json.Marshal(commands)
	if err != nil {
		return Intent{}, fmt.Errorf("marshal command table: %w", err)
	}
	user := fmt.Sprintf("Commands:\n%s\n\nUtterance: %s", table, text)

	content, err := g.chat(ctx, classifierSystemPrompt, user)
	if err != nil {
		return Intent{}, err
	}
	return parseClassification(content)
}

func (g *GroqProvider) SummarizeSearch(ctx context.Context, query string, snippets []string) (string, error) {
	user := fmt.Sprintf("Question: %s\n\n%s", query, strings.Join(snippets, "\n\n"))
	return g.chat(ctx, summarizerSystemPrompt, user)
}

func (g *GroqProvider) AnswerShort(ctx context.Context, prompt string) (string, error) {
	return g.chat(ctx, assistantSystemPrompt, prompt)
}

// TTS uses Groq's audio/speech endpoint directly; the OpenAI SDK surface for
// speech does not cover Groq's response shape.
func (g *GroqProvider) TTS(ctx context.Context, text string) ([]byte, error) {
	if g.ttsModel == "" {
		return nil, ErrUnsupported
	}

	body, err := json.Marshal(map[string]string{
		"model":           g.ttsModel,
		"voice":           g.ttsVoice,
		"input":           text,
		"response_format": "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqBaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return io.ReadAll(resp.Body)
}

// parseClassification tolerates models that wrap JSON in code fences.
func parseClassification(content string) (Intent, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw struct {
		CommandID  *string        `json:"command_id"`
		Parameters map[string]any `json:"parameters"`
		Confidence float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Intent{}, fmt.Errorf("unmarshal classification: %w (raw: %s)", err, content)
	}

	out := Intent{Parameters: raw.Parameters, Confidence: raw.Confidence}
	if raw.CommandID != nil {
		out.CommandID = *raw.CommandID
	}
	if out.Parameters == nil {
		out.Parameters = map[string]any{}
	}
	return out, nil
}
