package llm

import (
	"context"
	"errors"
	"os"

	"github.com/sotto-labs/sotto-core/internal/config"
)

// ErrUnsupported marks a capability a provider does not implement, as opposed
// to a transient failure. Callers currently treat both the same way.
var ErrUnsupported = errors.New("capability not supported by provider")

// CommandSpec is the slice of the command table a classifier prompt needs.
type CommandSpec struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Intent is a fallback classification result. It is advisory only: the
// decision path never executes a command on its say-so.
type Intent struct {
	CommandID  string
	Parameters map[string]any
	Confidence float64
}

// Provider is the language-model capability set, selected once at startup.
type Provider interface {
	ClassifyIntent(ctx context.Context, text string, commands []CommandSpec) (Intent, error)
	SummarizeSearch(ctx context.Context, query string, snippets []string) (string, error)
	AnswerShort(ctx context.Context, prompt string) (string, error)
	TTS(ctx context.Context, text string) ([]byte, error)
}

// New builds the configured provider. API keys come from the environment so
// they never land in config files.
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "groq":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, errors.New("missing GROQ_API_KEY")
		}
		return NewGroqProvider(key, cfg), nil
	case "mistral":
		key := os.Getenv("MISTRAL_API_KEY")
		if key == "" {
			return nil, errors.New("missing MISTRAL_API_KEY")
		}
		return NewMistralProvider(key, cfg), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, errors.New("unknown llm provider: " + cfg.Provider)
	}
}

const assistantSystemPrompt = "You are a helpful voice assistant named Sotto. " +
	"Answer the user's question concisely in one or two sentences. " +
	"Avoid markdown; output plain text only."

const classifierSystemPrompt = "You are an intent classifier. Return ONLY a JSON object " +
	"with keys: command_id, parameters, confidence. Choose the best matching command_id " +
	"from the provided list or null if none. No markdown, no explanations."

const summarizerSystemPrompt = "Summarize the following answer into a few concise " +
	"sentences suitable for speech. Return only the sentences."
