package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/llm"
)

// RoutedIntent is the classification result for one transcript. CommandID and
// DeterministicScore come only from the allow-list scorer; the advisory fields
// carry the LLM fallback opinion and must never drive execution.
type RoutedIntent struct {
	CommandID          string
	Parameters         map[string]any
	DeterministicScore float64
	Dangerous          bool

	AdvisoryCommandID  string
	AdvisoryConfidence float64
}

// Router scores transcripts against the command allow-list.
type Router struct {
	commands []Command
	byID     map[string]Command
	fallback float64
	provider llm.Provider
	log      *slog.Logger
}

func NewRouter(commands []Command, cfg config.IntentConfig, provider llm.Provider, log *slog.Logger) *Router {
	byID := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		byID[cmd.ID] = cmd
	}
	return &Router{
		commands: commands,
		byID:     byID,
		fallback: cfg.LLMFallbackThreshold,
		provider: provider,
		log:      log,
	}
}

// Lookup returns the allow-list entry for a command id.
func (r *Router) Lookup(id string) (Command, bool) {
	cmd, ok := r.byID[id]
	return cmd, ok
}

// Route classifies one transcript. A phrase match scores highest, keyword
// overlap scores proportionally. When the deterministic scorer finds nothing
// and a provider is configured, the LLM fallback runs for the advisory fields.
func (r *Router) Route(ctx context.Context, text string) RoutedIntent {
	norm := normalizeText(text)
	out := RoutedIntent{Parameters: map[string]any{}}

	var best Command
	var bestScore float64
	for _, cmd := range r.commands {
		if score := scoreCommand(cmd, norm); score > bestScore {
			best, bestScore = cmd, score
		}
	}
	if bestScore > 0 {
		out.CommandID = best.ID
		out.DeterministicScore = bestScore
		out.Dangerous = best.Dangerous
	}

	if bestScore < r.fallback && r.provider != nil {
		r.classifyAdvisory(ctx, text, &out)
	}
	return out
}

func (r *Router) classifyAdvisory(ctx context.Context, text string, out *RoutedIntent) {
	specs := make([]llm.CommandSpec, 0, len(r.commands))
	for _, cmd := range r.commands {
		specs = append(specs, llm.CommandSpec{ID: cmd.ID, Description: cmd.Description})
	}
	guess, err := r.provider.ClassifyIntent(ctx, text, specs)
	if err != nil {
		r.log.Debug("llm intent fallback failed", "error", err)
		return
	}
	if _, known := r.byID[guess.CommandID]; !known {
		return
	}
	out.AdvisoryCommandID = guess.CommandID
	out.AdvisoryConfidence = guess.Confidence
	if len(guess.Parameters) > 0 && len(out.Parameters) == 0 {
		out.Parameters = guess.Parameters
	}
}

func scoreCommand(cmd Command, norm string) float64 {
	if norm == "" {
		return 0
	}
	for _, phrase := range cmd.Phrases {
		p := normalizeText(phrase)
		if p == "" {
			continue
		}
		if p == norm {
			return 1.0
		}
		if strings.Contains(norm, p) {
			return 0.9
		}
	}
	if len(cmd.Keywords) == 0 {
		return 0
	}
	words := make(map[string]struct{})
	for _, w := range strings.Fields(norm) {
		words[w] = struct{}{}
	}
	matched := 0
	for _, kw := range cmd.Keywords {
		if _, ok := words[normalizeText(kw)]; ok {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return 0.85 * float64(matched) / float64(len(cmd.Keywords))
}

func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch + ('a' - 'A'))
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == ' ', ch == '\t', ch == '\n':
			b.WriteRune(ch)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
