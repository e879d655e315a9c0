// Package decision turns a finished transcript into exactly one action.
// The priority order is fixed: a pending confirmation dominates command
// routing, and command routing dominates question answering.
package decision

import (
	"strings"

	"github.com/sotto-labs/sotto-core/internal/intent"
)

type Kind int

const (
	// KindIgnore means the transcript produces no action at all.
	KindIgnore Kind = iota
	KindConfirm
	KindCancel
	KindCommand
	KindQuestion
)

func (k Kind) String() string {
	switch k {
	case KindIgnore:
		return "ignore"
	case KindConfirm:
		return "confirm"
	case KindCancel:
		return "cancel"
	case KindCommand:
		return "command"
	case KindQuestion:
		return "question"
	default:
		return "unknown"
	}
}

type Decision struct {
	Kind   Kind
	Intent intent.RoutedIntent
}

var (
	affirmatives = map[string]struct{}{"yes": {}, "confirm": {}, "do it": {}}
	negatives    = map[string]struct{}{"no": {}, "cancel": {}, "stop": {}}
)

// Decide evaluates one transcript. While a confirmation is pending only an
// exact affirmative or negative gets through; everything else is ignored so
// nothing can interrupt a pending dangerous action. Without a pending
// confirmation the deterministic gate decides command versus question; the
// advisory fallback opinion never promotes a transcript to a command.
func Decide(transcript string, hasPending bool, routed intent.RoutedIntent, threshold float64) Decision {
	if hasPending {
		norm := Normalize(transcript)
		if _, ok := affirmatives[norm]; ok {
			return Decision{Kind: KindConfirm}
		}
		if _, ok := negatives[norm]; ok {
			return Decision{Kind: KindCancel}
		}
		return Decision{Kind: KindIgnore}
	}

	if routed.CommandID != "" && routed.DeterministicScore >= threshold {
		return Decision{Kind: KindCommand, Intent: routed}
	}
	return Decision{Kind: KindQuestion}
}

// Normalize lowercases, drops every character that is not ASCII alphanumeric
// or whitespace, and collapses runs of whitespace to single spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch + ('a' - 'A'))
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == ' ', ch == '\t', ch == '\n', ch == '\r':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
