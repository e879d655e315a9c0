// Package search implements the two-stage answer workflow: answer from
// static knowledge when the model is certain, otherwise escalate to a web
// search and compose strictly from the retrieved facts.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/llm"
)

// Sentinel is the exact string the knowledge-check prompt demands when the
// model cannot answer confidently. Matching is exact after trimming; vague
// disclaimers do not count.
const Sentinel = "I do not have enough up-to-date information to answer this."

const (
	OfflineMessage = "No internet connection. Cannot fetch web results."
	ApologyMessage = "I couldn't find reliable information."

	SourceKnowledge = "knowledge"
	SourceSearch    = "search"
)

// KnownOrUnknown is the knowledge-check outcome. Known carries the answer
// text; Unknown carries nothing.
type KnownOrUnknown struct {
	Known  bool
	Answer string
}

// Present delivers one finished answer for the utterance that asked the
// question. BrowseURL is set only for search-sourced answers.
type Present func(utteranceID, text, source, browseURL string)

type Workflow struct {
	cfg      config.SearchConfig
	provider llm.Provider
	searcher Searcher
	present  Present
	log      *slog.Logger

	probe func(time.Duration) bool
}

func NewWorkflow(cfg config.SearchConfig, provider llm.Provider, searcher Searcher, present Present, log *slog.Logger) *Workflow {
	return &Workflow{
		cfg:      cfg,
		provider: provider,
		searcher: searcher,
		present:  present,
		log:      log,
		probe:    HasInternet,
	}
}

// Run answers one question on its own goroutine so the frame loop never
// waits on network latency. Each question gets an independent task; there is
// no coalescing and no cancellation once dispatched.
func (w *Workflow) Run(utteranceID, question string) {
	if !w.cfg.Enabled {
		return
	}
	go w.answer(utteranceID, question)
}

func (w *Workflow) answer(utteranceID, question string) {
	if !w.probe(w.cfg.ProbeTimeout()) {
		w.log.Info("offline, skipping search", "question", question)
		w.present(utteranceID, OfflineMessage, SourceSearch, "")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout())
	defer cancel()

	checked, err := w.CheckKnowledge(ctx, question)
	if err == nil && checked.Known {
		w.present(utteranceID, checked.Answer, SourceKnowledge, "")
		return
	}

	var answer string
	if err == nil {
		answer, err = w.escalate(ctx, question)
	}
	if err != nil {
		w.log.Warn("search workflow failed", "question", question, "error", err)
		w.present(utteranceID, ApologyMessage, SourceSearch, "")
		return
	}
	w.present(utteranceID, answer, SourceSearch, googleURL(question))
}

// CheckKnowledge runs the strict knowledge-check stage. The exact sentinel
// reply means Unknown; so does an empty reply, because silence is not
// knowledge. Anything else is accepted verbatim as the answer.
func (w *Workflow) CheckKnowledge(ctx context.Context, question string) (KnownOrUnknown, error) {
	out, err := w.provider.AnswerShort(ctx, knowledgePrompt(question))
	if err != nil {
		return KnownOrUnknown{}, err
	}
	ans := strings.TrimSpace(out)
	if ans == Sentinel || ans == "" {
		return KnownOrUnknown{}, nil
	}
	return KnownOrUnknown{Known: true, Answer: ans}, nil
}

func (w *Workflow) escalate(ctx context.Context, question string) (string, error) {
	results, err := w.searcher.Search(ctx, question)
	if err != nil {
		return "", err
	}
	facts, err := FactsBlock(results)
	if err != nil {
		return "", err
	}

	answer, err := w.provider.AnswerShort(ctx, composePrompt(question, facts))
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("empty composed answer")
	}
	return answer, nil
}

func knowledgePrompt(question string) string {
	return fmt.Sprintf("You are a voice assistant named Sotto.\n\n"+
		"Answer the user ONLY IF you are certain the answer is:\n"+
		"- Not time-sensitive\n"+
		"- Not dependent on real-time data\n"+
		"- Not dependent on events after your training cutoff\n"+
		"- Not dependent on current news, stock prices, sports results, weather, or recent events\n\n"+
		"If you can answer confidently from static knowledge, give the answer.\n\n"+
		"If you cannot answer confidently, respond with EXACTLY this sentence and nothing else:\n\n"+
		"%q\n\n"+
		"User question:\n%s\n\n"+
		"Important: Never mention knowledge cutoff, training data, or that you are an AI language model.",
		Sentinel, question)
}

func composePrompt(question, facts string) string {
	return fmt.Sprintf("User question:\n%s\n\n"+
		"Retrieved web information:\n%s\n\n"+
		"Answer the question clearly and concisely using ONLY the information above.\n"+
		"If the information is insufficient or contradictory, say \"I don't know.\"\n\n"+
		"Important: Never mention knowledge cutoff, training data, or that you are an AI language model.",
		question, facts)
}

func googleURL(question string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(question)
}
