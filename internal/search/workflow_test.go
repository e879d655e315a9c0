package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/llm"
)

type stubSearcher struct {
	results []Result
	err     error
	calls   int
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]Result, error) {
	s.calls++
	s.queries = append(s.queries, query)
	return s.results, s.err
}

type presented struct {
	text, source, browseURL string
	count                   int
}

func testWorkflow(t *testing.T, provider llm.Provider, searcher Searcher, online bool) (*Workflow, *presented) {
	t.Helper()
	cfg := config.Default().Search
	cfg.Enabled = true

	p := &presented{}
	w := NewWorkflow(cfg, provider, searcher, func(_, text, source, browseURL string) {
		p.text, p.source, p.browseURL = text, source, browseURL
		p.count++
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.probe = func(time.Duration) bool { return online }
	return w, p
}

func TestKnowledgeCheckSentinelIsUnknown(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(string) (string, error) { return Sentinel, nil }
	w, _ := testWorkflow(t, mock, &stubSearcher{}, true)

	out, err := w.CheckKnowledge(context.Background(), "who won f1 2025")
	if err != nil {
		t.Fatal(err)
	}
	if out.Known {
		t.Fatal("sentinel reply must be Unknown")
	}
}

func TestKnowledgeCheckVagueDisclaimerIsKnown(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(string) (string, error) { return "I don't have real-time data", nil }
	w, _ := testWorkflow(t, mock, &stubSearcher{}, true)

	out, err := w.CheckKnowledge(context.Background(), "today's weather")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Known || out.Answer != "I don't have real-time data" {
		t.Fatalf("out = %+v", out)
	}
}

func TestKnowledgeCheckEmptyReplyIsUnknown(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(string) (string, error) { return "  \n", nil }
	w, _ := testWorkflow(t, mock, &stubSearcher{}, true)

	out, err := w.CheckKnowledge(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if out.Known {
		t.Fatal("empty reply must be Unknown")
	}
}

func TestOfflineShortCircuit(t *testing.T) {
	mock := llm.NewMockProvider()
	searcher := &stubSearcher{}
	w, p := testWorkflow(t, mock, searcher, false)

	w.answer("utt1", "who won the race yesterday")

	if p.text != OfflineMessage {
		t.Fatalf("text = %q", p.text)
	}
	if searcher.calls != 0 {
		t.Fatal("searcher must not be called while offline")
	}
	if len(mock.Prompts) != 0 {
		t.Fatal("provider must not be called while offline")
	}
}

func TestKnownAnswerSkipsSearch(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(string) (string, error) { return "Paris is the capital of France.", nil }
	searcher := &stubSearcher{}
	w, p := testWorkflow(t, mock, searcher, true)

	w.answer("utt1", "capital of france")

	if p.source != SourceKnowledge {
		t.Fatalf("source = %q", p.source)
	}
	if p.text != "Paris is the capital of France." {
		t.Fatalf("text = %q", p.text)
	}
	if p.browseURL != "" {
		t.Fatalf("knowledge answers carry no browse url, got %q", p.browseURL)
	}
	if searcher.calls != 0 {
		t.Fatal("searcher must not be called on Known")
	}
}

func TestUnknownEscalatesToSearchAndComposesFromFacts(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(prompt string) (string, error) {
		if strings.Contains(prompt, "Retrieved web information:") {
			return "The winner was Verstappen.", nil
		}
		return Sentinel, nil
	}
	searcher := &stubSearcher{results: []Result{
		{Title: "Race report", URL: "https://example.com/report", Content: "Verstappen won."},
		{Title: "Standings", URL: "https://example.com/standings", Content: "Full table."},
	}}
	w, p := testWorkflow(t, mock, searcher, true)

	w.answer("utt1", "who won the race yesterday")

	if searcher.calls != 1 {
		t.Fatalf("searcher calls = %d", searcher.calls)
	}
	if p.source != SourceSearch {
		t.Fatalf("source = %q", p.source)
	}
	if p.text != "The winner was Verstappen." {
		t.Fatalf("text = %q", p.text)
	}
	if !strings.Contains(p.browseURL, "google.com/search?q=") {
		t.Fatalf("browse url = %q", p.browseURL)
	}

	if len(mock.Prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(mock.Prompts))
	}
	compose := mock.Prompts[1]
	if !strings.Contains(compose, "Race report — https://example.com/report\nVerstappen won.") {
		t.Fatalf("compose prompt missing facts block:\n%s", compose)
	}
	if compose == mock.Prompts[0] {
		t.Fatal("compose prompt must differ from the knowledge-check prompt")
	}
}

func TestSearchFailureApologizes(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(string) (string, error) { return Sentinel, nil }
	searcher := &stubSearcher{err: errors.New("boom")}
	w, p := testWorkflow(t, mock, searcher, true)

	w.answer("utt1", "who won")

	if p.text != ApologyMessage {
		t.Fatalf("text = %q", p.text)
	}
	if p.source != SourceSearch {
		t.Fatalf("source = %q", p.source)
	}
}

func TestEmptyComposedAnswerIsAnError(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AnswerFn = func(prompt string) (string, error) {
		if strings.Contains(prompt, "Retrieved web information:") {
			return "", nil
		}
		return Sentinel, nil
	}
	searcher := &stubSearcher{results: []Result{{Title: "t", URL: "u", Content: "c"}}}
	w, p := testWorkflow(t, mock, searcher, true)

	w.answer("utt1", "who won")

	if p.text != ApologyMessage {
		t.Fatalf("empty composed answer must apologize, got %q", p.text)
	}
}

func TestFactsBlock(t *testing.T) {
	facts, err := FactsBlock([]Result{
		{Title: "A", URL: "https://a", Content: "alpha"},
		{Content: "bare content"},
		{},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "A — https://a\nalpha\n\nbare content"
	if facts != want {
		t.Fatalf("facts = %q, want %q", facts, want)
	}

	if _, err := FactsBlock(nil); err == nil {
		t.Fatal("empty results must be an error")
	}
}

func TestRunDisabledDoesNothing(t *testing.T) {
	mock := llm.NewMockProvider()
	w, p := testWorkflow(t, mock, &stubSearcher{}, true)
	w.cfg.Enabled = false

	w.Run("utt1", "anything")
	time.Sleep(10 * time.Millisecond)
	if p.count != 0 {
		t.Fatal("disabled workflow must not present")
	}
}
