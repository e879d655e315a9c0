package intent

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/llm"
)

func testCommands() []Command {
	return []Command{
		{
			ID:       "lights_off",
			Phrases:  []string{"turn off the lights"},
			Keywords: []string{"lights", "off"},
			Exec:     "lightctl off",
		},
		{
			ID:        "wipe_downloads",
			Phrases:   []string{"delete all files"},
			Keywords:  []string{"delete", "files"},
			Exec:      "rm -rf /tmp/downloads",
			Dangerous: true,
		},
	}
}

func testRouter(t *testing.T, provider llm.Provider) *Router {
	t.Helper()
	cfg := config.Default().Intent
	return NewRouter(testCommands(), cfg, provider, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestLoadCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.json")
	body := `{"commands":[{"id":"lights_off","phrases":["turn off the lights"],"exec":"lightctl off"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cmds, err := LoadCommands(path)
	if err != nil {
		t.Fatalf("LoadCommands: %v", err)
	}
	if len(cmds) != 1 || cmds[0].ID != "lights_off" {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
}

func TestParseCommandsRejectsDuplicates(t *testing.T) {
	body := `{"commands":[
		{"id":"a","phrases":["x"],"exec":"true"},
		{"id":"a","phrases":["y"],"exec":"true"}
	]}`
	if _, err := ParseCommands([]byte(body)); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestParseCommandsRejectsMissingExec(t *testing.T) {
	body := `{"commands":[{"id":"a","phrases":["x"]}]}`
	if _, err := ParseCommands([]byte(body)); err == nil {
		t.Fatal("expected missing exec error")
	}
}

func TestRouteExactPhrase(t *testing.T) {
	r := testRouter(t, nil)
	routed := r.Route(context.Background(), "Turn off the lights!")
	if routed.CommandID != "lights_off" {
		t.Fatalf("command id = %q", routed.CommandID)
	}
	if routed.DeterministicScore != 1.0 {
		t.Fatalf("score = %v, want 1.0", routed.DeterministicScore)
	}
	if routed.Dangerous {
		t.Fatal("lights_off must not be dangerous")
	}
}

func TestRouteCarriesDangerousFlag(t *testing.T) {
	r := testRouter(t, nil)
	routed := r.Route(context.Background(), "delete all files")
	if routed.CommandID != "wipe_downloads" || !routed.Dangerous {
		t.Fatalf("routed = %+v", routed)
	}
}

func TestRoutePartialKeywordsScoreLow(t *testing.T) {
	r := testRouter(t, nil)
	routed := r.Route(context.Background(), "the lights look nice")
	if routed.CommandID != "lights_off" {
		t.Fatalf("command id = %q", routed.CommandID)
	}
	if routed.DeterministicScore >= 0.8 {
		t.Fatalf("score = %v, want below threshold", routed.DeterministicScore)
	}
}

func TestRouteNoMatch(t *testing.T) {
	r := testRouter(t, nil)
	routed := r.Route(context.Background(), "what is the weather")
	if routed.CommandID != "" || routed.DeterministicScore != 0 {
		t.Fatalf("routed = %+v", routed)
	}
}

func TestFallbackIsAdvisoryOnly(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.ClassifyFn = func(string, []llm.CommandSpec) (llm.Intent, error) {
		return llm.Intent{CommandID: "wipe_downloads", Confidence: 0.99}, nil
	}
	r := testRouter(t, mock)

	routed := r.Route(context.Background(), "please tidy things up")
	if routed.CommandID != "" {
		t.Fatalf("fallback set CommandID = %q", routed.CommandID)
	}
	if routed.AdvisoryCommandID != "wipe_downloads" {
		t.Fatalf("advisory id = %q", routed.AdvisoryCommandID)
	}
}

func TestFallbackIgnoresUnknownCommandIDs(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.ClassifyFn = func(string, []llm.CommandSpec) (llm.Intent, error) {
		return llm.Intent{CommandID: "made_up", Confidence: 0.99}, nil
	}
	r := testRouter(t, mock)

	routed := r.Route(context.Background(), "please tidy things up")
	if routed.AdvisoryCommandID != "" {
		t.Fatalf("advisory id = %q, want empty", routed.AdvisoryCommandID)
	}
}
