package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Intent.DeterministicThreshold != 0.8 {
		t.Fatalf("expected default deterministic threshold, got %v", cfg.Intent.DeterministicThreshold)
	}
	if cfg.Speech.SilenceDurationMS != 900 {
		t.Fatalf("expected default silence duration, got %d", cfg.Speech.SilenceDurationMS)
	}
	if cfg.Execution.ConfirmChannel != "file" {
		t.Fatalf("expected default confirm channel 'file', got %q", cfg.Execution.ConfirmChannel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SOTTO_INTENT_DETERMINISTIC_THRESHOLD", "0.9")
	t.Setenv("SOTTO_SPEECH_SILENCE_DURATION_MS", "1200")
	t.Setenv("SOTTO_SPEECH_MAX_UTTERANCE_SECONDS", "8.5")
	t.Setenv("SOTTO_EXECUTION_CONFIRMATION_TIMEOUT_SECONDS", "30")
	t.Setenv("SOTTO_EXECUTION_DRY_RUN", "true")
	t.Setenv("SOTTO_LLM_PROVIDER", "mistral")
	t.Setenv("SOTTO_SEARCH_ENABLED", "false")
	t.Setenv("SOTTO_BUS_SERVERS", "nats://one:4222, nats://two:4222")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Intent.DeterministicThreshold != 0.9 {
		t.Fatalf("expected threshold override, got %v", cfg.Intent.DeterministicThreshold)
	}
	if cfg.Speech.SilenceDurationMS != 1200 {
		t.Fatalf("expected silence duration override, got %d", cfg.Speech.SilenceDurationMS)
	}
	if cfg.Speech.MaxUtteranceSecs != 8.5 {
		t.Fatalf("expected max utterance override, got %v", cfg.Speech.MaxUtteranceSecs)
	}
	if cfg.Execution.ConfirmationTimeoutSecs != 30 || !cfg.Execution.DryRun {
		t.Fatalf("expected execution overrides, got %+v", cfg.Execution)
	}
	if cfg.LLM.Provider != "mistral" {
		t.Fatalf("expected provider override, got %q", cfg.LLM.Provider)
	}
	if cfg.Search.Enabled {
		t.Fatal("expected search disabled")
	}
	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "watson"
	if err := validate(cfg); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestValidateRejectsBusMailboxWithoutBus(t *testing.T) {
	cfg := Default()
	cfg.Execution.ConfirmChannel = "bus"
	cfg.Bus.Enabled = false
	if err := validate(cfg); err == nil {
		t.Fatal("expected validation error for bus mailbox without bus")
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	if cfg.Speech.SilenceDuration().Milliseconds() != 900 {
		t.Fatalf("unexpected silence duration: %v", cfg.Speech.SilenceDuration())
	}
	if cfg.Execution.ConfirmationTimeout().Seconds() != 15 {
		t.Fatalf("unexpected confirmation timeout: %v", cfg.Execution.ConfirmationTimeout())
	}
}
