package llm

import "testing"

func TestParseClassificationPlainJSON(t *testing.T) {
	intent, err := parseClassification(`{"command_id":"lights_off","parameters":{"room":"kitchen"},"confidence":0.8}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if intent.CommandID != "lights_off" {
		t.Fatalf("command id: got %q", intent.CommandID)
	}
	if intent.Parameters["room"] != "kitchen" {
		t.Fatalf("parameters: got %v", intent.Parameters)
	}
	if intent.Confidence != 0.8 {
		t.Fatalf("confidence: got %v", intent.Confidence)
	}
}

func TestParseClassificationStripsCodeFence(t *testing.T) {
	intent, err := parseClassification("```json\n{\"command_id\":\"lights_off\",\"confidence\":0.7}\n```")
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if intent.CommandID != "lights_off" || intent.Confidence != 0.7 {
		t.Fatalf("got %+v", intent)
	}
}

func TestParseClassificationNullCommand(t *testing.T) {
	intent, err := parseClassification(`{"command_id":null,"confidence":0.0}`)
	if err != nil {
		t.Fatalf("parse null: %v", err)
	}
	if intent.CommandID != "" {
		t.Fatalf("expected empty command id, got %q", intent.CommandID)
	}
	if intent.Parameters == nil {
		t.Fatal("parameters should default to an empty map")
	}
}

func TestParseClassificationRejectsProse(t *testing.T) {
	if _, err := parseClassification("I think the user wants the lights off."); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}
