package decision

import (
	"testing"

	"github.com/sotto-labs/sotto-core/internal/intent"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Yes", "yes"},
		{"  Yes!! ", "yes"},
		{"Do   it.", "do it"},
		{"DELETE, all;\tfiles", "delete all files"},
		{"???", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPendingAcceptsAffirmatives(t *testing.T) {
	for _, in := range []string{"yes", "Confirm!", "do it"} {
		d := Decide(in, true, intent.RoutedIntent{}, 0.8)
		if d.Kind != KindConfirm {
			t.Errorf("Decide(%q) = %v, want confirm", in, d.Kind)
		}
	}
}

func TestPendingAcceptsNegatives(t *testing.T) {
	for _, in := range []string{"no", "CANCEL", "stop."} {
		d := Decide(in, true, intent.RoutedIntent{}, 0.8)
		if d.Kind != KindCancel {
			t.Errorf("Decide(%q) = %v, want cancel", in, d.Kind)
		}
	}
}

func TestPendingIgnoresEverythingElse(t *testing.T) {
	routed := intent.RoutedIntent{CommandID: "lights_off", DeterministicScore: 1.0}
	for _, in := range []string{"banana", "yes please", "turn off the lights", ""} {
		d := Decide(in, true, routed, 0.8)
		if d.Kind != KindIgnore {
			t.Errorf("Decide(%q) while pending = %v, want ignore", in, d.Kind)
		}
	}
}

func TestCommandGateRequiresThreshold(t *testing.T) {
	routed := intent.RoutedIntent{CommandID: "lights_off", DeterministicScore: 0.92}
	d := Decide("turn off the lights", false, routed, 0.8)
	if d.Kind != KindCommand {
		t.Fatalf("kind = %v, want command", d.Kind)
	}
	if d.Intent.CommandID != "lights_off" {
		t.Fatalf("intent = %+v", d.Intent)
	}

	routed.DeterministicScore = 0.5
	d = Decide("turn off the lights", false, routed, 0.8)
	if d.Kind != KindQuestion {
		t.Fatalf("kind = %v, want question", d.Kind)
	}
}

func TestAdvisoryOpinionNeverMakesACommand(t *testing.T) {
	routed := intent.RoutedIntent{
		AdvisoryCommandID:  "wipe_downloads",
		AdvisoryConfidence: 0.99,
	}
	d := Decide("tidy things up", false, routed, 0.8)
	if d.Kind != KindQuestion {
		t.Fatalf("kind = %v, want question", d.Kind)
	}
}

func TestNoCommandIDIsAlwaysQuestion(t *testing.T) {
	d := Decide("who won the race yesterday", false, intent.RoutedIntent{DeterministicScore: 0.95}, 0.8)
	if d.Kind != KindQuestion {
		t.Fatalf("kind = %v, want question", d.Kind)
	}
}
