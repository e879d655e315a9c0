package notify

import "testing"

func TestSanitizeBody(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`say "hello"`, "say hello"},
		{"it's 'fine'", "its fine"},
		{"“quoted” and ‘more’", "quoted and more"},
		{"back`tick", "backtick"},
		{"plain text stays", "plain text stays"},
	}
	for _, tc := range cases {
		if got := sanitizeBody(tc.in); got != tc.want {
			t.Errorf("sanitizeBody(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type recordingSink struct {
	events []string
}

func (r *recordingSink) Listening()                  { r.events = append(r.events, "listening") }
func (r *recordingSink) Transcript(text string)      { r.events = append(r.events, "transcript:"+text) }
func (r *recordingSink) Answer(text, source, _ string) {
	r.events = append(r.events, "answer:"+source+":"+text)
}
func (r *recordingSink) ConfirmRequest(id string) { r.events = append(r.events, "confirm:"+id) }

func TestFanoutDeliversToAllSinks(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	f := Fanout{a, b}

	f.Listening()
	f.Transcript("hi")
	f.Answer("ans", "knowledge", "")
	f.ConfirmRequest("req1")

	for _, r := range []*recordingSink{a, b} {
		if len(r.events) != 4 {
			t.Fatalf("events = %v", r.events)
		}
		if r.events[2] != "answer:knowledge:ans" {
			t.Fatalf("events = %v", r.events)
		}
	}
}
