// Package notify delivers fire-and-forget presentation events. Sinks never
// block the caller and never surface delivery failures beyond a log line.
package notify

// Sink is the presentation contract. All methods are dispatch-and-forget.
type Sink interface {
	Listening()
	Transcript(text string)
	Answer(text, source, browseURL string)
	ConfirmRequest(requestID string)
}

// NoopSink discards everything.
type NoopSink struct{}

func (NoopSink) Listening()                  {}
func (NoopSink) Transcript(string)           {}
func (NoopSink) Answer(string, string, string) {}
func (NoopSink) ConfirmRequest(string)       {}

// Fanout delivers every event to each member sink in order.
type Fanout []Sink

func (f Fanout) Listening() {
	for _, s := range f {
		s.Listening()
	}
}

func (f Fanout) Transcript(text string) {
	for _, s := range f {
		s.Transcript(text)
	}
}

func (f Fanout) Answer(text, source, browseURL string) {
	for _, s := range f {
		s.Answer(text, source, browseURL)
	}
}

func (f Fanout) ConfirmRequest(requestID string) {
	for _, s := range f {
		s.ConfirmRequest(requestID)
	}
}
