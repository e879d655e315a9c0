package notify

import (
	"encoding/json"
	"time"

	"github.com/sotto-labs/sotto-core/internal/bus"
	"github.com/sotto-labs/sotto-core/internal/protocol"
)

// BusSink publishes presentation events as protocol messages over NATS so
// external UIs can subscribe instead of depending on a desktop session.
type BusSink struct {
	client *bus.Client
}

func NewBusSink(client *bus.Client) *BusSink {
	return &BusSink{client: client}
}

func (b *BusSink) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.client.Logger().Warn("marshal notify event", "subject", subject, "error", err)
		return
	}
	if err := b.client.Conn().Publish(subject, data); err != nil {
		b.client.Logger().Warn("publish notify event", "subject", subject, "error", err)
	}
}

func (b *BusSink) Listening() {
	b.publish(protocol.SubjectListening, protocol.ListeningEvent{Timestamp: time.Now()})
}

func (b *BusSink) Transcript(text string) {
	b.publish(protocol.SubjectTranscript, protocol.Transcript{Text: text, Timestamp: time.Now()})
}

func (b *BusSink) Answer(text, source, browseURL string) {
	b.publish(protocol.SubjectAnswer, protocol.Answer{
		Text:      text,
		Source:    source,
		BrowseURL: browseURL,
		Timestamp: time.Now(),
	})
}

func (b *BusSink) ConfirmRequest(requestID string) {
	b.publish(protocol.SubjectConfirmRequest, protocol.ConfirmRequest{
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
