package confirm

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/sotto-labs/sotto-core/internal/bus"
	"github.com/sotto-labs/sotto-core/internal/protocol"
)

// BusMailbox receives confirmation replies over NATS. A subscription is set
// up lazily per request id on first poll and torn down on Clear, so the
// mailbox only listens while a confirmation is actually pending.
type BusMailbox struct {
	client *bus.Client

	requestID string
	sub       *nats.Subscription
	tokens    chan string
}

func NewBusMailbox(client *bus.Client) *BusMailbox {
	return &BusMailbox{client: client}
}

func (m *BusMailbox) ensure(requestID string) error {
	if m.sub != nil && m.requestID == requestID {
		return nil
	}
	m.teardown()

	tokens := make(chan string, 1)
	sub, err := m.client.Conn().Subscribe(protocol.ConfirmReplySubject(requestID), func(msg *nats.Msg) {
		var reply protocol.ConfirmReply
		if err := json.Unmarshal(msg.Data, &reply); err != nil {
			return
		}
		if reply.RequestID != requestID {
			return
		}
		select {
		case tokens <- strings.TrimSpace(reply.Token):
		default:
		}
	})
	if err != nil {
		return err
	}

	m.requestID = requestID
	m.sub = sub
	m.tokens = tokens
	return nil
}

func (m *BusMailbox) TryReceive(requestID string) (string, bool) {
	if err := m.ensure(requestID); err != nil {
		m.client.Logger().Warn("confirm subscription failed", "request_id", requestID, "error", err)
		return "", false
	}
	select {
	case token := <-m.tokens:
		if token == "" {
			return "", false
		}
		return token, true
	default:
		return "", false
	}
}

func (m *BusMailbox) Clear(requestID string) {
	if m.requestID != requestID {
		return
	}
	m.teardown()
}

func (m *BusMailbox) teardown() {
	if m.sub != nil {
		_ = m.sub.Unsubscribe()
	}
	m.sub = nil
	m.tokens = nil
	m.requestID = ""
}
