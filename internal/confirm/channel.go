// Package confirm provides the out-of-process confirmation mailbox. While a
// dangerous command is pending, the runtime polls the channel once per frame
// for a single "yes"/"no" token keyed by the pending request id.
package confirm

import (
	"errors"

	"github.com/sotto-labs/sotto-core/internal/bus"
	"github.com/sotto-labs/sotto-core/internal/config"
)

// Channel is the mailbox contract. TryReceive must never block; a received
// token is consumed exactly once.
type Channel interface {
	TryReceive(requestID string) (token string, ok bool)
	Clear(requestID string)
}

// New selects the configured mailbox implementation.
func New(cfg config.ExecutionConfig, natsClient *bus.Client) (Channel, error) {
	switch cfg.ConfirmChannel {
	case "file", "":
		return NewFileMailbox(), nil
	case "bus":
		if natsClient == nil {
			return nil, errors.New("bus confirm channel requires the bus to be enabled")
		}
		return NewBusMailbox(natsClient), nil
	default:
		return nil, errors.New("unknown confirm channel: " + cfg.ConfirmChannel)
	}
}
