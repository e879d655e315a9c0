package wake

import (
	"errors"

	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/config"
)

// Detector reports whether a single frame triggered the wake word. Detection
// is stateless per call from the caller's point of view; implementations may
// keep internal history.
type Detector interface {
	Detect(frame audio.Frame) bool
}

// New builds a detector for the configured mode.
func New(cfg config.WakeConfig) (Detector, error) {
	switch cfg.Mode {
	case "energy":
		return NewEnergyDetector(cfg.Sensitivity), nil
	case "mock":
		return NewMockDetector(), nil
	default:
		return nil, errors.New("unknown wake mode: " + cfg.Mode)
	}
}
