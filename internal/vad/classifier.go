package vad

import (
	"errors"

	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/config"
)

// Classifier reports whether a frame contains speech.
type Classifier interface {
	IsSpeech(frame audio.Frame) bool
	Reset()
}

// New builds a classifier for the configured mode.
func New(cfg config.SpeechConfig) (Classifier, error) {
	switch cfg.VADMode {
	case "rms":
		return NewRMSClassifier(cfg), nil
	case "mock":
		return NewMockClassifier(), nil
	default:
		return nil, errors.New("unknown vad mode: " + cfg.VADMode)
	}
}
