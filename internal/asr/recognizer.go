package asr

import (
	"context"
	"errors"

	"github.com/sotto-labs/sotto-core/internal/config"
)

// Result captures recognizer output for one utterance.
type Result struct {
	Text       string
	Confidence float64
}

// Recognizer abstracts speech-to-text backends. Errors are recoverable: the
// caller logs them and discards the utterance.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []int16, sampleRate int) (Result, error)
}

// New builds a recognizer for the configured mode.
func New(cfg config.ASRConfig) (Recognizer, error) {
	switch cfg.Mode {
	case "mock":
		return NewMockRecognizer(), nil
	case "exec":
		return NewExecRecognizer(cfg)
	case "whisper":
		return NewWhisperRecognizer(cfg)
	default:
		return nil, errors.New("unknown asr mode: " + cfg.Mode)
	}
}
