package asr

import (
	"context"
	"errors"
)

// MockRecognizer returns scripted transcripts in order; useful in tests and
// as a no-hardware default mode.
type MockRecognizer struct {
	results []Result
	errs    []error
	pos     int
}

func NewMockRecognizer() *MockRecognizer { return &MockRecognizer{} }

// Queue appends a scripted result.
func (m *MockRecognizer) Queue(text string, confidence float64) {
	m.results = append(m.results, Result{Text: text, Confidence: confidence})
	m.errs = append(m.errs, nil)
}

// QueueError appends a scripted failure.
func (m *MockRecognizer) QueueError(msg string) {
	m.results = append(m.results, Result{})
	m.errs = append(m.errs, errors.New(msg))
}

func (m *MockRecognizer) Transcribe(ctx context.Context, samples []int16, sampleRate int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(samples) == 0 {
		return Result{}, errors.New("no samples")
	}
	if m.pos >= len(m.results) {
		return Result{}, nil
	}
	res, err := m.results[m.pos], m.errs[m.pos]
	m.pos++
	return res, err
}
