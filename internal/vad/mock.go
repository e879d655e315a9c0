package vad

import "github.com/sotto-labs/sotto-core/internal/audio"

// MockClassifier returns a scripted sequence of decisions, then false.
type MockClassifier struct {
	script []bool
	pos    int
}

func NewMockClassifier(script ...bool) *MockClassifier {
	return &MockClassifier{script: script}
}

// Script replaces the remaining decisions.
func (m *MockClassifier) Script(decisions ...bool) {
	m.script = decisions
	m.pos = 0
}

func (m *MockClassifier) IsSpeech(_ audio.Frame) bool {
	if m.pos >= len(m.script) {
		return false
	}
	v := m.script[m.pos]
	m.pos++
	return v
}

func (m *MockClassifier) Reset() { m.pos = 0 }
