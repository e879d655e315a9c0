package wake

import "github.com/sotto-labs/sotto-core/internal/audio"

// MockDetector never fires on its own; tests arm it explicitly.
type MockDetector struct {
	fireNext bool
}

func NewMockDetector() *MockDetector { return &MockDetector{} }

// FireNext makes the next Detect call report a wake trigger.
func (m *MockDetector) FireNext() { m.fireNext = true }

func (m *MockDetector) Detect(_ audio.Frame) bool {
	fired := m.fireNext
	m.fireNext = false
	return fired
}
