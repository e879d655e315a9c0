package llm

import "context"

// MockProvider returns scripted responses for tests and offline runs.
type MockProvider struct {
	ClassifyFn  func(text string, commands []CommandSpec) (Intent, error)
	SummarizeFn func(query string, snippets []string) (string, error)
	AnswerFn    func(prompt string) (string, error)
	TTSFn       func(text string) ([]byte, error)

	// Prompts records every AnswerShort prompt, newest last.
	Prompts []string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) ClassifyIntent(_ context.Context, text string, commands []CommandSpec) (Intent, error) {
	if m.ClassifyFn != nil {
		return m.ClassifyFn(text, commands)
	}
	return Intent{Parameters: map[string]any{}}, nil
}

func (m *MockProvider) SummarizeSearch(_ context.Context, query string, snippets []string) (string, error) {
	if m.SummarizeFn != nil {
		return m.SummarizeFn(query, snippets)
	}
	return "summary of " + query, nil
}

func (m *MockProvider) AnswerShort(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.AnswerFn != nil {
		return m.AnswerFn(prompt)
	}
	return "mock answer", nil
}

func (m *MockProvider) TTS(_ context.Context, text string) ([]byte, error) {
	if m.TTSFn != nil {
		return m.TTSFn(text)
	}
	return nil, ErrUnsupported
}
