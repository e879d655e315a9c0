package tts

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/llm"
)

func testSpeaker(t *testing.T, enabled bool, provider llm.Provider) (*Speaker, chan []byte) {
	t.Helper()
	played := make(chan []byte, 1)
	s := NewSpeaker(config.SpeechOutputConfig{Enabled: enabled}, provider, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.playFn = func(data []byte) error {
		played <- data
		return nil
	}
	return s, played
}

func TestSpeakAsyncPlaysSynthesizedAudio(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.TTSFn = func(string) ([]byte, error) { return []byte("wav-bytes"), nil }
	s, played := testSpeaker(t, true, mock)

	s.SpeakAsync("hello")
	select {
	case data := <-played:
		if string(data) != "wav-bytes" {
			t.Fatalf("played = %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("nothing played")
	}
}

func TestSpeakAsyncDisabledDoesNothing(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.TTSFn = func(string) ([]byte, error) {
		t.Error("provider must not be called when disabled")
		return nil, nil
	}
	s, played := testSpeaker(t, false, mock)

	s.SpeakAsync("hello")
	select {
	case <-played:
		t.Fatal("disabled speaker played audio")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSpeakAsyncSwallowsProviderErrors(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.TTSFn = func(string) ([]byte, error) { return nil, errors.New("boom") }
	s, played := testSpeaker(t, true, mock)

	s.SpeakAsync("hello")
	select {
	case <-played:
		t.Fatal("failed synthesis must not play")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSpeakAsyncUnsupportedIsSilent(t *testing.T) {
	s, played := testSpeaker(t, true, llm.NewMockProvider())
	s.SpeakAsync("hello")
	select {
	case <-played:
		t.Fatal("unsupported tts must not play")
	case <-time.After(50 * time.Millisecond):
	}
}
