// Package tts speaks answers through the configured LLM provider's speech
// endpoint. Playback is fire-and-forget; failures are logged and swallowed
// because spoken output is never load-bearing.
package tts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	beepwav "github.com/faiface/beep/wav"

	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/llm"
)

type Speaker struct {
	enabled  bool
	provider llm.Provider
	log      *slog.Logger

	initOnce sync.Once
	initErr  error
	playFn   func(data []byte) error
}

func NewSpeaker(cfg config.SpeechOutputConfig, provider llm.Provider, log *slog.Logger) *Speaker {
	s := &Speaker{enabled: cfg.Enabled, provider: provider, log: log}
	s.playFn = s.play
	return s
}

// SpeakAsync synthesizes and plays text on its own goroutine. The caller
// never waits; there is no cancellation once dispatched.
func (s *Speaker) SpeakAsync(text string) {
	if !s.enabled || text == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		data, err := s.provider.TTS(ctx, text)
		if err != nil {
			if errors.Is(err, llm.ErrUnsupported) {
				s.log.Debug("tts not supported by provider")
			} else {
				s.log.Warn("tts synthesis failed", "error", err)
			}
			return
		}
		if err := s.playFn(data); err != nil {
			s.log.Warn("tts playback failed", "error", err)
		}
	}()
}

type nopCloserReader struct{ io.Reader }

func (nopCloserReader) Close() error { return nil }

func (s *Speaker) play(data []byte) error {
	streamer, format, err := beepwav.Decode(nopCloserReader{bytes.NewReader(data)})
	if err != nil {
		return err
	}
	defer streamer.Close()

	s.initOnce.Do(func() {
		s.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if s.initErr != nil {
		return s.initErr
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
