package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/sotto-labs/sotto-core/internal/config"
)

// whisperRecognizer runs whisper.cpp in-process through its Go bindings.
// The model expects mono float32 samples at 16kHz.
type whisperRecognizer struct {
	model    whisper.Model
	language string
	mu       sync.Mutex
}

func NewWhisperRecognizer(cfg config.ASRConfig) (Recognizer, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("whisper model path is empty")
	}
	model, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	lang := cfg.Language
	if lang == "" {
		lang = "auto"
	}
	return &whisperRecognizer{model: model, language: lang}, nil
}

func (r *whisperRecognizer) Transcribe(ctx context.Context, samples []int16, sampleRate int) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(samples) == 0 {
		return Result{}, errors.New("no samples")
	}
	if sampleRate != whisper.SampleRate {
		return Result{}, fmt.Errorf("whisper requires %d Hz input, got %d", whisper.SampleRate, sampleRate)
	}

	pcm := make([]float32, len(samples))
	for i, s := range samples {
		pcm[i] = float32(s) / 32768.0
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new whisper context: %w", err)
	}
	if err := wctx.SetLanguage(r.language); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}
		parts = append(parts, strings.TrimSpace(seg.Text))
	}

	return Result{Text: strings.Join(parts, " ")}, nil
}
