package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/sotto-labs/sotto-core/internal/config"
)

// execRecognizer shells out to an external transcriber that reads a WAV file
// and prints a JSON result on stdout.
type execRecognizer struct {
	cmd []string
	cfg config.ASRConfig
	mu  sync.Mutex
}

type execResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

func NewExecRecognizer(cfg config.ASRConfig) (Recognizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse asr command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("asr command is empty")
	}
	return &execRecognizer{cmd: args, cfg: cfg}, nil
}

func (r *execRecognizer) Transcribe(ctx context.Context, samples []int16, sampleRate int) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.CreateTemp(os.TempDir(), "sotto_asr_*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if err := writeSamplesToWav(file, samples, sampleRate); err != nil {
		return Result{}, err
	}

	args := append([]string{}, r.cmd...)
	base := args[0]
	cmdArgs := append(args[1:], "--audio", file.Name())
	if r.cfg.ModelPath != "" {
		cmdArgs = append(cmdArgs, "--model", r.cfg.ModelPath)
	}
	if r.cfg.Language != "" {
		cmdArgs = append(cmdArgs, "--language", r.cfg.Language)
	}

	command := exec.CommandContext(ctx, base, cmdArgs...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return Result{}, fmt.Errorf("asr command failed: %w: %s", err, stderr.String())
	}

	var resp execResult
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{}, fmt.Errorf("decode asr response: %w", err)
	}
	if resp.Error != "" {
		return Result{}, fmt.Errorf("asr worker error: %s", resp.Error)
	}
	return Result{Text: resp.Text, Confidence: resp.Confidence}, nil
}

func writeSamplesToWav(file *os.File, samples []int16, sampleRate int) error {
	buffer := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, len(samples)),
	}
	for i, s := range samples {
		buffer.Data[i] = int(s)
	}

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
