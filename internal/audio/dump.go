package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DumpWAV writes recorded samples to dir as a timestamped mono WAV file and
// returns the written path. Used for debugging captured utterances.
func DumpWAV(dir string, samples []int16, sampleRate int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dump dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("sottod-%d.wav", time.Now().UnixMilli()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dump file: %w", err)
	}
	defer file.Close()

	buffer := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, len(samples)),
	}
	for i, s := range samples {
		buffer.Data[i] = int(s)
	}

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return "", fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("close wav encoder: %w", err)
	}
	return path, nil
}
