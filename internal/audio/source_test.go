package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestRMSSilence(t *testing.T) {
	frame := make(Frame, 512)
	if got := RMS(frame); got != 0 {
		t.Fatalf("expected 0 RMS for silence, got %v", got)
	}
}

func TestRMSFullScale(t *testing.T) {
	frame := make(Frame, 512)
	for i := range frame {
		frame[i] = math.MaxInt16
	}
	if got := RMS(frame); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected RMS 1.0 for full-scale signal, got %v", got)
	}
}

func TestRMSEmptyFrame(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("expected 0 RMS for empty frame, got %v", got)
	}
}

func TestDumpWAV(t *testing.T) {
	dir := t.TempDir()
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i % 100)
	}
	path, err := DumpWAV(dir, samples, 16000)
	if err != nil {
		t.Fatalf("dump wav: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected dump in %s, got %s", dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat dump: %v", err)
	}
	if info.Size() <= 44 {
		t.Fatalf("expected wav payload beyond header, got %d bytes", info.Size())
	}
}
