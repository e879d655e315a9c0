package wake

import (
	"testing"

	"github.com/sotto-labs/sotto-core/internal/audio"
)

func frameAt(amplitude int16) audio.Frame {
	frame := make(audio.Frame, 512)
	for i := range frame {
		frame[i] = amplitude
	}
	return frame
}

func warmUp(d *EnergyDetector, amplitude int16) {
	for i := 0; i < warmupFrames; i++ {
		if d.Detect(frameAt(amplitude)) {
			panic("detector fired during warmup")
		}
	}
}

func TestNoFireDuringWarmup(t *testing.T) {
	d := NewEnergyDetector(0.5)
	for i := 0; i < warmupFrames; i++ {
		if d.Detect(frameAt(10000)) {
			t.Fatalf("fired on warmup frame %d", i)
		}
	}
}

func TestSpikeOverQuietAmbientFires(t *testing.T) {
	d := NewEnergyDetector(0.5)
	warmUp(d, 100)
	if !d.Detect(frameAt(10000)) {
		t.Fatal("expected detection on a sharp spike over quiet ambient")
	}
}

func TestSteadyLoudSignalDoesNotFire(t *testing.T) {
	d := NewEnergyDetector(0.5)
	warmUp(d, 8000)
	if d.Detect(frameAt(8000)) {
		t.Fatal("steady loud input should track into ambient, not trigger")
	}
}

func TestCooldownSuppressesRetrigger(t *testing.T) {
	d := NewEnergyDetector(0.5)
	warmUp(d, 100)
	if !d.Detect(frameAt(10000)) {
		t.Fatal("expected initial detection")
	}
	for i := 0; i < cooldownFrames; i++ {
		if d.Detect(frameAt(10000)) {
			t.Fatalf("fired during cooldown at frame %d", i)
		}
	}
}

func TestSilenceNeverFires(t *testing.T) {
	d := NewEnergyDetector(0.9)
	warmUp(d, 0)
	for i := 0; i < 20; i++ {
		if d.Detect(frameAt(0)) {
			t.Fatal("silence must not trigger the detector")
		}
	}
}

func TestInvalidSensitivityFallsBackToDefault(t *testing.T) {
	for _, s := range []float64{0, -1, 1.5} {
		d := NewEnergyDetector(s)
		if d.sensitivity != 0.5 {
			t.Fatalf("sensitivity %v: got %v, want default 0.5", s, d.sensitivity)
		}
	}
}
