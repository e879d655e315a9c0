package wake

import "github.com/sotto-labs/sotto-core/internal/audio"

// EnergyDetector is a model-free fallback trigger: it fires on a sharp energy
// spike relative to the rolling ambient level. A real keyword model plugs in
// behind the same Detector interface.
type EnergyDetector struct {
	sensitivity float64
	ambient     float64
	warmed      int
	cooldown    int
}

const (
	// ambientAlpha controls how fast the rolling ambient level adapts.
	ambientAlpha = 0.05
	// warmupFrames must elapse before the detector may fire at all.
	warmupFrames = 25
	// cooldownFrames suppresses retriggering right after a detection.
	cooldownFrames = 50
)

func NewEnergyDetector(sensitivity float64) *EnergyDetector {
	if sensitivity <= 0 || sensitivity > 1 {
		sensitivity = 0.5
	}
	return &EnergyDetector{sensitivity: sensitivity}
}

func (d *EnergyDetector) Detect(frame audio.Frame) bool {
	level := audio.RMS(frame)

	if d.cooldown > 0 {
		d.cooldown--
		d.ambient += ambientAlpha * (level - d.ambient)
		return false
	}

	if d.warmed < warmupFrames {
		d.warmed++
		d.ambient += ambientAlpha * (level - d.ambient)
		return false
	}

	// Higher sensitivity lowers the spike ratio required to fire.
	ratio := 8.0 - 6.0*d.sensitivity
	floor := 0.02 * (1.0 - d.sensitivity/2)
	fired := level > floor && d.ambient > 0 && level/d.ambient >= ratio

	d.ambient += ambientAlpha * (level - d.ambient)
	if fired {
		d.cooldown = cooldownFrames
	}
	return fired
}
