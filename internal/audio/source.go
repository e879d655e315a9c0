package audio

import "math"

// Frame is one fixed-length block of signed 16-bit mono samples.
type Frame = []int16

// Source produces a live, ordered stream of fixed-length frames. The returned
// channel is closed when the underlying capture stream ends; consumers must
// treat that as fatal.
type Source interface {
	Start() (<-chan Frame, error)
	Close() error
	SampleRate() int
	FrameLength() int
}

// RMS returns the root-mean-square energy of a frame normalized to [0,1].
func RMS(frame Frame) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range frame {
		v := float64(s)
		sumSq += v * v
	}
	return math.Sqrt(sumSq/float64(len(frame))) / float64(math.MaxInt16)
}
