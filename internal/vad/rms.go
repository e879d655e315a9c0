package vad

import (
	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/config"
)

// RMSClassifier is an energy-based speech detector with hysteresis: entering
// speech requires a few consecutive loud frames, leaving it requires a longer
// run of quiet ones. The asymmetry avoids flicker at the threshold.
type RMSClassifier struct {
	speechThreshold  float64
	silenceThreshold float64
	onsetFrames      int
	exitFrames       int

	inSpeech     bool
	speechCount  int
	silenceCount int
}

func NewRMSClassifier(cfg config.SpeechConfig) *RMSClassifier {
	onset := cfg.SpeechOnsetFrames
	if onset <= 0 {
		onset = 3
	}
	exit := cfg.SilenceExitFrames
	if exit <= 0 {
		exit = 30
	}
	return &RMSClassifier{
		speechThreshold:  cfg.SilenceThreshold,
		silenceThreshold: cfg.SilenceThreshold / 2,
		onsetFrames:      onset,
		exitFrames:       exit,
	}
}

func (c *RMSClassifier) IsSpeech(frame audio.Frame) bool {
	level := audio.RMS(frame)

	if c.inSpeech {
		if level < c.silenceThreshold {
			c.silenceCount++
			c.speechCount = 0
			if c.silenceCount >= c.exitFrames {
				c.inSpeech = false
				c.silenceCount = 0
			}
		} else {
			c.silenceCount = 0
		}
	} else {
		if level >= c.speechThreshold {
			c.speechCount++
			c.silenceCount = 0
			if c.speechCount >= c.onsetFrames {
				c.inSpeech = true
				c.speechCount = 0
			}
		} else {
			c.speechCount = 0
		}
	}

	return c.inSpeech
}

func (c *RMSClassifier) Reset() {
	c.inSpeech = false
	c.speechCount = 0
	c.silenceCount = 0
}
