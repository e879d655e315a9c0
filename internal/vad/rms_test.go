package vad

import (
	"testing"

	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/config"
)

func loudFrame() audio.Frame {
	frame := make(audio.Frame, 512)
	for i := range frame {
		frame[i] = 8000
	}
	return frame
}

func quietFrame() audio.Frame {
	return make(audio.Frame, 512)
}

func newTestClassifier() *RMSClassifier {
	return NewRMSClassifier(config.SpeechConfig{
		SilenceThreshold:  0.015,
		SpeechOnsetFrames: 3,
		SilenceExitFrames: 5,
	})
}

func TestOnsetRequiresConsecutiveSpeechFrames(t *testing.T) {
	c := newTestClassifier()
	if c.IsSpeech(loudFrame()) || c.IsSpeech(loudFrame()) {
		t.Fatal("should not report speech before onset count reached")
	}
	if !c.IsSpeech(loudFrame()) {
		t.Fatal("expected speech after three consecutive loud frames")
	}
}

func TestQuietFrameResetsOnsetCount(t *testing.T) {
	c := newTestClassifier()
	c.IsSpeech(loudFrame())
	c.IsSpeech(loudFrame())
	c.IsSpeech(quietFrame())
	if c.IsSpeech(loudFrame()) || c.IsSpeech(loudFrame()) {
		t.Fatal("onset count should restart after a quiet frame")
	}
}

func TestExitRequiresSustainedSilence(t *testing.T) {
	c := newTestClassifier()
	for i := 0; i < 3; i++ {
		c.IsSpeech(loudFrame())
	}
	for i := 0; i < 4; i++ {
		if !c.IsSpeech(quietFrame()) {
			t.Fatalf("still within silence tolerance at frame %d", i)
		}
	}
	if c.IsSpeech(quietFrame()) {
		t.Fatal("expected speech to end after sustained silence")
	}
}

func TestResetClearsState(t *testing.T) {
	c := newTestClassifier()
	for i := 0; i < 3; i++ {
		c.IsSpeech(loudFrame())
	}
	c.Reset()
	if c.IsSpeech(quietFrame()) {
		t.Fatal("expected no speech after reset")
	}
}
