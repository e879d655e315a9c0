// Package listen implements the frame-driven listening state machine that
// turns a wake word plus subsequent speech into one recorded utterance.
package listen

import (
	"log/slog"
	"time"

	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/vad"
	"github.com/sotto-labs/sotto-core/internal/wake"
)

type State int

const (
	// StateIdle waits for the wake word.
	StateIdle State = iota
	// StateListening is armed after the wake word, waiting for speech onset.
	StateListening
	// StateRecording accumulates utterance samples.
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateRecording:
		return "recording"
	default:
		return "unknown"
	}
}

const (
	heartbeatInterval = 30 * time.Second
	listeningDebugGap = 2 * time.Second
)

// Machine consumes audio frames and emits finished utterances. It is driven
// from a single goroutine; all state is owned here and cleared on every
// return to idle.
type Machine struct {
	detector   wake.Detector
	classifier vad.Classifier
	cfg        config.SpeechConfig
	frameDur   time.Duration
	log        *slog.Logger
	onWake     func()

	state             State
	samples           []int16
	silence           time.Duration
	startedAt         time.Time
	sawPostWakeSpeech bool

	lastHeartbeat      time.Time
	lastListeningDebug time.Time
}

func New(detector wake.Detector, classifier vad.Classifier, cfg config.SpeechConfig, frameDur time.Duration, log *slog.Logger, onWake func()) *Machine {
	if onWake == nil {
		onWake = func() {}
	}
	return &Machine{
		detector:   detector,
		classifier: classifier,
		cfg:        cfg,
		frameDur:   frameDur,
		log:        log.With(slog.String("component", "listen")),
		onWake:     onWake,
	}
}

func (m *Machine) State() State { return m.state }

// OnFrame advances the state machine by one frame. When a finished utterance
// is available it is returned with ready=true; the machine is already back in
// idle by then.
func (m *Machine) OnFrame(frame audio.Frame, now time.Time) (utterance []int16, ready bool) {
	switch m.state {
	case StateIdle:
		m.heartbeat(now)
		if m.detector.Detect(frame) {
			m.log.Info("wake word detected")
			m.onWake()
			// The triggering frame carries the wake-word tail; it must
			// never reach the utterance buffer.
			m.arm(now)
		}
		return nil, false

	case StateListening:
		// Re-wake while armed discards any partial state and re-notifies.
		if m.detector.Detect(frame) {
			m.log.Info("wake word detected again while armed, re-arming")
			m.onWake()
			m.arm(now)
			return nil, false
		}

		speech := m.speechDecision(frame)
		if now.Sub(m.lastListeningDebug) >= listeningDebugGap {
			m.log.Debug("awaiting speech",
				slog.Float64("rms", audio.RMS(frame)),
				slog.Bool("speech", speech))
			m.lastListeningDebug = now
		}
		if speech {
			m.samples = m.samples[:0]
			m.samples = append(m.samples, frame...)
			m.silence = 0
			m.startedAt = now
			m.sawPostWakeSpeech = true
			m.state = StateRecording
			m.log.Info("speech onset, recording")
		}
		// No timeout here: the user may take arbitrarily long to start
		// speaking, re-wake is the only recovery.
		return nil, false

	case StateRecording:
		m.samples = append(m.samples, frame...)

		if m.speechDecision(frame) {
			m.silence = 0
		} else {
			m.silence += m.frameDur
		}

		elapsed := now.Sub(m.startedAt)
		if m.silence >= m.cfg.SilenceDuration() || elapsed >= m.cfg.MaxUtterance() {
			m.log.Info("recording stopped",
				slog.Int("samples", len(m.samples)),
				slog.Duration("elapsed", elapsed),
				slog.Duration("silence", m.silence))

			if m.sawPostWakeSpeech && len(m.samples) > 0 {
				utterance = make([]int16, len(m.samples))
				copy(utterance, m.samples)
				ready = true
			}
			m.reset()
			return utterance, ready
		}
		return nil, false
	}
	return nil, false
}

// speechDecision is the disjunction of the voice-activity classifier and the
// RMS-energy fallback against the configured silence threshold.
func (m *Machine) speechDecision(frame audio.Frame) bool {
	vadSpeech := m.classifier.IsSpeech(frame)
	rmsSpeech := audio.RMS(frame) >= m.cfg.SilenceThreshold
	return vadSpeech || rmsSpeech
}

func (m *Machine) arm(now time.Time) {
	m.state = StateListening
	m.samples = m.samples[:0]
	m.silence = 0
	m.startedAt = time.Time{}
	m.sawPostWakeSpeech = false
	m.lastListeningDebug = now
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.samples = m.samples[:0]
	m.silence = 0
	m.startedAt = time.Time{}
	m.sawPostWakeSpeech = false
	m.classifier.Reset()
}

func (m *Machine) heartbeat(now time.Time) {
	if m.lastHeartbeat.IsZero() || now.Sub(m.lastHeartbeat) >= heartbeatInterval {
		m.log.Info("listening for wake word")
		m.lastHeartbeat = now
	}
}
