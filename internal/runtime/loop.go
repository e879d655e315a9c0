package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sotto-labs/sotto-core/internal/asr"
	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/confirm"
	"github.com/sotto-labs/sotto-core/internal/decision"
	"github.com/sotto-labs/sotto-core/internal/eventstore"
	"github.com/sotto-labs/sotto-core/internal/executor"
	"github.com/sotto-labs/sotto-core/internal/intent"
	"github.com/sotto-labs/sotto-core/internal/listen"
	"github.com/sotto-labs/sotto-core/internal/llm"
	"github.com/sotto-labs/sotto-core/internal/notify"
	"github.com/sotto-labs/sotto-core/internal/search"
	"github.com/sotto-labs/sotto-core/internal/tts"
)

// errFrameSourceClosed terminates the whole daemon: a dead capture stream is
// not something the loop can recover from.
var errFrameSourceClosed = errors.New("audio frame source closed")

// loop is the single-threaded frame consumer. Everything that mutates the
// executor or the state machine runs here; background answer tasks only
// present results through fire-and-forget sinks.
type loop struct {
	cfg        config.Config
	machine    *listen.Machine
	recognizer asr.Recognizer
	router     *intent.Router
	exec       *executor.Executor
	channel    confirm.Channel
	sink       notify.Sink
	speaker    *tts.Speaker
	workflow   *search.Workflow
	provider   llm.Provider
	store      *eventstore.Store
	metrics    *metrics
	log        *slog.Logger

	sampleRate int

	// notifiedRequestID dedups the confirmation notification: one per
	// pending request id, re-sent only for a new request.
	notifiedRequestID string
}

func (l *loop) run(ctx context.Context, frames <-chan audio.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return errFrameSourceClosed
			}
			now := time.Now()

			// Ticks are serviced on every frame regardless of listen state
			// so confirmation expiry is bounded by the frame interval.
			if status := l.exec.Tick(now); status == executor.StatusExpired {
				l.metrics.Confirmation(ctx, "expired")
				l.notifiedRequestID = ""
			}
			l.pollConfirmation(ctx)

			samples, ready := l.machine.OnFrame(frame, now)
			if ready {
				l.handleUtterance(ctx, samples)
			}
		}
	}
}

// pollConfirmation drives the out-of-process confirmation mailbox while a
// command is pending, and raises the confirmation notification exactly once
// per request id.
func (l *loop) pollConfirmation(ctx context.Context) {
	requestID, ok := l.exec.PendingRequestID()
	if !ok {
		l.notifiedRequestID = ""
		return
	}

	token, ok := l.channel.TryReceive(requestID)
	if !ok {
		if l.notifiedRequestID != requestID {
			l.notifiedRequestID = requestID
			l.sink.ConfirmRequest(requestID)
		}
		return
	}

	switch strings.ToLower(token) {
	case "yes":
		l.log.Info("confirmed via mailbox", "request_id", requestID)
		if _, err := l.exec.Confirm(); err != nil {
			l.log.Warn("confirmed command failed", "error", err)
		}
		l.metrics.Confirmation(ctx, "confirm")
	case "no":
		l.log.Info("canceled via mailbox", "request_id", requestID)
		l.exec.Cancel("user canceled")
		l.metrics.Confirmation(ctx, "cancel")
	default:
		l.log.Debug("ignoring unknown mailbox token", "token", token)
		return
	}
	l.channel.Clear(requestID)
	l.notifiedRequestID = ""
}

func (l *loop) handleUtterance(ctx context.Context, samples []int16) {
	utteranceID := uuid.NewString()
	l.metrics.Utterance(ctx)

	if dir := l.cfg.Audio.DebugDumpDir; dir != "" {
		if path, err := audio.DumpWAV(dir, samples, l.sampleRate); err != nil {
			l.log.Warn("debug audio dump failed", "error", err)
		} else {
			l.log.Debug("debug audio dumped", "path", path)
		}
	}

	result, err := l.recognizer.Transcribe(ctx, samples, l.sampleRate)
	if err != nil {
		l.log.Warn("asr failed, discarding utterance", "error", err)
		return
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		l.log.Debug("empty transcript, discarding utterance")
		return
	}

	l.log.Info("transcript", "utterance_id", utteranceID, "text", text, "confidence", result.Confidence)
	l.sink.Transcript(text)
	l.recordUtterance(ctx, utteranceID, text)

	hasPending := l.exec.HasPending()
	var routed intent.RoutedIntent
	if !hasPending {
		routed = l.router.Route(ctx, text)
	}

	d := decision.Decide(text, hasPending, routed, l.cfg.Intent.DeterministicThreshold)
	l.recordDecision(ctx, utteranceID, d)

	switch d.Kind {
	case decision.KindIgnore:
		l.log.Debug("ignored while confirmation pending", "utterance_id", utteranceID)

	case decision.KindConfirm:
		l.log.Info("confirmed via voice", "utterance_id", utteranceID)
		if _, err := l.exec.Confirm(); err != nil {
			l.log.Warn("confirmed command failed", "error", err)
		}
		l.metrics.Confirmation(ctx, "confirm")
		l.notifiedRequestID = ""

	case decision.KindCancel:
		l.log.Info("canceled via voice", "utterance_id", utteranceID)
		l.exec.Cancel("user canceled")
		l.metrics.Confirmation(ctx, "cancel")
		l.notifiedRequestID = ""

	case decision.KindCommand:
		l.metrics.Command(ctx)
		status, err := l.exec.Route(d.Intent)
		if err != nil {
			l.log.Warn("command routing failed", "command", d.Intent.CommandID, "error", err)
			return
		}
		l.log.Info("command routed", "command", d.Intent.CommandID, "status", status.String())

	case decision.KindQuestion:
		l.metrics.Question(ctx)
		l.handleQuestion(utteranceID, text)
	}
}

func (l *loop) handleQuestion(utteranceID, question string) {
	if l.cfg.Search.Enabled {
		l.log.Info("question, dispatching search workflow", "question", question)
		l.workflow.Run(utteranceID, question)
		return
	}

	// Search disabled: direct short answer, off the frame loop.
	l.log.Info("question, asking provider directly", "question", question)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.Search.Timeout())
		defer cancel()

		answer, err := l.provider.AnswerShort(ctx, question)
		if err != nil || strings.TrimSpace(answer) == "" {
			l.log.Warn("direct answer failed", "error", err)
			answer = "I don't know."
		}
		l.presentAnswer(utteranceID, answer, search.SourceKnowledge, "")
	}()
}

// presentAnswer is the shared presentation sink for both answer paths. It is
// safe to call from background goroutines.
func (l *loop) presentAnswer(utteranceID, text, source, browseURL string) {
	l.sink.Answer(text, source, browseURL)
	l.speaker.SpeakAsync(text)
	l.recordAnswer(context.Background(), utteranceID, text, source)
}

func (l *loop) recordUtterance(ctx context.Context, utteranceID, text string) {
	if l.store == nil {
		return
	}
	if err := l.store.AppendUtterance(ctx, utteranceID); err != nil {
		l.log.Warn("event store append failed", "error", err)
		return
	}
	payload, _ := json.Marshal(map[string]string{"text": text})
	if err := l.store.AppendEvent(ctx, eventstore.Event{
		UtteranceID: utteranceID,
		Type:        eventstore.TypeUtterance,
		Payload:     payload,
	}); err != nil {
		l.log.Warn("event store append failed", "error", err)
	}
}

func (l *loop) recordAnswer(ctx context.Context, utteranceID, text, source string) {
	if l.store == nil || utteranceID == "" {
		return
	}
	payload, _ := json.Marshal(map[string]string{"text": text, "source": source})
	if err := l.store.AppendEvent(ctx, eventstore.Event{
		UtteranceID: utteranceID,
		Type:        eventstore.TypeAnswer,
		Payload:     payload,
	}); err != nil {
		l.log.Warn("event store append failed", "error", err)
	}
}

func (l *loop) recordDecision(ctx context.Context, utteranceID string, d decision.Decision) {
	if l.store == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"kind":       d.Kind.String(),
		"command_id": d.Intent.CommandID,
		"score":      d.Intent.DeterministicScore,
	})
	if err := l.store.AppendEvent(ctx, eventstore.Event{
		UtteranceID: utteranceID,
		Type:        eventstore.TypeDecision,
		Payload:     payload,
	}); err != nil {
		l.log.Warn("event store append failed", "error", err)
	}
}
