// Package runtime wires the daemon together: capture, state machine,
// decision path, executor, answer workflows, and the ambient HTTP and
// telemetry surface.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sotto-labs/sotto-core/internal/asr"
	"github.com/sotto-labs/sotto-core/internal/audio"
	"github.com/sotto-labs/sotto-core/internal/bus"
	"github.com/sotto-labs/sotto-core/internal/config"
	"github.com/sotto-labs/sotto-core/internal/confirm"
	"github.com/sotto-labs/sotto-core/internal/eventstore"
	"github.com/sotto-labs/sotto-core/internal/executor"
	"github.com/sotto-labs/sotto-core/internal/intent"
	"github.com/sotto-labs/sotto-core/internal/listen"
	"github.com/sotto-labs/sotto-core/internal/llm"
	"github.com/sotto-labs/sotto-core/internal/natsserver"
	"github.com/sotto-labs/sotto-core/internal/notify"
	"github.com/sotto-labs/sotto-core/internal/search"
	"github.com/sotto-labs/sotto-core/internal/tts"
	"github.com/sotto-labs/sotto-core/internal/vad"
	"github.com/sotto-labs/sotto-core/internal/wake"
)

type Runtime struct {
	cfg         config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	tracerClose func(context.Context) error
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

// Start brings the daemon up and blocks until ctx is canceled or the frame
// loop dies. The frame source closing is fatal and tears everything down.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	loopMetrics, err := newMetrics()
	if err != nil {
		return fmt.Errorf("setup metrics: %w", err)
	}

	store, err := eventstore.Open(ctx, r.cfg.EventStore, r.logger)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer store.Close()

	var natsClient *bus.Client
	if r.cfg.Bus.Enabled {
		embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("start embedded bus: %w", err)
		}
		if embedded != nil {
			defer embedded.Shutdown()
		}
		natsClient, err = bus.Connect(r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("connect to bus: %w", err)
		}
		defer natsClient.Close()
	}

	provider, err := llm.New(r.cfg.LLM)
	if err != nil {
		return fmt.Errorf("setup llm provider: %w", err)
	}

	commands, err := intent.LoadCommands(r.cfg.Intent.CommandsPath)
	if err != nil {
		return fmt.Errorf("load commands: %w", err)
	}
	r.logger.Info("commands loaded", slog.Int("count", len(commands)), slog.String("path", r.cfg.Intent.CommandsPath))
	router := intent.NewRouter(commands, r.cfg.Intent, provider, r.logger)

	exec := executor.New(router.Lookup, r.cfg.Execution.ConfirmationTimeout(), r.cfg.Execution.DryRun, r.logger)

	channel, err := confirm.New(r.cfg.Execution, natsClient)
	if err != nil {
		return fmt.Errorf("setup confirm channel: %w", err)
	}

	var sinks notify.Fanout
	if r.cfg.UI.Enabled {
		sinks = append(sinks, notify.NewDesktopSink(r.cfg.UI, r.logger))
	}
	if natsClient != nil {
		sinks = append(sinks, notify.NewBusSink(natsClient))
	}
	var sink notify.Sink = sinks
	if len(sinks) == 0 {
		sink = notify.NoopSink{}
	}

	speaker := tts.NewSpeaker(r.cfg.SpeechOutput, provider, r.logger)

	recognizer, err := asr.New(r.cfg.ASR)
	if err != nil {
		return fmt.Errorf("setup asr: %w", err)
	}

	detector, err := wake.New(r.cfg.Wake)
	if err != nil {
		return fmt.Errorf("setup wake detector: %w", err)
	}
	classifier, err := vad.New(r.cfg.Speech)
	if err != nil {
		return fmt.Errorf("setup vad: %w", err)
	}

	frameDur := time.Duration(float64(r.cfg.Audio.FrameLength) / float64(r.cfg.Audio.SampleRate) * float64(time.Second))
	machine := listen.New(detector, classifier, r.cfg.Speech, frameDur, r.logger, sink.Listening)

	consumer := &loop{
		cfg:        r.cfg,
		machine:    machine,
		recognizer: recognizer,
		router:     router,
		exec:       exec,
		channel:    channel,
		sink:       sink,
		speaker:    speaker,
		provider:   provider,
		store:      store,
		metrics:    loopMetrics,
		log:        r.logger,
		sampleRate: r.cfg.Audio.SampleRate,
	}

	if r.cfg.Search.Enabled {
		searcher := search.NewTavilyClient(os.Getenv("TAVILY_API_KEY"), r.cfg.Search)
		consumer.workflow = search.NewWorkflow(r.cfg.Search, provider, searcher, consumer.presentAnswer, r.logger)
	}

	source := audio.NewCaptureSource(r.cfg.Audio, r.logger)
	frames, err := source.Start()
	if err != nil {
		return fmt.Errorf("start audio capture: %w", err)
	}
	defer source.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if metricHandler != nil {
		mux.Handle("/metrics", metricHandler)
	}

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	loopErr := make(chan error, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		loopErr <- consumer.run(ctx, frames)
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr))

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-loopErr:
		if err != nil && err != context.Canceled {
			r.logger.Error("frame loop failed", slog.String("error", err.Error()))
			runErr = err
		}
	}
	cancel()

	r.logger.Info("runtime stopping")
	r.ready.Store(false)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	source.Close()
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return runErr
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
