// Package executor owns the single pending dangerous command. All mutation
// happens from the runtime's consumer loop, so no locking is needed.
package executor

import (
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/google/uuid"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/sotto-labs/sotto-core/internal/intent"
)

type Status int

const (
	StatusExecuted Status = iota
	StatusAwaitingConfirmation
	StatusCanceled
	StatusExpired
	StatusNoop
	// StatusBusy is returned when a command is routed while another one is
	// still awaiting confirmation. The existing pending wins.
	StatusBusy
)

func (s Status) String() string {
	switch s {
	case StatusExecuted:
		return "executed"
	case StatusAwaitingConfirmation:
		return "awaiting_confirmation"
	case StatusCanceled:
		return "canceled"
	case StatusExpired:
		return "expired"
	case StatusNoop:
		return "noop"
	case StatusBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// PendingConfirmation holds the one dangerous command waiting for a yes/no.
type PendingConfirmation struct {
	RequestID string
	Intent    intent.RoutedIntent
	CreatedAt time.Time
	Timeout   time.Duration
}

// Lookup resolves a command id to its allow-list entry.
type Lookup func(id string) (intent.Command, bool)

type Executor struct {
	lookup  Lookup
	timeout time.Duration
	dryRun  bool
	log     *slog.Logger

	pending *PendingConfirmation
	nowFn   func() time.Time
	runFn   func(cmd intent.Command) error
}

func New(lookup Lookup, timeout time.Duration, dryRun bool, log *slog.Logger) *Executor {
	e := &Executor{
		lookup:  lookup,
		timeout: timeout,
		dryRun:  dryRun,
		log:     log,
		nowFn:   time.Now,
	}
	e.runFn = e.runCommand
	return e
}

// WithClock overrides the wall clock, for tests.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.nowFn = now
	return e
}

func (e *Executor) HasPending() bool { return e.pending != nil }

// PendingRequestID returns the current pending request id, if any.
func (e *Executor) PendingRequestID() (string, bool) {
	if e.pending == nil {
		return "", false
	}
	return e.pending.RequestID, true
}

// Route accepts one gated intent. Dangerous intents become the pending
// confirmation; anything else executes immediately. Routing while a pending
// exists never replaces it.
func (e *Executor) Route(ri intent.RoutedIntent) (Status, error) {
	if e.pending != nil {
		e.log.Warn("route while confirmation pending", "request_id", e.pending.RequestID, "command", ri.CommandID)
		return StatusBusy, nil
	}

	cmd, ok := e.lookup(ri.CommandID)
	if !ok {
		return StatusNoop, fmt.Errorf("unknown command id %q", ri.CommandID)
	}

	if ri.Dangerous {
		e.pending = &PendingConfirmation{
			RequestID: uuid.NewString(),
			Intent:    ri,
			CreatedAt: e.nowFn(),
			Timeout:   e.timeout,
		}
		e.log.Info("command awaiting confirmation", "command", cmd.ID, "request_id", e.pending.RequestID)
		return StatusAwaitingConfirmation, nil
	}

	if err := e.runFn(cmd); err != nil {
		return StatusNoop, err
	}
	return StatusExecuted, nil
}

// Tick expires the pending confirmation once its deadline passes. Expiry
// never executes the command. Callers invoke this once per frame so expiry
// latency is bounded by the frame interval.
func (e *Executor) Tick(now time.Time) Status {
	if e.pending == nil {
		return StatusNoop
	}
	if now.Sub(e.pending.CreatedAt) < e.pending.Timeout {
		return StatusNoop
	}
	e.log.Info("confirmation expired", "request_id", e.pending.RequestID, "command", e.pending.Intent.CommandID)
	e.pending = nil
	return StatusExpired
}

// Confirm executes the pending command and clears it. A confirm with nothing
// pending is reported, not fatal.
func (e *Executor) Confirm() (Status, error) {
	if e.pending == nil {
		e.log.Debug("confirm with nothing pending")
		return StatusNoop, nil
	}
	cmd, ok := e.lookup(e.pending.Intent.CommandID)
	e.pending = nil
	if !ok {
		return StatusNoop, fmt.Errorf("pending command no longer in allow-list")
	}
	if err := e.runFn(cmd); err != nil {
		return StatusNoop, err
	}
	return StatusExecuted, nil
}

// Cancel clears the pending command without executing it.
func (e *Executor) Cancel(reason string) Status {
	if e.pending == nil {
		e.log.Debug("cancel with nothing pending")
		return StatusNoop
	}
	e.log.Info("confirmation canceled", "request_id", e.pending.RequestID, "reason", reason)
	e.pending = nil
	return StatusCanceled
}

func (e *Executor) runCommand(cmd intent.Command) error {
	args, err := shellwords.Parse(cmd.Exec)
	if err != nil {
		return fmt.Errorf("parse exec line for %q: %w", cmd.ID, err)
	}
	if len(args) == 0 {
		return fmt.Errorf("empty exec line for %q", cmd.ID)
	}

	if e.dryRun {
		e.log.Info("dry run, not executing", "command", cmd.ID, "argv", args)
		return nil
	}

	c := exec.Command(args[0], args[1:]...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("start %q: %w", cmd.ID, err)
	}
	e.log.Info("command started", "command", cmd.ID, "pid", c.Process.Pid)

	go func() {
		if err := c.Wait(); err != nil {
			e.log.Warn("command exited with error", "command", cmd.ID, "error", err)
		}
	}()
	return nil
}
