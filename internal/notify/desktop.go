package notify

import (
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sotto-labs/sotto-core/internal/config"
)

// DesktopSink shows desktop notifications via notify-send. Calls spawn a
// goroutine per notification so the frame loop never waits on a
// notification daemon.
type DesktopSink struct {
	timeoutMS int
	log       *slog.Logger
}

func NewDesktopSink(cfg config.UIConfig, log *slog.Logger) *DesktopSink {
	return &DesktopSink{timeoutMS: cfg.TimeoutMS, log: log}
}

// sanitizeBody drops quote-style characters. Some notification daemons
// auto-add copy actions for bodies containing quotes or markup; bodies stay
// plain and unquoted. Display-only.
func sanitizeBody(body string) string {
	return strings.Map(func(ch rune) rune {
		switch ch {
		case '"', '\'', '“', '”', '‘', '’', '`':
			return -1
		}
		return ch
	}, body)
}

func (d *DesktopSink) run(args ...string) {
	go func() {
		if err := exec.Command("notify-send", args...).Run(); err != nil {
			d.log.Debug("notify-send failed", "error", err)
		}
	}()
}

func (d *DesktopSink) passiveHints() []string {
	return []string{
		"-h", "string:x-canonical-private-synchronous:sottod-info",
		"-h", "string:category:im.received",
		"-h", "int:transient:1",
		"-t", strconv.Itoa(d.timeoutMS),
	}
}

func (d *DesktopSink) Listening() {
	d.run(append([]string{"sottod", "Listening…"}, "-t", strconv.Itoa(d.timeoutMS))...)
}

func (d *DesktopSink) Transcript(text string) {
	args := append([]string{"sottod", sanitizeBody(text)}, d.passiveHints()...)
	d.run(args...)
}

func (d *DesktopSink) Answer(text, source, browseURL string) {
	body := sanitizeBody(text)
	if source != "" {
		body += "\n\n:source: " + source
	}

	if browseURL == "" {
		args := append([]string{"-u", "normal", "sottod", body}, d.passiveHints()...)
		d.run(args...)
		return
	}

	// With a browse action we must read the selection, so this variant runs
	// notify-send itself and dispatches xdg-open on "open".
	args := append([]string{
		"sottod", body,
		"--action", "open=Open in browser",
		"-u", "normal",
	}, d.passiveHints()...)
	go func() {
		out, err := exec.Command("notify-send", args...).Output()
		if err != nil {
			d.log.Debug("notify-send failed", "error", err)
			return
		}
		if strings.TrimSpace(string(out)) != "open" {
			return
		}
		if err := exec.Command("xdg-open", browseURL).Run(); err != nil {
			d.log.Debug("xdg-open failed", "error", err)
		}
	}()
}

func (d *DesktopSink) ConfirmRequest(requestID string) {
	// The helper writes the chosen token into the confirmation mailbox file
	// keyed by this request id.
	go func() {
		err := exec.Command("sottod-notify-confirm", requestID, "sottod", "Confirm command").Run()
		if err != nil {
			d.log.Debug("confirm helper failed", "request_id", requestID, "error", err)
		}
	}()
}
