// Package crash turns an unexpected failure into a pre-filled bug report:
// it collects the environment, renders the report, keeps a local copy and,
// only if the user agrees, opens the issue page in their browser.
//
// Known limitation: failures in the user's own Django code are handled the
// same way as failures in djdeploy, so tracebacks may contain paths from the
// user's project.
package crash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"
	"djdeploy/internal/prompt"

	"github.com/google/uuid"
)

// Entry summarizes a handled crash for history and notifications.
type Entry struct {
	ReportID   string
	Command    string
	Title      string
	ReportPath string
	Submitted  bool
	CreatedAt  time.Time
}

// Recorder keeps a history of handled crashes.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Notifier tells a team channel about crashes the user chose to file.
type Notifier interface {
	NotifyFiled(ctx context.Context, e Entry) error
}

type Options struct {
	Collector *Collector
	Renderer  *Renderer
	Sink      Sink
	Submitter Submitter
	// Recorder and Notifier are optional.
	Recorder Recorder
	Notifier Notifier
	Now      func() time.Time
}

// Handler runs the crash flow. It holds no per-crash state and no console;
// the console is passed to every call.
type Handler struct {
	opts Options
}

func NewHandler(opts Options) *Handler {
	if opts.Collector == nil {
		opts.Collector = NewCollector(nil, 5*time.Second)
	}
	if opts.Renderer == nil {
		opts.Renderer = DefaultRenderer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{opts: opts}
}

// Outcome is what happened while handling one crash.
type Outcome struct {
	ReportID  string
	Report    Report
	Snapshot  Snapshot
	Path      string
	Submitted bool
	URL       string
}

// Handle runs collect, render, save, ask and (if agreed) submit. The
// latest-release lookup happens after the explanation has been shown.
//
// A template error stops the flow and is returned. A save error is returned
// too, but only after the user has been told and asked, since the report can
// still be filed without a local copy.
func (h *Handler) Handle(ctx context.Context, console prompt.Console, c Context) (Outcome, error) {
	out := Outcome{ReportID: uuid.NewString()}
	logger.Log.Info().Str("command", c.Command).Str("kind", c.Kind).Str("report", out.ReportID).Msg(i18n.T(i18n.MsgLogCrashHandling))

	out.Snapshot = h.opts.Collector.CollectLocal(ctx)

	report, err := h.opts.Renderer.Render(c, out.Snapshot)
	if err != nil {
		logger.Log.Error().Err(err).Msg(i18n.T(i18n.MsgLogTemplateFailed))
		console.Tell(i18n.T(i18n.MsgCrashTemplateFailed, map[string]interface{}{"Command": c.Command, "Error": err}))
		return out, err
	}
	out.Report = report

	path, saveErr := h.opts.Sink.Write(report.Body)
	out.Path = path
	if saveErr != nil {
		logger.Log.Error().Err(saveErr).Msg(i18n.T(i18n.MsgLogReportSaveFailed))
		console.Tell(i18n.T(i18n.MsgCrashSaveFailed, map[string]interface{}{"Command": c.Command, "Error": saveErr}))
	} else {
		console.Tell(i18n.T(i18n.MsgCrashInternalError, map[string]interface{}{"Command": c.Command, "Path": path}))
	}
	// The user has seen the explanation and path; only now may Releases
	// reach out.
	h.opts.Collector.AddLatest(ctx, &out.Snapshot)
	if out.Snapshot.Outdated {
		console.Tell(i18n.T(i18n.MsgCrashOutdated, map[string]interface{}{"Latest": out.Snapshot.LatestVersion}))
	}
	console.Tell(i18n.T(i18n.MsgCrashPrivacyNote))

	submit, askErr := Confirm(console)
	if askErr != nil {
		logger.Log.Warn().Err(askErr).Msg("reading answer failed, not filing")
	}
	if submit {
		out.URL = h.opts.Submitter.Submit(report.Title, report.Body)
		out.Submitted = true
		console.Tell(i18n.T(i18n.MsgCrashBrowserOpened, map[string]interface{}{"Path": path}))
	}

	h.remember(ctx, c, out)
	return out, saveErr
}

func (h *Handler) remember(ctx context.Context, c Context, out Outcome) {
	e := Entry{
		ReportID:   out.ReportID,
		Command:    c.Command,
		Title:      out.Report.Title,
		ReportPath: out.Path,
		Submitted:  out.Submitted,
		CreatedAt:  h.opts.Now(),
	}
	if h.opts.Recorder != nil {
		if err := h.opts.Recorder.Record(ctx, e); err != nil {
			logger.Log.Warn().Err(err).Msg(i18n.T(i18n.MsgLogHistoryWriteFailed))
		}
	}
	if out.Submitted && h.opts.Notifier != nil {
		if err := h.opts.Notifier.NotifyFiled(ctx, e); err != nil {
			logger.Log.Warn().Err(err).Msg(i18n.T(i18n.MsgLogNotifySendFailed))
		}
	}
}

// Refile asks again about a report saved earlier and submits it on yes.
func (h *Handler) Refile(console prompt.Console, title, body string) (bool, string, error) {
	submit, err := Confirm(console)
	if err != nil || !submit {
		return false, "", err
	}
	return true, h.opts.Submitter.Submit(title, body), nil
}

// Error is returned by Guard after a crash was handled, so callers can exit
// non-zero without printing the failure a second time.
type Error struct {
	Context Context
	Outcome Outcome
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s crashed: %s: %s", e.Context.Command, e.Context.Kind, e.Context.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Guard runs fn and hands panics and unexpected errors to Handle. Errors
// marked with Expected, and context cancellation, are returned untouched.
func (h *Handler) Guard(ctx context.Context, console prompt.Console, command string, fn func() error) (err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		c := FromPanic(v, command)
		out, herr := h.Handle(ctx, console, c)
		err = &Error{Context: c, Outcome: out, Err: herr}
	}()

	err = fn()
	if err == nil || IsExpected(err) || errors.Is(err, context.Canceled) {
		return err
	}
	c := NewContext(err, command, "")
	out, herr := h.Handle(ctx, console, c)
	return &Error{Context: c, Outcome: out, Err: errors.Join(err, herr)}
}
