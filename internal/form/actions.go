// internal/form/actions.go
//
// Forms subsystem: post-validation hand-off.
//
// Context
//   A FormDef lists the actions run once a submission is valid.  Two kinds
//   exist: "log" records the normalised submission, and "notify" composes the
//   support message and hands it to a message.Notifier.  Nothing is stored;
//   the action set is the whole of "processing".
//
//   Action errors are logged and counted but never returned, so a failing
//   hand-off cannot turn an acknowledged submission into an error.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanizio/krishnacabs/internal/logger"
	"github.com/yanizio/krishnacabs/internal/message"
	"github.com/yanizio/krishnacabs/internal/metrics"
)

const (
	actionLog    = "log"
	actionNotify = "notify"
)

// ActionCtx carries request-scoped helpers for action execution.
type ActionCtx struct {
	Ctx       context.Context
	Notifier  message.Notifier
	RequestID string

	// SupportTo receives notify actions that name no "to" of their own.
	SupportTo []string
	// Location is where date fields were validated; typed submissions
	// parse dates in it.
	Location *time.Location
}

// ExecuteActions performs all YAML-declared actions for fd.
func ExecuteActions(fd *FormDef, clean map[string]string, actx ActionCtx) {
	for _, ac := range fd.Actions {
		switch ac.Type {
		case actionLog:
			logger.FromContext(actx.Ctx).Infow("submission processed",
				"form", fd.ID, "fields", len(clean))
		case actionNotify:
			if err := runNotify(fd, ac.Params, clean, actx); err != nil {
				metrics.NotifyErrorsTotal.WithLabelValues(fd.ID).Inc()
				logErr(actx, fd.ID, actionNotify, err)
			}
		default:
			logWarn(actx, fd.ID, ac.Type, "unsupported action")
		}
	}
}

// -----------------------------------------------------------------------------
// Notify action
// -----------------------------------------------------------------------------

func runNotify(fd *FormDef, p map[string]any, clean map[string]string, actx ActionCtx) error {
	if actx.Notifier == nil {
		return fmt.Errorf("no notifier configured")
	}

	to, err := recipients(p["to"], actx.SupportTo)
	if err != nil {
		return err
	}

	typed, err := Decode(Result{FormID: fd.ID, Clean: clean}, actx.Location)
	if err != nil && !errors.Is(err, ErrUnknownForm) {
		return fmt.Errorf("typed submission: %w", err)
	}

	subject, text := Compose(fd, clean)
	return actx.Notifier.Notify(actx.Ctx, message.Enquiry{
		FormID:     fd.ID,
		To:         to,
		Subject:    subject,
		Text:       text,
		Fields:     clean,
		RequestID:  actx.RequestID,
		Submission: typed,
	})
}

// recipients reads the action's "to" parameter (a string or a list) and
// falls back to the support desk when it is absent.
func recipients(param any, fallback []string) ([]string, error) {
	var to []string
	switch v := param.(type) {
	case nil:
		to = fallback
	case string:
		to = []string{v}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				to = append(to, s)
			}
		}
	default:
		return nil, fmt.Errorf("'to' parameter invalid")
	}
	if len(to) == 0 {
		return nil, message.ErrNoRecipient
	}
	return to, nil
}

// -----------------------------------------------------------------------------
// Logging helpers
// -----------------------------------------------------------------------------

func logErr(actx ActionCtx, formID, action string, err error) {
	logger.FromContext(actx.Ctx).Errorw(
		"form action failed",
		"form", formID, "action", action, "error", err.Error(),
	)
}

func logWarn(actx ActionCtx, formID, action, msg string) {
	logger.FromContext(actx.Ctx).Warnw(
		"form action warning",
		"form", formID, "action", action, "warning", msg,
	)
}
