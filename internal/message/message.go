// internal/message/message.go
//
// Support hand-off boundary.
//
// Context
//   A validated enquiry is "processed" by handing it to a Notifier.  The
//   service does not deliver email itself; LogNotifier records the composed
//   message in the structured log so the support desk can pick it up, and a
//   real transport (SMTP relay, queue, ticketing API) can replace it later
//   without touching the handlers.
//
//   Notifier errors never change what the client is told.  The handler logs
//   them and still acknowledges the submission.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yanizio/krishnacabs/internal/logger"
)

// Enquiry is one normalised submission ready for the support desk.
type Enquiry struct {
	FormID    string
	To        []string
	Subject   string
	Text      string
	Fields    map[string]string
	RequestID string

	// Submission is the typed view of Fields (a form.ContactSubmission,
	// form.BookingSubmission, or form.FeedbackSubmission), or nil for forms
	// without one.
	Submission any
}

// Notifier hands an Enquiry to whatever delivers it.
type Notifier interface {
	Notify(ctx context.Context, e Enquiry) error
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, e Enquiry) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, e Enquiry) error { return f(ctx, e) }

// ErrNoRecipient is returned when an Enquiry has nowhere to go.
var ErrNoRecipient = errors.New("enquiry has no recipient")

// LogNotifier writes each Enquiry to a zap logger.  A nil Log falls back to
// the request-scoped logger found in ctx.
type LogNotifier struct {
	Log *zap.SugaredLogger
}

// Notify logs the enquiry payload and returns nil once it has a recipient.
func (n LogNotifier) Notify(ctx context.Context, e Enquiry) error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	l := n.Log
	if l == nil {
		l = logger.FromContext(ctx)
	}
	l.Infow("enquiry queued for support",
		"form", e.FormID,
		"to", e.To,
		"subject", e.Subject,
		"text_len", len(e.Text),
		"request_id", e.RequestID,
		"submission", e.Submission,
	)
	return nil
}
