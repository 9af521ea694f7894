// internal/dispatch/mailto.go
//
// Legacy mail-link delivery.  The submission is rendered with form.Compose,
// packed into a mailto: URI, and handed to an Opener (the browser, a
// desktop helper, or a terminal printer).  Nothing confirms the mail was
// sent, so the outcome is always Drafted.

package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/yanizio/krishnacabs/internal/form"
)

const fallbackMailto = "Your email client should have opened with your message pre-filled. Please send the email to complete your request."

// Opener hands a mailto: URI to something that can open it.
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, uri string) error

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, uri string) error { return f(ctx, uri) }

// WriterOpener prints the URI on its own line.
type WriterOpener struct{ W io.Writer }

// Open writes uri to W.
func (o WriterOpener) Open(_ context.Context, uri string) error {
	_, err := fmt.Fprintln(o.W, uri)
	return err
}

// MailLinkStrategy builds a mail draft addressed to To.
type MailLinkStrategy struct {
	To     string
	Opener Opener
}

// Deliver implements Strategy.
func (s MailLinkStrategy) Deliver(ctx context.Context, fd *form.FormDef, clean map[string]string) (Delivery, error) {
	if s.To == "" {
		return Delivery{}, fmt.Errorf("mail link for %s: no recipient", fd.ID)
	}
	if s.Opener == nil {
		return Delivery{}, fmt.Errorf("mail link for %s: no opener", fd.ID)
	}

	subject, body := form.Compose(fd, clean)
	if err := s.Opener.Open(ctx, BuildMailto(s.To, subject, body)); err != nil {
		return Delivery{}, fmt.Errorf("open mail link: %w", err)
	}

	msg := fd.Messages.Mailto
	if msg == "" {
		msg = fallbackMailto
	}
	return Delivery{Success: true, Message: msg, Confirmed: false}, nil
}

// BuildMailto returns mailto:<to>?subject=…&body=… with both parts
// percent-encoded and spaces written as %20.
func BuildMailto(to, subject, body string) string {
	return "mailto:" + to + "?subject=" + encode(subject) + "&body=" + encode(body)
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
