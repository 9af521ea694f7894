// internal/dispatch/dispatch.go
//
// Client-side submission dispatcher.
//
// Context
//   A Form holds the working values of one enquiry form on the client side,
//   the last set of field errors, and a submitting flag.  Submit validates
//   with the strict profile and, when clean, hands the normalised values to
//   a Strategy: HTTPStrategy posts JSON to the API, MailLinkStrategy opens
//   a pre-filled mail draft.  The flag is an atomic.Bool claimed with
//   CompareAndSwap, so a double click produces exactly one delivery.
//
// Outcomes
//   Blocked    field errors, nothing sent, values kept.
//   Failed     transport or server failure, values kept for a retry.
//   Delivered  acknowledged by the server, values reset.
//   Drafted    mail draft opened, delivery unconfirmed, values reset.
//
//------------------------------------------------------------------------------

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/yanizio/krishnacabs/internal/form"
)

// ErrInFlight is returned by Submit while an earlier Submit is running.
var ErrInFlight = errors.New("submission already in flight")

// ErrUnknownField is returned by Set for names the form does not declare.
var ErrUnknownField = errors.New("unknown field")

const (
	fallbackSuccess = "Thank you! We will contact you shortly."
	fallbackFailure = "There was an error sending your request. Please try again."
)

// Outcome classifies a finished Submit.
type Outcome int

const (
	OutcomeBlocked Outcome = iota
	OutcomeFailed
	OutcomeDelivered
	OutcomeDrafted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBlocked:
		return "blocked"
	case OutcomeFailed:
		return "failed"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDrafted:
		return "drafted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is what the user should be shown after Submit.
type Result struct {
	Outcome Outcome
	Message string            // envelope or fallback text; empty when Blocked
	Errors  map[string]string // field errors when Blocked
	Err     error             // underlying delivery error when Failed
}

// Delivery is a Strategy's report.  Success false inside a nil error means
// the server answered but declined.
type Delivery struct {
	Success   bool
	Message   string
	Confirmed bool // false for mail drafts
}

// Strategy delivers one validated submission.
type Strategy interface {
	Deliver(ctx context.Context, fd *form.FormDef, clean map[string]string) (Delivery, error)
}

// -----------------------------------------------------------------------------
// Form
// -----------------------------------------------------------------------------

// Form is one client-side form instance.  Safe for concurrent use.
type Form struct {
	def       *form.FormDef
	validator *form.Validator
	strategy  Strategy

	mu     sync.Mutex
	values map[string]string
	errors map[string]string

	submitting atomic.Bool
}

// Option customises NewForm.
type Option func(*Form)

// WithValidator replaces the default strict validator, e.g. to pin its
// clock in tests.
func WithValidator(v *form.Validator) Option {
	return func(f *Form) { f.validator = v }
}

// NewForm builds a Form for a registered definition.
func NewForm(formID string, s Strategy, opts ...Option) (*Form, error) {
	fd, ok := form.GetFormDef(formID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", form.ErrUnknownForm, formID)
	}
	return NewFormFromDef(fd, s, opts...), nil
}

// NewFormFromDef builds a Form for fd.
func NewFormFromDef(fd *form.FormDef, s Strategy, opts ...Option) *Form {
	f := &Form{
		def:       fd,
		validator: form.NewValidator(form.Strict),
		strategy:  s,
		values:    make(map[string]string, len(fd.Fields)),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Def returns the form definition.
func (f *Form) Def() *form.FormDef { return f.def }

// Set stores a working value and clears that field's error.
func (f *Form) Set(name, value string) error {
	if _, ok := f.def.Field(name); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, f.def.ID, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	delete(f.errors, name)
	return nil
}

// Values returns a copy of the working values.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.values)
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

// Submitting reports whether a Submit is in flight.
func (f *Form) Submitting() bool { return f.submitting.Load() }

// Submit validates and delivers the working values.  It returns ErrInFlight
// without touching the network when another Submit holds the flag.  Every
// other outcome is reported through Result with a nil error.
func (f *Form) Submit(ctx context.Context) (Result, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return Result{}, ErrInFlight
	}
	defer f.submitting.Store(false)

	res := f.validator.ValidateDef(f.def, f.Values())
	if !res.Valid() {
		f.mu.Lock()
		f.errors = res.Errors
		f.mu.Unlock()
		return Result{Outcome: OutcomeBlocked, Errors: maps.Clone(res.Errors)}, nil
	}

	f.mu.Lock()
	f.errors = nil
	f.mu.Unlock()

	d, err := f.strategy.Deliver(ctx, f.def, res.Clean)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Message: f.failureMessage(""), Err: err}, nil
	}
	if !d.Success {
		return Result{Outcome: OutcomeFailed, Message: f.failureMessage(d.Message)}, nil
	}

	f.reset()
	if !d.Confirmed {
		return Result{Outcome: OutcomeDrafted, Message: f.draftedMessage(d.Message)}, nil
	}
	return Result{Outcome: OutcomeDelivered, Message: f.successMessage(d.Message)}, nil
}

func (f *Form) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = make(map[string]string, len(f.def.Fields))
	f.errors = nil
}

func (f *Form) failureMessage(server string) string {
	switch {
	case server != "":
		return server
	case f.def.Messages.Failure != "":
		return f.def.Messages.Failure
	default:
		return fallbackFailure
	}
}

func (f *Form) successMessage(server string) string {
	switch {
	case server != "":
		return server
	case f.def.Messages.Success != "":
		return f.def.Messages.Success
	default:
		return fallbackSuccess
	}
}

func (f *Form) draftedMessage(s string) string {
	switch {
	case s != "":
		return s
	case f.def.Messages.Mailto != "":
		return f.def.Messages.Mailto
	default:
		return fallbackMailto
	}
}
