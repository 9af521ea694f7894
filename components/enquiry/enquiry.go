// components/enquiry/enquiry.go
//
// Enquiry Component – the submission endpoints.
//
// Context
//   POST /api/contact, /api/booking, and /api/feedback accept one JSON
//   object, validate it under the server profile, hand the normalised
//   submission to the support notifier, and answer with {success, message}.
//   GET /api/forms/{id} publishes the form definition so browser clients
//   validate with the very rules the server enforces.
//
// States
//   received → validated → processed → acknowledged
//   received → validation_failed → error_returned
//   Each transition is logged through the request-scoped logger, so every
//   line carries the request ID.  Field-level detail goes to the log only;
//   clients get the form's generic message.
package enquiry

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/krishnacabs/internal/component"
	"github.com/yanizio/krishnacabs/internal/form"
	"github.com/yanizio/krishnacabs/internal/logger"
	"github.com/yanizio/krishnacabs/internal/message"
	"github.com/yanizio/krishnacabs/internal/metrics"
	"github.com/yanizio/krishnacabs/internal/middleware"
	"github.com/yanizio/krishnacabs/internal/requestinfo"
)

// Forms served by this component, in route order.
var Forms = []string{"contact", "booking", "feedback"}

const (
	stateReceived      = "received"
	stateAcknowledged  = "acknowledged"
	stateErrorReturned = "error_returned"

	fallbackInvalid = "Invalid form data. Please check your inputs."
	fallbackFailure = "There was an error processing your request. Please try again."
	notFound        = "Form not found."
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	validator *form.Validator
	notifier  message.Notifier
	supportTo []string
	maxBody   int64
	now       func() time.Time
}

func (c *Comp) Name() string { return "enquiry" }

// Init captures the shared services.  Missing ones fall back to a strict
// validator, the log notifier, and the wall clock.
func (c *Comp) Init(d component.Deps) error {
	c.validator = d.Validator
	if c.validator == nil {
		c.validator = form.NewValidator(form.Strict)
	}
	c.notifier = d.Notifier
	if c.notifier == nil {
		c.notifier = message.LogNotifier{}
	}
	c.supportTo = d.SupportTo
	c.maxBody = d.MaxBodyBytes
	c.now = d.Now
	if c.now == nil {
		c.now = time.Now
	}
	return nil
}

func (c *Comp) Routes(r chi.Router) {
	for _, id := range Forms {
		r.Post("/api/"+id, c.submit(id))
	}
	r.Get("/api/forms/{id}", c.schema)
}

/*──────────────────────────── handlers ─────────────────────────────────────*/

func (c *Comp) submit(formID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := c.now()
		defer func() {
			metrics.SubmissionDuration.WithLabelValues(formID).Observe(c.now().Sub(start).Seconds())
		}()

		log := logger.FromContext(r.Context()).With("form", formID)
		if ri := requestinfo.FromContext(r.Context()); ri != nil {
			log = log.With(ri.LogFields()...)
		}
		log.Infow("submission state", "state", stateReceived)

		_, err := form.HandleSubmit(formID, r, form.SubmitOptions{
			Validator:    c.validator,
			Notifier:     c.notifier,
			SupportTo:    c.supportTo,
			MaxBodyBytes: c.maxBody,
			RequestID:    middleware.GetRequestID(r.Context()),
			OnState: func(state string, detail map[string]string) {
				if state == form.StateValidationFailed {
					log.Warnw("submission state", "state", state, "fields", detail)
					return
				}
				log.Infow("submission state", "state", state)
			},
		})

		msgs := messagesFor(formID)
		if err != nil {
			status, outcome, msg := classify(err, msgs)
			c.reject(log, formID, err, outcome)
			log.Infow("submission state", "state", stateErrorReturned, "status", status)
			component.WriteEnvelope(w, r, status, false, msg)
			return
		}

		metrics.SubmissionsTotal.WithLabelValues(formID, metrics.OutcomeAccepted).Inc()
		log.Infow("submission state", "state", stateAcknowledged)
		component.WriteEnvelope(w, r, http.StatusOK, true, msgs.Success)
	}
}

func (c *Comp) schema(w http.ResponseWriter, r *http.Request) {
	fd, ok := form.GetFormDef(chi.URLParam(r, "id"))
	if !ok {
		component.WriteEnvelope(w, r, http.StatusNotFound, false, notFound)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	component.WriteJSON(w, r, http.StatusOK, fd)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// classify maps a submit error onto status, metric outcome, and client text.
func classify(err error, msgs form.FormMessages) (int, string, string) {
	invalid := msgs.Invalid
	if invalid == "" {
		invalid = fallbackInvalid
	}
	failure := msgs.Failure
	if failure == "" {
		failure = fallbackFailure
	}

	switch {
	case form.IsValidationError(err):
		return http.StatusBadRequest, metrics.OutcomeInvalid, invalid
	case errors.Is(err, form.ErrMalformedBody), errors.Is(err, form.ErrUnknownForm):
		return http.StatusBadRequest, metrics.OutcomeRejected, invalid
	default:
		return http.StatusInternalServerError, metrics.OutcomeRejected, failure
	}
}

func (c *Comp) reject(log *zap.SugaredLogger, formID string, err error, outcome string) {
	metrics.SubmissionsTotal.WithLabelValues(formID, outcome).Inc()

	var ve form.ValidationError
	if errors.As(err, &ve) {
		for _, f := range ve.FieldNames() {
			metrics.ValidationFailuresTotal.WithLabelValues(formID, f).Inc()
		}
		return
	}
	log.Warnw("submission rejected", "err", err)
}

func messagesFor(formID string) form.FormMessages {
	if fd, ok := form.GetFormDef(formID); ok {
		return fd.Messages
	}
	return form.FormMessages{}
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}
