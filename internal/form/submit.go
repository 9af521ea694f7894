// internal/form/submit.go
//
// Forms subsystem: consolidated Submit helper.
//
// Context
//   Most handlers want one call that: reads the JSON body, validates input,
//   executes configured actions, and returns the clean map or a
//   ValidationError.  HandleSubmit provides that convenience so component
//   code stays terse.
//
//   Request bodies are untrusted.  Anything that is not one JSON object of
//   scalar values (string, number, boolean, null) is rejected with
//   ErrMalformedBody before a single rule runs.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/yanizio/krishnacabs/internal/message"
)

// DefaultMaxBodyBytes caps a submission body when no limit is configured.
const DefaultMaxBodyBytes int64 = 64 << 10

// ErrMalformedBody is returned for bodies that are not a JSON object of
// scalars, or that exceed the size limit.
var ErrMalformedBody = errors.New("malformed submission body")

// ValidationError carries the per-field messages of a failed submission.
type ValidationError struct {
	FormID string
	Fields map[string]string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("form %s: validation failed on %d field(s)", ve.FormID, len(ve.Fields))
}

// FieldNames returns the failing field names in sorted order.
func (ve ValidationError) FieldNames() []string {
	out := make([]string, 0, len(ve.Fields))
	for k := range ve.Fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsValidationError reports whether err came from a failed validation.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// SubmitOptions configures HandleSubmit.
type SubmitOptions struct {
	Validator    *Validator
	Notifier     message.Notifier
	MaxBodyBytes int64 // 0 means DefaultMaxBodyBytes
	RequestID    string
	SupportTo    []string // notify recipients when an action names none

	// OnState, when set, is called at each transition: "validated" or
	// "validation_failed", then "processed" after the actions ran.
	OnState func(state string, detail map[string]string)
}

// Submission states reported through SubmitOptions.OnState.
const (
	StateValidated        = "validated"
	StateValidationFailed = "validation_failed"
	StateProcessed        = "processed"
)

// HandleSubmit decodes r, validates against formID, executes the form's
// actions, and returns the normalised data.  On validation failure it
// returns a ValidationError (check with IsValidationError).  Unknown forms
// return ErrUnknownForm and bad bodies ErrMalformedBody.
func HandleSubmit(formID string, r *http.Request, opts SubmitOptions) (map[string]string, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}

	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	values, err := DecodeBody(http.MaxBytesReader(nil, r.Body, limit))
	if err != nil {
		return nil, err
	}

	v := opts.Validator
	if v == nil {
		v = NewValidator(Strict)
	}
	res := v.ValidateDef(fd, values)
	if !res.Valid() {
		opts.state(StateValidationFailed, res.Errors)
		return nil, ValidationError{FormID: fd.ID, Fields: res.Errors}
	}
	opts.state(StateValidated, nil)

	ExecuteActions(fd, res.Clean, ActionCtx{
		Ctx:       r.Context(),
		Notifier:  opts.Notifier,
		RequestID: opts.RequestID,
		SupportTo: opts.SupportTo,
		Location:  v.location(),
	})
	opts.state(StateProcessed, nil)
	return res.Clean, nil
}

func (o SubmitOptions) state(s string, detail map[string]string) {
	if o.OnState != nil {
		o.OnState(s, detail)
	}
}

// DecodeBody reads one JSON object and flattens its scalar members into
// strings.  Numbers keep their literal text; null members are dropped.
func DecodeBody(body io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedBody)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedBody)
	}

	out := make(map[string]string, len(obj))
	for k, val := range obj {
		switch t := val.(type) {
		case nil:
			continue
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("%w: field %q is not a scalar", ErrMalformedBody, k)
		}
	}
	return out, nil
}
