// internal/form/validate.go
//
// Forms subsystem: rule engine shared by every client and the server.
//
// Context
//   A submission is a flat map of field name → string.  The browser, the
//   cabctl dispatcher, and the API handlers all feed that map through the
//   same Validator, driven by the YAML FormDef.  The only difference between
//   callers is the Profile: clients run Strict, and the server runs whatever
//   forms.server_profile names (Strict unless an operator opts into the
//   legacy Lenient projection).
//
// Workflow
//   •  Every declared field is trimmed; email values are lowercased.
//   •  Rules run in a fixed order and stop at the first violation, so each
//      field carries at most one message:
//        required → minlength/maxlength → format (email, pattern, date)
//        → options → notpast
//   •  Lenient runs required, server_minlength, and email syntax only.
//      Its minimums are the server's historical ones, which are looser than
//      the client minlength values.
//   •  Result.Clean is filled only when Result.Errors is empty.  Nothing is
//      ever partially accepted.
//   •  Running Validate over a Clean map returns the same Clean map.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/krishnacabs/internal/cache"
)

// DateLayout is the wire format for every date field.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Profiles
// -----------------------------------------------------------------------------

// Profile selects which rules of a FormDef are enforced.
type Profile int

const (
	// Strict enforces every rule in the definition.
	Strict Profile = iota
	// Lenient enforces required, server_minlength, and email syntax only.
	Lenient
)

// ParseProfile maps a config string onto a Profile.  An empty string means
// Strict.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown validation profile %q", s)
	}
}

func (p Profile) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// Validator applies FormDef rules under one Profile.  The zero value is a
// Strict validator using the wall clock.
type Validator struct {
	Profile Profile
	Now     func() time.Time // date rules compare against this clock
}

// NewValidator returns a Validator for profile p using time.Now.
func NewValidator(p Profile) *Validator {
	return &Validator{Profile: p, Now: time.Now}
}

// Result is the outcome of one validation pass.
type Result struct {
	FormID string
	Clean  map[string]string // normalised values; nil unless Errors is empty
	Errors map[string]string // field name → first violated rule's message
}

// Valid reports whether the submission passed every enforced rule.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Validate looks up formID and validates values against it.
func (v *Validator) Validate(formID string, values map[string]string) (Result, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return Result{FormID: formID}, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	return v.ValidateDef(fd, values), nil
}

// ValidateDef validates values against fd.  Keys that fd does not declare are
// dropped.  Declared fields that were not submitted appear in Clean as "".
func (v *Validator) ValidateDef(fd *FormDef, values map[string]string) Result {
	res := Result{FormID: fd.ID}
	clean := make(map[string]string, len(fd.Fields))
	errs := make(map[string]string)

	for i := range fd.Fields {
		f := &fd.Fields[i]
		val := normalise(f, values[f.Name])
		if msg := v.check(f, val); msg != "" {
			errs[f.Name] = msg
			continue
		}
		clean[f.Name] = val
	}

	if len(errs) > 0 {
		res.Errors = errs
		return res
	}
	res.Clean = clean
	return res
}

// check returns the message of the first violated rule, or "".
func (v *Validator) check(f *FieldDef, val string) string {
	if val == "" {
		if f.Required {
			return ruleMessage(f, "required", "This field is required.")
		}
		return "" // empty optional
	}

	n := utf8.RuneCountInString(val)
	if v.Profile == Lenient {
		if f.ServerMinLength > 0 && n < f.ServerMinLength {
			return ruleMessage(f, "minlength", fmt.Sprintf("Must be at least %d characters.", f.ServerMinLength))
		}
		if f.Type == "email" && !emailOK(val) {
			return ruleMessage(f, "email", "Please enter a valid email address.")
		}
		return ""
	}

	if f.MinLength > 0 && n < f.MinLength {
		return ruleMessage(f, "minlength", fmt.Sprintf("Must be at least %d characters.", f.MinLength))
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return ruleMessage(f, "maxlength", fmt.Sprintf("Must be less than %d characters.", f.MaxLength))
	}
	if f.Type == "email" && !emailOK(val) {
		return ruleMessage(f, "email", "Please enter a valid email address.")
	}
	if f.Pattern != "" && !regexMatch(f.Pattern, val) {
		return ruleMessage(f, "pattern", "Input does not match required format.")
	}
	var day time.Time
	if f.Type == "date" {
		d, err := time.ParseInLocation(DateLayout, val, v.location())
		if err != nil {
			return ruleMessage(f, "date", "Please enter a valid date.")
		}
		day = d
	}
	if len(f.Options) > 0 && !optionAllowed(f.Options, val) {
		return ruleMessage(f, "options", "Invalid input.")
	}
	if f.NotPast && day.Before(v.today()) {
		return ruleMessage(f, "notpast", "Date cannot be in the past.")
	}
	return ""
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

func (v *Validator) location() *time.Location { return v.now().Location() }

// today is local midnight of the validator's clock.  A date equal to today
// is accepted.
func (v *Validator) today() time.Time {
	n := v.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// -----------------------------------------------------------------------------
// Rule helpers
// -----------------------------------------------------------------------------

var (
	// emailCheck backs the email rule.  validator instances are safe for
	// concurrent use.
	emailCheck = validator.New()

	// patterns holds compiled field regexps keyed by source text.
	patterns = cache.New[string, *regexp.Regexp](256)
)

func normalise(f *FieldDef, raw string) string {
	val := strings.TrimSpace(raw)
	if f.Type == "email" {
		val = strings.ToLower(val)
	}
	return val
}

func emailOK(s string) bool {
	return emailCheck.Var(s, "email") == nil
}

func regexMatch(pattern, s string) bool {
	re, err := patterns.GetOrAdd(pattern, func() (*regexp.Regexp, error) {
		return regexp.Compile(pattern)
	})
	if err != nil {
		return false // pattern pre-validated at load
	}
	return re.MatchString(s)
}

func optionAllowed(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

// ruleMessage returns the definition's text for rule, else def.
func ruleMessage(f *FieldDef, rule, def string) string {
	if m := f.Messages[rule]; m != "" {
		return m
	}
	return def
}
