// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each enquiry form (contact, booking, feedback) is declared in a YAML file.
//   The file names the form, its user-facing messages, the mail-link layout,
//   every field with its rules, and the hand-off actions run after a valid
//   submission.  The defaults ship embedded in the binary under defs/, and an
//   operator may override any of them from a directory on disk.  The browser,
//   the cabctl dispatcher, and the HTTP handlers all read the same registry,
//   so client and server rules cannot drift apart.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef / ActionDef.
//   •  ParseFormDef decodes one document and validates structural rules.
//   •  LoadFormDef reads one file from disk through ParseFormDef.
//   •  RegisterForms walks override directories; later calls replace
//      earlier registrations by ID.
//   •  GetFormDef offers read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID       string       `yaml:"id"       json:"id"`
	Title    string       `yaml:"title"    json:"title"`
	Messages FormMessages `yaml:"messages" json:"messages"`
	Mail     MailLayout   `yaml:"mail"     json:"-"`
	Fields   []FieldDef   `yaml:"fields"   json:"fields"`
	Actions  []ActionDef  `yaml:"actions"  json:"-"`
}

// FormMessages holds the user-facing outcome texts for one form.
type FormMessages struct {
	Success string `yaml:"success" json:"success"` // Shown after an acknowledged submission.
	Invalid string `yaml:"invalid" json:"invalid"` // Server 400 message.  Field detail is never returned.
	Failure string `yaml:"failure" json:"failure"` // Generic transport or server failure.
	Mailto  string `yaml:"mailto"  json:"mailto"`  // Shown after a mail draft was opened.
}

// MailLayout shapes the plain-text message built by Compose.
type MailLayout struct {
	Subject      string `yaml:"subject"`
	SubjectField string `yaml:"subject_field"` // Field whose value is appended to Subject.
	Intro        string `yaml:"intro"`
	Closing      string `yaml:"closing"`
}

// FieldDef describes a single input.  Rules live inline so every consumer
// enforces the same constraints.
type FieldDef struct {
	Name      string            `yaml:"name"      json:"name"`
	Label     string            `yaml:"label"     json:"label"`
	Type      string            `yaml:"type"      json:"type"` // text, textarea, email, tel, select, date, time
	Required  bool              `yaml:"required"  json:"required"`
	MinLength int               `yaml:"minlength" json:"minLength,omitempty"` // 0 means unset.
	MaxLength int               `yaml:"maxlength" json:"maxLength,omitempty"` // 0 means unset.
	Pattern   string            `yaml:"pattern"   json:"pattern,omitempty"`
	Options   []string          `yaml:"options"   json:"options,omitempty"`
	NotPast   bool              `yaml:"notpast"   json:"notPast,omitempty"` // Dates only.
	Messages  map[string]string `yaml:"messages"  json:"messages,omitempty"` // Rule name → message.

	// ServerMinLength is the minimum the Lenient profile enforces in place
	// of MinLength.  0 means a non-empty value is enough.
	ServerMinLength int `yaml:"server_minlength" json:"-"`
}

// ActionDef configures a hand-off executed after validation.  Parameters
// other than type are kept inline so new kinds need no schema change.
type ActionDef struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:",inline"`
}

// Field returns the named field definition.
func (fd *FormDef) Field(name string) (FieldDef, bool) {
	for _, f := range fd.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

//go:embed defs/*.yaml
var embedded embed.FS

// ErrUnknownForm is returned when no definition is registered for an ID.
var ErrUnknownForm = errors.New("unknown form")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

func init() {
	if err := registerEmbedded(); err != nil {
		panic("form: embedded definitions: " + err.Error())
	}
}

// GetFormDef returns a parsed FormDef by ID.  The boolean is false when the
// ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// IDs lists every registered form ID in sorted order.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef decodes one YAML document.  name is used in error messages
// only.  It never touches the registry.
func ParseFormDef(raw []byte, name string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadFormDef reads and parses one YAML file.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseFormDef(raw, path)
}

// RegisterForms loads every “*.yaml” below each directory and registers it,
// replacing any definition with the same ID.  Missing directories are
// ignored so an unset override path is harmless.
func RegisterForms(dirs []string) error {
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
				return nil
			}
			fd, err := LoadFormDef(path)
			if err != nil {
				return err // fail fast so broken overrides surface at boot
			}
			register(fd)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func registerEmbedded() error {
	entries, err := fs.Glob(embedded, "defs/*.yaml")
	if err != nil {
		return err
	}
	for _, name := range entries {
		raw, err := embedded.ReadFile(name)
		if err != nil {
			return err
		}
		fd, err := ParseFormDef(raw, name)
		if err != nil {
			return err
		}
		register(fd)
	}
	return nil
}

func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var knownTypes = map[string]bool{
	"text":     true,
	"textarea": true,
	"email":    true,
	"tel":      true,
	"select":   true,
	"date":     true,
	"time":     true,
}

// validateFormDef enforces structural rules that YAML tags cannot express.
func validateFormDef(fd *FormDef, name string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", name)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", name)
	}
	if fd.Mail.SubjectField != "" {
		if _, ok := fd.Field(fd.Mail.SubjectField); !ok {
			return fmt.Errorf("form %s: subject_field '%s' is not a field", name, fd.Mail.SubjectField)
		}
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, name); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	for _, ac := range fd.Actions {
		if ac.Type != actionLog && ac.Type != actionNotify {
			return fmt.Errorf("form %s: unrecognized action type '%s'", name, ac.Type)
		}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, name string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", name)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", name, f.Name)
	}
	if !knownTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type '%s'", name, f.Name, f.Type)
	}
	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", name, f.Name, err)
		}
	}
	if f.MinLength < 0 || f.MaxLength < 0 || f.ServerMinLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", name, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", name, f.Name)
	}
	if f.MinLength > 0 && f.ServerMinLength > f.MinLength {
		return fmt.Errorf("form %s: field '%s' server_minlength greater than minlength", name, f.Name)
	}
	if f.Type == "select" && len(f.Options) == 0 {
		return fmt.Errorf("form %s: select field '%s' has no options", name, f.Name)
	}
	if f.NotPast && f.Type != "date" {
		return fmt.Errorf("form %s: field '%s' uses notpast on a non-date type", name, f.Name)
	}
	return nil
}
