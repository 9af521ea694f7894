// internal/config/model.go
//
// Typed configuration model for the enquiry service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from four overlay layers:
//
//   • built-in defaults                       – Defaults(),
//   • optional `.env`                         – dotenv values,
//   • optional `conf/global.yaml`             – primary static file,
//   • `CABS_`-prefixed environment overrides  – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if a
// value is out of range.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"net/mail"
	"path/filepath"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Forms section
//

// Forms tunes submission handling.
type Forms struct {
	// ServerProfile picks the server-side rule set: "strict" (every rule,
	// same as the clients) or "lenient" (required, minlength, email only).
	ServerProfile string `koanf:"server_profile" validate:"oneof=strict lenient"`
	MaxBodyBytes  int64  `koanf:"max_body_bytes" validate:"gte=1024"`
	OverrideDir   string `koanf:"override_dir"` // optional dir of *.yaml form overrides
}

//
// Support section
//

// Support identifies the desk that receives enquiries.
type Support struct {
	Email string `koanf:"email" validate:"required,email"`
	Name  string `koanf:"name"  validate:"required"`
}

// Recipient formats the desk as an RFC 5322 address, e.g.
// "Krishna Cabs Support Team" <support@krishnacabspvtltd.com>.
func (s Support) Recipient() string {
	return (&mail.Address{Name: s.Name, Address: s.Email}).String()
}

//
// Logging section
//

// Logging controls the file logger.  A relative Dir is resolved against
// Paths.Root.
type Logging struct {
	Dir        string `koanf:"dir"          validate:"required"`
	Console    bool   `koanf:"console"` // force the colour tee even without a TTY
	Level      string `koanf:"level"        validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `koanf:"max_size_mb"  validate:"gte=1"`
	MaxBackups int    `koanf:"max_backups"  validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=1"`
}

//
// Geo section
//

// Geo points at an optional MaxMind GeoLite2 City database.  Empty disables
// country and city enrichment.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime and never set in YAML or env.
type Paths struct {
	Root string // CABS_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load().
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Forms   Forms   `koanf:"forms"`
	Support Support `koanf:"support"`
	Logging Logging `koanf:"logging"`
	Geo     Geo     `koanf:"geo"`
	Paths   Paths   `koanf:"-"` // not loaded from config files
}

// Defaults returns the configuration used when no file or env var says
// otherwise.
func Defaults() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:   ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Forms: Forms{
			ServerProfile: "strict",
			MaxBodyBytes:  64 << 10,
		},
		Support: Support{
			Email: "support@krishnacabspvtltd.com",
			Name:  "Krishna Cabs Support Team",
		},
		Logging: Logging{
			Dir:        "logs",
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 7,
			MaxAgeDays: 14,
		},
	}
}

// LogDir returns Logging.Dir made absolute against Paths.Root.
func (c *Config) LogDir() string {
	if filepath.IsAbs(c.Logging.Dir) || c.Paths.Root == "" {
		return c.Logging.Dir
	}
	return filepath.Join(c.Paths.Root, c.Logging.Dir)
}
