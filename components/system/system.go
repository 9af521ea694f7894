// components/system/system.go
//
// System Component – liveness probe.
package system

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/krishnacabs/internal/component"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Health is the body of GET /api/health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	now func() time.Time
}

func (c *Comp) Name() string { return "system" }

func (c *Comp) Init(d component.Deps) error {
	c.now = d.Now
	if c.now == nil {
		c.now = time.Now
	}
	return nil
}

// Routes registers the health probe.  It always answers 200 while the
// process can serve HTTP.
func (c *Comp) Routes(r chi.Router) {
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		w.Header().Set("Cache-Control", "no-store")
		component.WriteJSON(w, r, http.StatusOK, Health{
			Status:    "OK",
			Timestamp: now().UTC().Format(TimestampLayout),
		})
	})
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}
