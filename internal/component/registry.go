// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  The server router calls
// Init() with the shared dependencies when a component implements
// Initializer, then lets Routes() register its handlers on the root router.
// Components add routes directly instead of mounting sub-routers, so two
// components may share a prefix such as /api.

package component

import (
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/krishnacabs/internal/form"
	"github.com/yanizio/krishnacabs/internal/message"
)

// Deps are the process-wide services handed to every component.
type Deps struct {
	Log          *zap.SugaredLogger
	Validator    *form.Validator // server profile
	Notifier     message.Notifier
	SupportTo    []string // support desk addresses for notify actions
	MaxBodyBytes int64
	Now          func() time.Time
}

// Initializer is optional.  If a Component implements it, the router calls
// Init(deps) once before Routes.
type Initializer interface {
	Init(Deps) error
}

// Component contract.  Routes registers handlers on r, e.g:
//
//	r.Post("/api/contact", c.submit("contact"))
type Component interface {
	Name() string
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
