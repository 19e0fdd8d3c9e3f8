package messaging

import (
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

// Known client names. Routing rules refer to clients by these names.
const (
	NameMatrix   = "matrix"
	NameSignal   = "signal"
	NameDiscord  = "discord"
	NameWhatsApp = "whatsapp"
)

// Registry holds the messaging clients that passed validation at startup.
// It is built exactly once and read-only afterwards, so concurrent dispatches
// read it without locking.
type Registry struct {
	clients map[string]Client
	names   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Add inserts a client keyed by its name, keeping insertion order for Names.
func (r *Registry) Add(c Client) {
	if _, exists := r.clients[c.Name()]; !exists {
		r.names = append(r.names, c.Name())
	}
	r.clients[c.Name()] = c
}

// Get looks up a client by name.
func (r *Registry) Get(name string) (Client, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Names returns the registered client names in insertion order.
func (r *Registry) Names() []string {
	return r.names
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// Empty reports whether no client survived registration.
func (r *Registry) Empty() bool {
	return len(r.clients) == 0
}

// Builder couples one client's config fragment to its constructor. The
// registry factory uses it to validate and construct clients without knowing
// variant config shapes.
type Builder struct {
	// Name is the client name the builder produces.
	Name string

	// Enabled mirrors the fragment's enabled flag; disabled builders are
	// skipped without validation.
	Enabled bool

	// Validate runs the fragment's structural validation.
	Validate func() error

	// New constructs the client after validation passed.
	New func() (Client, error)
}

// BuildRegistry assembles the client registry from the given builders.
// A disabled or invalid client is logged and excluded; registry construction
// itself never fails. An empty result disables dispatch for the process
// lifetime.
func BuildRegistry(log logger.Logger, builders ...Builder) *Registry {
	reg := NewRegistry()
	for _, b := range builders {
		if !b.Enabled {
			log.Debug("messaging client disabled", "client", b.Name)
			continue
		}
		if err := b.Validate(); err != nil {
			log.Error("messaging client config invalid, excluding client",
				"client", b.Name,
				"error", errors.Wrap(err, errors.CodeConfigInvalid, "invalid client config").WithClient(b.Name))
			continue
		}
		c, err := b.New()
		if err != nil {
			log.Error("messaging client construction failed, excluding client",
				"client", b.Name, "error", err)
			continue
		}
		reg.Add(c)
		log.Info("messaging client registered", "client", b.Name)
	}
	if reg.Empty() {
		log.Warn("no messaging clients configured, dispatch is disabled")
	}
	return reg
}
