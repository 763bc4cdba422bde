package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cutelabs/ragd/internal/domain"
)

// Router maps wire provider names to completion backends. The set is closed:
// it is populated once at startup from config and only registered names
// resolve. Callers never switch on provider names themselves.
type Router struct {
	completers map[string]domain.Completer
}

// NewRouter creates an empty provider router.
func NewRouter() *Router {
	return &Router{completers: make(map[string]domain.Completer)}
}

// Register binds a provider name to a completer. Later registrations under
// the same name replace earlier ones.
func (r *Router) Register(name string, c domain.Completer) {
	r.completers[name] = c
}

// Resolve returns the completer for a provider name. Lookup is exact; the
// empty name and unknown names fail with distinct messages, both before any
// network call is made.
func (r *Router) Resolve(name string) (domain.Completer, error) {
	if name == "" {
		return nil, fmt.Errorf("provider name is required: %w", domain.ErrUnsupportedProvider)
	}

	c, ok := r.completers[name]
	if !ok {
		return nil, fmt.Errorf(
			"provider %q not supported (available: %s): %w",
			name, strings.Join(r.Names(), ", "), domain.ErrUnsupportedProvider,
		)
	}
	return c, nil
}

// Names lists the registered provider names, sorted for stable output.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.completers))
	for name := range r.completers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
