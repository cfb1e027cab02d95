package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"NewsBrief/internal/domain"
)

// ErrLocaleRequired is returned by local connectors when the query has no locale.
var ErrLocaleRequired = errors.New("connector requires a locale")

// Request carries all parameters required to execute a search.
type Request struct {
	Query   domain.Query
	Limit   int
	Options map[string]string
	Now     time.Time
}

// Option returns a configured option or the fallback.
func (r Request) Option(key, fallback string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Connector captures a single source implementation (News API, Patch, etc.).
type Connector interface {
	Name() string
	Search(ctx context.Context, req Request) ([]domain.FetchTarget, error)
}

// Registry keeps a mapping from connector names to their implementations.
type Registry struct {
	connectors map[string]Connector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: map[string]Connector{}}
}

// Register adds or replaces a connector implementation under its own name.
func (r *Registry) Register(connector Connector) {
	r.RegisterAs(connector.Name(), connector)
}

// RegisterAs adds or replaces a connector under a configured source name.
func (r *Registry) RegisterAs(name string, connector Connector) {
	if r.connectors == nil {
		r.connectors = map[string]Connector{}
	}
	r.connectors[name] = connector
}

// Resolve returns a connector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Connector, error) {
	if connector, ok := r.connectors[name]; ok {
		return connector, nil
	}
	return nil, fmt.Errorf("connector %s is not registered", name)
}

// Names lists registered connectors in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
