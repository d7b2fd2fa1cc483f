package sources

import (
	"context"
	"strings"

	"github.com/dealscope/dealscope/pkg/listing"
)

// Source is one marketplace capability the aggregator can query. Fetch may
// fail; failures are isolated by the orchestrator and never abort a search.
// Implementations enforce their own request timeouts.
type Source interface {
	Name() string
	Fetch(ctx context.Context, term, location string, maxPages int) ([]listing.Raw, error)
}

// Registry is an explicit list of active sources, passed into the
// orchestrator at call time so tests can inject fakes. There is no hidden
// process-wide source table.
type Registry struct {
	sources []Source
}

func NewRegistry(srcs ...Source) *Registry {
	return &Registry{sources: srcs}
}

func (r *Registry) Add(s Source) {
	r.sources = append(r.sources, s)
}

// All returns every registered source.
func (r *Registry) All() []Source {
	return r.sources
}

// Names returns the registered source identifiers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name())
	}
	return names
}

// Select resolves an allow-list of source names to sources. A nil or empty
// allow-list means all registered sources; unknown names are ignored.
func (r *Registry) Select(names []string) []Source {
	if len(names) == 0 {
		return r.sources
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	var out []Source
	for _, s := range r.sources {
		if _, ok := wanted[s.Name()]; ok {
			out = append(out, s)
		}
	}
	return out
}
