package source

import (
	"context"
	"fmt"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.FileSource = (*Router)(nil)

// Router dispatches each location to the first registered source accepting it.
type Router struct {
	sources []driven.FileSource
}

// NewRouter creates a router over sources, consulted in order.
func NewRouter(sources ...driven.FileSource) *Router {
	return &Router{sources: sources}
}

// Type returns "router".
func (r *Router) Type() string {
	return "router"
}

// Accepts reports whether any source accepts location.
func (r *Router) Accepts(location string) bool {
	_, ok := r.pick(location)
	return ok
}

// Scan delegates to the accepting source.
func (r *Router) Scan(ctx context.Context, location string) ([]domain.NeuralFile, error) {
	src, ok := r.pick(location)
	if !ok {
		return nil, fmt.Errorf("scan %q: %w", location, domain.ErrUnsupportedSource)
	}
	return src.Scan(ctx, location)
}

// ProjectName delegates to the accepting source. Unknown locations yield "".
func (r *Router) ProjectName(location string) string {
	src, ok := r.pick(location)
	if !ok {
		return ""
	}
	return src.ProjectName(location)
}

// Source returns the source that accepts location.
func (r *Router) Source(location string) (driven.FileSource, error) {
	src, ok := r.pick(location)
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", location, domain.ErrUnsupportedSource)
	}
	return src, nil
}

func (r *Router) pick(location string) (driven.FileSource, bool) {
	for _, src := range r.sources {
		if src.Accepts(location) {
			return src, true
		}
	}
	return nil, false
}
