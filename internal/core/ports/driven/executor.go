package driven

import (
	"context"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// BuildExecutor runs graph builds away from the caller.
// Only plain data crosses the boundary in either direction.
type BuildExecutor interface {
	// Execute submits a build and waits for its response.
	// If ctx is done first, Execute returns ctx.Err() and the isolate's eventual
	// response is discarded. The build itself is not interrupted.
	Execute(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error)

	// Close terminates the isolate. Further Execute calls return ErrExecutorClosed.
	// Close is idempotent.
	Close() error
}
