package worker

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/neuralmap-cli/internal/builder"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.BuildExecutor = (*Inline)(nil)

// Inline runs builds synchronously on the caller's goroutine.
type Inline struct {
	closed atomic.Bool
}

// NewInline creates an in-process executor.
func NewInline() *Inline {
	return &Inline{}
}

// Execute runs the build unless ctx is already done.
func (e *Inline) Execute(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error) {
	if e.closed.Load() {
		return nil, domain.ErrExecutorClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := builder.Handle(req)
	return &resp, nil
}

// Close marks the executor closed.
func (e *Inline) Close() error {
	e.closed.Store(true)
	return nil
}

// NewExecutor returns a worker isolate when useWorker is set, falling back to
// an inline executor if the worker cannot be started.
func NewExecutor(useWorker bool) driven.BuildExecutor {
	if !useWorker {
		return NewInline()
	}
	w, err := New(DefaultStartTimeout)
	if err != nil {
		logger.Warn("build worker unavailable, building in-process: %v", err)
		return NewInline()
	}
	return w
}
