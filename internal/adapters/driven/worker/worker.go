package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/neuralmap-cli/internal/builder"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.BuildExecutor = (*Worker)(nil)

// DefaultStartTimeout bounds the start-up handshake.
const DefaultStartTimeout = 2 * time.Second

// Handler processes one encoded request and returns the encoded response.
type Handler func(payload []byte) []byte

type job struct {
	payload []byte
	reply   chan []byte
}

// Worker is a build isolate running on its own goroutine.
type Worker struct {
	handle Handler
	inbox  chan job
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Option configures a Worker.
type Option func(*Worker)

// WithHandler replaces the message handler. Used by tests.
func WithHandler(h Handler) Option {
	return func(w *Worker) { w.handle = h }
}

// New starts a worker and waits for it to answer a handshake.
// Returns domain.ErrWorkerUnavailable if it does not answer within timeout.
func New(timeout time.Duration, opts ...Option) (*Worker, error) {
	w := &Worker{
		handle: HandleMessage,
		inbox:  make(chan job),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := w.roundTrip(ctx, nil); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("start build worker: %w", domain.ErrWorkerUnavailable)
	}
	return w, nil
}

// Execute sends req to the isolate and waits for its response.
func (w *Worker) Execute(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode build request: %w", err)
	}
	data, err := w.roundTrip(ctx, payload)
	if err != nil {
		return nil, err
	}
	var resp domain.BuildResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode build response: %w", err)
	}
	return &resp, nil
}

// Close terminates the isolate after any build in progress. It is idempotent.
func (w *Worker) Close() error {
	w.once.Do(func() {
		close(w.quit)
		<-w.done
	})
	return nil
}

// roundTrip delivers payload and waits for the reply. A nil payload is a ping.
func (w *Worker) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	// Buffered so an abandoned reply never blocks the isolate.
	j := job{payload: payload, reply: make(chan []byte, 1)}
	select {
	case w.inbox <- j:
	case <-w.quit:
		return nil, domain.ErrExecutorClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case data := <-j.reply:
		return data, nil
	case <-w.quit:
		return nil, domain.ErrExecutorClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case j := <-w.inbox:
			if j.payload == nil {
				j.reply <- nil
				continue
			}
			j.reply <- w.serve(j.payload)
		}
	}
}

func (w *Worker) serve(payload []byte) (out []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("build worker recovered from panic: %v", r)
			out = encodeFailure(fmt.Sprintf("build worker panicked: %v", r))
		}
	}()
	return w.handle(payload)
}

// HandleMessage decodes a build request, runs it and encodes the response.
// Malformed requests produce a failure response rather than an error.
func HandleMessage(payload []byte) []byte {
	var req domain.BuildRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return encodeFailure(fmt.Sprintf("decode build request: %v", err))
	}
	resp := builder.Handle(req)
	data, err := json.Marshal(resp)
	if err != nil {
		return encodeFailure(fmt.Sprintf("encode build response: %v", err))
	}
	return data
}

func encodeFailure(msg string) []byte {
	data, _ := json.Marshal(domain.BuildResponse{Success: false, Error: msg})
	return data
}
