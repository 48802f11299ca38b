package frames

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.FrameScheduler = (*Ticker)(nil)

type request struct {
	fn        func()
	cancelled bool
}

// Ticker is a real-time frame scheduler paced by a token bucket.
type Ticker struct {
	limiter *rate.Limiter

	mu    sync.Mutex
	queue []*request
	wake  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker starts a scheduler delivering at most fps frames per second.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Ticker{
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go t.loop()
	return t
}

// RequestFrame queues fn for the next frame.
func (t *Ticker) RequestFrame(fn func()) func() {
	r := &request{fn: fn}
	t.mu.Lock()
	t.queue = append(t.queue, r)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return func() {
		t.mu.Lock()
		r.cancelled = true
		t.mu.Unlock()
	}
}

// Close stops delivering frames and waits for the current frame to finish.
// Queued requests are dropped.
func (t *Ticker) Close() {
	t.cancel()
	<-t.done
}

func (t *Ticker) loop() {
	defer close(t.done)
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-t.wake:
		}
		if err := t.limiter.Wait(t.ctx); err != nil {
			return
		}

		t.mu.Lock()
		batch := t.queue
		t.queue = nil
		t.mu.Unlock()

		for _, r := range batch {
			t.mu.Lock()
			skip := r.cancelled
			t.mu.Unlock()
			if !skip {
				r.fn()
			}
		}
	}
}
