package frames

import (
	"sync"

	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.FrameScheduler = (*Manual)(nil)

// Manual runs frames only when Advance or RunUntilIdle is called.
// Frames requested during a frame run on the next one.
type Manual struct {
	mu     sync.Mutex
	queue  []*request
	frames int
}

// NewManual creates an idle manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame queues fn for the next frame.
func (m *Manual) RequestFrame(fn func()) func() {
	r := &request{fn: fn}
	m.mu.Lock()
	m.queue = append(m.queue, r)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		r.cancelled = true
		m.mu.Unlock()
	}
}

// Pending returns the number of live requests waiting for a frame.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.queue {
		if !r.cancelled {
			n++
		}
	}
	return n
}

// Frames returns how many frames have run.
func (m *Manual) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Advance runs one frame: every request queued before the call.
// It returns false when nothing was queued.
func (m *Manual) Advance() bool {
	m.mu.Lock()
	batch := m.queue
	m.queue = nil
	m.mu.Unlock()

	ran := false
	for _, r := range batch {
		m.mu.Lock()
		skip := r.cancelled
		m.mu.Unlock()
		if skip {
			continue
		}
		r.fn()
		ran = true
	}
	if ran {
		m.mu.Lock()
		m.frames++
		m.mu.Unlock()
	}
	return ran
}

// RunUntilIdle advances until no requests remain or limit frames have run.
// It returns the number of frames run.
func (m *Manual) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && m.Advance() {
		n++
	}
	return n
}
