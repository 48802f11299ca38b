package simulation

import (
	"sync"

	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

var _ driven.FrameScheduler = (*mockScheduler)(nil)

type mockFrame struct {
	fn        func()
	cancelled bool
}

// mockScheduler queues frame requests until the test runs them.
type mockScheduler struct {
	mu    sync.Mutex
	queue []*mockFrame
}

func (m *mockScheduler) RequestFrame(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := &mockFrame{fn: fn}
	m.queue = append(m.queue, f)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		f.cancelled = true
	}
}

// pending returns the number of frames that would still run.
func (m *mockScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range m.queue {
		if !f.cancelled {
			n++
		}
	}
	return n
}

// runFrame runs the oldest live frame. It returns false when none is queued.
func (m *mockScheduler) runFrame() bool {
	m.mu.Lock()
	for len(m.queue) > 0 {
		f := m.queue[0]
		m.queue = m.queue[1:]
		if f.cancelled {
			continue
		}
		m.mu.Unlock()
		f.fn()
		return true
	}
	m.mu.Unlock()
	return false
}

// runUntilIdle runs frames until the queue drains or limit frames have run.
func (m *mockScheduler) runUntilIdle(limit int) int {
	n := 0
	for n < limit && m.runFrame() {
		n++
	}
	return n
}
