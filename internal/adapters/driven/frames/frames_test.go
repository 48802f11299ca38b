package frames

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	t.Run("runs queued requests in order", func(t *testing.T) {
		m := NewManual()
		var order []int
		m.RequestFrame(func() { order = append(order, 1) })
		m.RequestFrame(func() { order = append(order, 2) })

		assert.Equal(t, 2, m.Pending())
		assert.True(t, m.Advance())
		assert.Equal(t, []int{1, 2}, order)
		assert.Equal(t, 1, m.Frames())
		assert.False(t, m.Advance())
	})

	t.Run("cancelled requests do not run", func(t *testing.T) {
		m := NewManual()
		ran := false
		cancel := m.RequestFrame(func() { ran = true })
		cancel()

		assert.Zero(t, m.Pending())
		assert.False(t, m.Advance())
		assert.False(t, ran)
	})

	t.Run("requests made during a frame wait for the next one", func(t *testing.T) {
		m := NewManual()
		count := 0
		var loop func()
		loop = func() {
			count++
			if count < 5 {
				m.RequestFrame(loop)
			}
		}
		m.RequestFrame(loop)

		assert.True(t, m.Advance())
		assert.Equal(t, 1, count)
		assert.Equal(t, 4, m.RunUntilIdle(100))
		assert.Equal(t, 5, count)
	})

	t.Run("limit bounds the run", func(t *testing.T) {
		m := NewManual()
		var loop func()
		loop = func() { m.RequestFrame(loop) }
		m.RequestFrame(loop)

		assert.Equal(t, 10, m.RunUntilIdle(10))
		assert.Equal(t, 1, m.Pending())
	})
}

func TestTicker(t *testing.T) {
	t.Run("delivers a frame", func(t *testing.T) {
		tk := NewTicker(120)
		defer tk.Close()

		done := make(chan struct{})
		tk.RequestFrame(func() { close(done) })

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("frame was not delivered")
		}
	})

	t.Run("cancelled frame is skipped", func(t *testing.T) {
		tk := NewTicker(1000)
		defer tk.Close()

		started, release := make(chan struct{}), make(chan struct{})
		tk.RequestFrame(func() {
			close(started)
			<-release
		})
		<-started

		var ran atomic.Bool
		cancel := tk.RequestFrame(func() { ran.Store(true) })
		cancel()
		done := make(chan struct{})
		tk.RequestFrame(func() { close(done) })
		close(release)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("frame was not delivered")
		}
		assert.False(t, ran.Load())
	})

	t.Run("close stops delivery", func(t *testing.T) {
		tk := NewTicker(60)
		tk.Close()

		var ran atomic.Bool
		tk.RequestFrame(func() { ran.Store(true) })
		time.Sleep(50 * time.Millisecond)
		assert.False(t, ran.Load())
	})
}
