// Package frames provides FrameScheduler implementations.
//
// Ticker delivers frames in real time at a fixed rate, batching every request
// made since the previous frame the way a display refresh callback does.
// Manual delivers frames only when told to, for headless runs and tests.
package frames
