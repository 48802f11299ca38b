package driven

// FrameScheduler delivers animation frames to the force simulation.
// It plays the role of a display-synchronised frame callback: each request
// runs fn once, on a later frame.
type FrameScheduler interface {
	// RequestFrame schedules fn to run on the next frame.
	// The returned cancel func prevents fn from running if it has not yet started.
	RequestFrame(fn func()) (cancel func())
}
