// Package worker provides BuildExecutor implementations.
//
// Worker runs builds on a dedicated goroutine that shares no memory with its
// callers: requests and responses are JSON-encoded at the boundary, so only
// plain data crosses it. A caller that stops waiting (context done) simply
// abandons the reply; the isolate still finishes the build.
//
// Inline runs builds on the caller's goroutine and is the fallback when no
// worker can be started.
package worker
