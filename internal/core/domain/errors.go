package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedSource indicates a file source location nobody can handle.
	ErrUnsupportedSource = errors.New("unsupported source")

	// Build Errors.

	// ErrBuildFailed indicates the graph builder rejected its input.
	// No graph is produced when this is returned.
	ErrBuildFailed = errors.New("build failed")

	// ErrBuildSuperseded indicates a newer build request replaced this one.
	// The superseded build may still run to completion; its result is discarded.
	ErrBuildSuperseded = errors.New("build superseded")

	// ErrExecutorClosed indicates the build executor has been terminated.
	ErrExecutorClosed = errors.New("build executor closed")

	// ErrWorkerUnavailable indicates no isolated worker could be started.
	// Callers fall back to an in-process build.
	ErrWorkerUnavailable = errors.New("build worker unavailable")

	// Layout Errors.

	// ErrNoGraphLoaded indicates a layout operation was issued before any graph was loaded.
	ErrNoGraphLoaded = errors.New("no graph loaded")
)
