package tui

import "errors"

// ErrMissingGraphService is returned when the graph service is not provided.
var ErrMissingGraphService = errors.New("tui: graph service is required")

// ErrMissingLayoutService is returned when the layout service is not provided.
var ErrMissingLayoutService = errors.New("tui: layout service is required")
