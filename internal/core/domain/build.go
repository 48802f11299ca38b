package domain

// BuildRequest is the message sent into the build isolate.
// Only plain data crosses the boundary.
type BuildRequest struct {
	Files             []NeuralFile `json:"files" validate:"dive"`
	ThemeID           string       `json:"themeId,omitempty"`
	ProjectPath       string       `json:"projectPath,omitempty"`
	LinkedProjectName string       `json:"linkedProjectName,omitempty"`

	// UserID is stamped on the resulting graph document.
	UserID string `json:"userId,omitempty"`
}

// BuildStats reports the size of a build and how long it took.
// Elapsed is wall-clock milliseconds, for diagnostics only.
type BuildStats struct {
	NodeCount int     `json:"nodeCount"`
	EdgeCount int     `json:"edgeCount"`
	Elapsed   float64 `json:"elapsed"`
}

// BuildResponse is the message returned from the build isolate.
// Exactly one of Graph (with Success) or Error is meaningful.
type BuildResponse struct {
	Success bool         `json:"success"`
	Graph   *NeuralGraph `json:"graph,omitempty"`
	Stats   *BuildStats  `json:"stats,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// BuildResult is a successful build as seen by callers of the graph service.
type BuildResult struct {
	Graph *NeuralGraph
	Stats BuildStats
}
