package builder

import (
	"fmt"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// Handle runs one build request and reports the outcome as a response message.
// Errors and panics become {success: false, error}; no partial graph is returned.
func Handle(req domain.BuildRequest) (resp domain.BuildResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = domain.BuildResponse{Success: false, Error: fmt.Sprintf("graph build panicked: %v", r)}
		}
	}()

	graph, stats, err := Build(req.Files, Options{
		ThemeID:           req.ThemeID,
		ProjectPath:       req.ProjectPath,
		LinkedProjectName: req.LinkedProjectName,
		UserID:            req.UserID,
	})
	if err != nil {
		return domain.BuildResponse{Success: false, Error: err.Error()}
	}
	return domain.BuildResponse{Success: true, Graph: graph, Stats: &stats}
}
