package driven

import (
	"time"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// BuildMetrics records graph engine telemetry.
type BuildMetrics interface {
	// ObserveBuild records a finished build and its outcome.
	ObserveBuild(elapsed time.Duration, stats domain.BuildStats, err error)

	// BuildSuperseded records a build whose result was discarded.
	BuildSuperseded()

	// ObserveTick records one simulation frame at the given alpha.
	ObserveTick(alpha float64, nodes int)
}
