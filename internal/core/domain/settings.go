package domain

// Settings is the application configuration resolved from the config store.
type Settings struct {
	// Simulation holds force layout parameters.
	Simulation SimulationConfig `validate:"required"`

	// Builder controls how graph builds are executed.
	Builder BuilderSettings `validate:"required"`

	// DataDir overrides where the graph database lives. Empty uses the default.
	DataDir string

	// GitHubToken authenticates the github:// file source.
	GitHubToken string
}

// BuilderSettings controls graph build execution.
type BuilderSettings struct {
	// UseWorker runs builds in an isolated worker instead of in-process.
	UseWorker bool

	// UserID is stamped on every built graph.
	UserID string `validate:"required"`

	// MaxFileBytes caps how much content is read per file.
	MaxFileBytes int64 `validate:"gt=0"`
}

// DefaultSettings returns the configuration used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Simulation: DefaultSimulationConfig(),
		Builder: BuilderSettings{
			UseWorker:    true,
			UserID:       "local",
			MaxFileBytes: 512 * 1024,
		},
	}
}

// Settings keys understood by the config store.
const (
	KeySimAlphaMin           = "simulation.alpha_min"
	KeySimAlphaDecay         = "simulation.alpha_decay"
	KeySimVelocityDecay      = "simulation.velocity_decay"
	KeySimLinkDistance       = "simulation.link_distance"
	KeySimLinkStrength       = "simulation.link_strength"
	KeySimChargeStrength     = "simulation.charge_strength"
	KeySimTheta              = "simulation.theta"
	KeySimDistanceMax        = "simulation.distance_max"
	KeySimCenterStrength     = "simulation.center_strength"
	KeySimCollisionThreshold = "simulation.collision_threshold"
	KeySimRadialStrength     = "simulation.radial_strength"
	KeySimFPS                = "simulation.fps"
	KeyBuilderWorker         = "builder.worker"
	KeyBuilderUserID         = "builder.user_id"
	KeyBuilderMaxFileBytes   = "builder.max_file_bytes"
	KeyStorageDataDir        = "storage.data_dir"
	KeyGitHubToken           = "github.token"
)
