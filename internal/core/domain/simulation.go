package domain

import "math"

// SimulationConfig holds the force simulation parameters.
// Field semantics follow the d3-force family of layouts.
type SimulationConfig struct {
	// Cooling schedule.
	InitialAlpha  float64 `toml:"initial_alpha" validate:"gt=0,lte=1"`
	AlphaMin      float64 `toml:"alpha_min" validate:"gt=0,lt=1"`
	AlphaDecay    float64 `toml:"alpha_decay" validate:"gt=0,lt=1"`
	AlphaTarget   float64 `toml:"alpha_target" validate:"gte=0,lt=1"`
	VelocityDecay float64 `toml:"velocity_decay" validate:"gte=0,lte=1"`

	// Link force. Target distance is LinkDistance / (1 + avgImportance/10).
	LinkDistance float64 `toml:"link_distance" validate:"gt=0"`
	LinkStrength float64 `toml:"link_strength" validate:"gte=0"`

	// Charge force. Per-node strength is ChargeStrength * (1 + importance/100).
	ChargeStrength float64 `toml:"charge_strength"`
	Theta          float64 `toml:"theta" validate:"gte=0"`
	DistanceMin    float64 `toml:"distance_min" validate:"gt=0"`
	DistanceMax    float64 `toml:"distance_max" validate:"gtfield=DistanceMin"`

	// Center force.
	CenterStrength float64 `toml:"center_strength" validate:"gte=0,lte=1"`

	// Collision force, engaged only above CollisionThreshold nodes.
	// Radius is CollisionRadius + CollisionRadiusScale*importance.
	CollisionThreshold   int     `toml:"collision_threshold" validate:"gte=0"`
	CollisionRadius      float64 `toml:"collision_radius" validate:"gte=0"`
	CollisionRadiusScale float64 `toml:"collision_radius_scale" validate:"gte=0"`
	CollisionStrength    float64 `toml:"collision_strength" validate:"gte=0,lte=1"`

	// Radial force around a designated center node.
	RadialStrength    float64 `toml:"radial_strength" validate:"gte=0,lte=1"`
	RadialInnerRadius float64 `toml:"radial_inner_radius" validate:"gt=0"`
	RadialOuterRadius float64 `toml:"radial_outer_radius" validate:"gtfield=RadialInnerRadius"`
	CenterNodeID      string  `toml:"center_node_id"`
	RadialLayout      bool    `toml:"radial_layout"`

	// InitialSpread is the half-width of the cube new nodes are placed in.
	InitialSpread float64 `toml:"initial_spread" validate:"gt=0"`

	// FPS is the frame rate requested from real-time schedulers.
	FPS int `toml:"fps" validate:"gt=0,lte=240"`
}

// DefaultSimulationConfig returns the standard layout parameters.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		InitialAlpha:         1,
		AlphaMin:             0.001,
		AlphaDecay:           1 - math.Pow(0.001, 1.0/300),
		AlphaTarget:          0,
		VelocityDecay:        0.4,
		LinkDistance:         40,
		LinkStrength:         1,
		ChargeStrength:       -60,
		Theta:                0.9,
		DistanceMin:          1,
		DistanceMax:          300,
		CenterStrength:       0.05,
		CollisionThreshold:   150,
		CollisionRadius:      2,
		CollisionRadiusScale: 0.8,
		CollisionStrength:    0.7,
		RadialStrength:       0.3,
		RadialInnerRadius:    30,
		RadialOuterRadius:    60,
		InitialSpread:        50,
		FPS:                  60,
	}
}

// SimNode is a snapshot of one simulated node.
// FX/FY/FZ are non-nil while the node is pinned or being dragged.
type SimNode struct {
	ID         string   `json:"id"`
	Type       NodeType `json:"type"`
	Title      string   `json:"title"`
	Importance float64  `json:"importance"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	VX         float64  `json:"vx"`
	VY         float64  `json:"vy"`
	VZ         float64  `json:"vz"`
	FX         *float64 `json:"fx"`
	FY         *float64 `json:"fy"`
	FZ         *float64 `json:"fz"`
}

// Position returns the node's current coordinates.
func (n SimNode) Position() Vec3 {
	return Vec3{X: n.X, Y: n.Y, Z: n.Z}
}

// Fixed reports whether the node's position is currently held.
func (n SimNode) Fixed() bool {
	return n.FX != nil || n.FY != nil || n.FZ != nil
}

// SimLink is a snapshot of one simulated link.
type SimLink struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Type     EdgeType `json:"type"`
	Strength float64  `json:"strength"`
	Distance float64  `json:"distance"`
}

// SimulationState is passed to tick observers every frame.
type SimulationState struct {
	Nodes     []SimNode `json:"nodes"`
	Links     []SimLink `json:"links"`
	Alpha     float64   `json:"alpha"`
	IsRunning bool      `json:"isRunning"`
}
