package simulation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds the tunable parameters of the flock. It is treated as
// immutable once a State has been initialized from it.
type Config struct {
	// Population & placement
	MaxEntities    int     `json:"maxEntities"`    // number of placement candidates
	EntityMaxSpeed float64 `json:"entityMaxSpeed"` // initial velocity components drawn in [-max, max]
	EntityRadius   float64 `json:"entityRadius"`
	NoiseScale     float64 `json:"noiseScale"`     // spatial frequency of the placement noise
	NoiseThreshold float64 `json:"noiseThreshold"` // candidates with noise <= threshold are dropped
	Seed           int64   `json:"seed"`

	// Base motion
	BaseAccScale float64 `json:"baseAccScale"`
	MinSpeed     float64 `json:"minSpeed"`
	MaxSpeed     float64 `json:"maxSpeed"`

	// Steering
	MaxSteerForce    float64 `json:"maxSteerForce"`
	SteerStrength    float64 `json:"steerStrength"`
	SteerAngleFactor float64 `json:"steerAngleFactor"` // how much large turns are slowed down

	// Force weights
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`
	TargetWeight     float64 `json:"targetWeight"`

	// Perception radii
	SeparationRadius   float64 `json:"separationRadius"`
	AlignmentMinRadius float64 `json:"alignmentMinRadius"`
	AlignmentMaxRadius float64 `json:"alignmentMaxRadius"`
	CohesionRadius     float64 `json:"cohesionRadius"`

	// Target seeking
	TargetInfluenceScale   float64           `json:"targetInfluenceScale"`
	TargetMinDistance      float64           `json:"targetMinDistance"`      // below this the pull is damped
	TargetArrivalThreshold float64           `json:"targetArrivalThreshold"` // counted as "near target"
	InitialTarget          geometry.Vector2D `json:"initialTarget"`

	// Domain
	BoundaryMargin float64 `json:"boundaryMargin"`
	MaxDeltaTime   float64 `json:"maxDeltaTime"` // upper bound the harness applies to dt

	// Spatial index
	CollisionCellSize  geometry.Vector2D `json:"collisionCellSize"`
	ClusteringCellSize geometry.Vector2D `json:"clusteringCellSize"`
	BorderLayer        BorderLayerConfig `json:"borderLayer"`

	// EnableSeparation folds the collision-grid repulsion into the desired
	// direction. Off, the collision grid is still maintained but separation
	// contributes nothing, which is how the flock has always behaved.
	EnableSeparation bool `json:"enableSeparation"`
}

// BorderLayerConfig configures the optional border-layer augmentation of
// both spatial grids.
type BorderLayerConfig struct {
	Enabled            bool    `json:"enabled"`
	ObjectRadius       float64 `json:"objectRadius"`
	SeparationDistance float64 `json:"separationDistance"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxEntities:    1000,
		EntityMaxSpeed: 10,
		EntityRadius:   5,
		NoiseScale:     0.01,
		NoiseThreshold: 0,
		Seed:           1,

		BaseAccScale: 40.0,
		MinSpeed:     10.0,
		MaxSpeed:     350.0,

		MaxSteerForce:    70.0,
		SteerStrength:    0.9,
		SteerAngleFactor: 0.3,

		SeparationWeight: 0.4,
		AlignmentWeight:  1.4,
		CohesionWeight:   0.4,
		TargetWeight:     1.2,

		SeparationRadius:   10.0,
		AlignmentMinRadius: 20.0,
		AlignmentMaxRadius: 80.0,
		CohesionRadius:     100.0,

		TargetInfluenceScale:   30.0,
		TargetMinDistance:      80.0,
		TargetArrivalThreshold: 100.0,
		InitialTarget:          geometry.Vector2D{X: 400, Y: 400},

		BoundaryMargin: 50.0,
		MaxDeltaTime:   0.1,

		CollisionCellSize:  geometry.Vector2D{X: 200, Y: 200},
		ClusteringCellSize: geometry.Vector2D{X: 500, Y: 500},
		BorderLayer: BorderLayerConfig{
			Enabled:            false,
			ObjectRadius:       5,
			SeparationDistance: 10,
		},
	}
}

// Validate reports every problem that would make the solver produce NaNs or
// nonsense, joined into one error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.CollisionCellSize.X <= 0 || c.CollisionCellSize.Y <= 0 {
		fail("collision cell size must be positive, got %s", c.CollisionCellSize)
	}
	if c.ClusteringCellSize.X <= 0 || c.ClusteringCellSize.Y <= 0 {
		fail("clustering cell size must be positive, got %s", c.ClusteringCellSize)
	}
	if c.MinSpeed < 0 {
		fail("minSpeed must not be negative, got %g", c.MinSpeed)
	}
	if c.MinSpeed > c.MaxSpeed {
		fail("minSpeed (%g) is greater than maxSpeed (%g)", c.MinSpeed, c.MaxSpeed)
	}
	if c.MaxSpeed <= 0 {
		fail("maxSpeed must be positive, got %g", c.MaxSpeed)
	}
	if c.MaxEntities < 0 {
		fail("maxEntities must not be negative, got %d", c.MaxEntities)
	}
	if c.EntityMaxSpeed < 0 || c.EntityRadius < 0 {
		fail("entity speed and radius must not be negative")
	}
	if c.TargetInfluenceScale <= 0 {
		fail("targetInfluenceScale must be positive, got %g", c.TargetInfluenceScale)
	}
	if c.AlignmentMinRadius > c.AlignmentMaxRadius {
		fail("alignmentMinRadius (%g) is greater than alignmentMaxRadius (%g)", c.AlignmentMinRadius, c.AlignmentMaxRadius)
	}
	if c.SeparationRadius < 0 || c.CohesionRadius < 0 || c.BoundaryMargin < 0 {
		fail("radii and boundary margin must not be negative")
	}
	if c.BorderLayer.Enabled && (c.BorderLayer.ObjectRadius < 0 || c.BorderLayer.SeparationDistance < 0) {
		fail("border layer radius and separation must not be negative")
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from a JSON file, validates it against the
// schema and overlays it on DefaultConfig, so a file only needs the fields it
// changes.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Validate the raw document
	var v interface{}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
