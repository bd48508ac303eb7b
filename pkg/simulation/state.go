package simulation

import (
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// ErrInvalidDomain is returned when a domain has a non-positive extent.
var ErrInvalidDomain = errors.New("domain extents must be positive")

// State is one independent flock: its entities, its solver scratch space,
// the shared target and the domain used for wrapping.
//
// A State is not safe for concurrent use. Entities returned by Entities are
// only valid until the next Tick.
type State struct {
	cfg    *Config
	store  *EntityStore
	solver *Solver
	target geometry.Vector2D
	domain geometry.Vector2D
}

// Initialize validates cfg and domain, places the flock and builds the grids.
func Initialize(cfg *Config, domain geometry.Vector2D) (*State, error) {
	if err := validateDomain(domain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store := NewEntityStore(cfg.MaxEntities, domain,
		SpeedRange{Min: -cfg.EntityMaxSpeed, Max: cfg.EntityMaxSpeed},
		Placement{
			Seed:      cfg.Seed,
			Scale:     cfg.NoiseScale,
			Threshold: cfg.NoiseThreshold,
			Radius:    cfg.EntityRadius,
		})
	return newState(cfg, store, domain), nil
}

// InitializeWith builds a State around explicitly placed entities, skipping
// the random placement.
func InitializeWith(cfg *Config, domain geometry.Vector2D, entities []Entity) (*State, error) {
	if err := validateDomain(domain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newState(cfg, NewEntityStoreFrom(entities), domain), nil
}

func newState(cfg *Config, store *EntityStore, domain geometry.Vector2D) *State {
	return &State{
		cfg:    cfg,
		store:  store,
		solver: NewSolver(cfg),
		target: cfg.InitialTarget,
		domain: domain,
	}
}

func validateDomain(size geometry.Vector2D) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidDomain, size)
	}
	return nil
}

// Tick advances the flock by dt seconds. dt is expected to be already
// limited by the caller's frame pacer.
func (s *State) Tick(dt float64) {
	s.solver.Step(dt, s.store.All(), s.target, s.domain)
}

// SetTarget moves the point every boid steers toward.
func (s *State) SetTarget(p geometry.Vector2D) {
	s.target = p
}

// Target returns the current target.
func (s *State) Target() geometry.Vector2D {
	return s.target
}

// OnDomainResized changes the extent used for wrapping. Entities are not
// re-placed. An invalid size is rejected and the previous domain kept.
func (s *State) OnDomainResized(size geometry.Vector2D) error {
	if err := validateDomain(size); err != nil {
		return err
	}
	s.domain = size
	return nil
}

// Domain returns the current domain extent.
func (s *State) Domain() geometry.Vector2D {
	return s.domain
}

// Entities returns a read-only view of the flock. Do not hold it across Tick.
func (s *State) Entities() []Entity {
	return s.store.All()
}

// Snapshot returns a copy of the flock safe to keep or send elsewhere.
func (s *State) Snapshot() []Entity {
	return s.store.Snapshot()
}

// Len returns the number of entities.
func (s *State) Len() int {
	return s.store.Len()
}

// Config returns the configuration the state was built with.
func (s *State) Config() *Config {
	return s.cfg
}

// NearTarget counts the entities within TargetArrivalThreshold of the target.
func (s *State) NearTarget() int {
	limit := s.cfg.TargetArrivalThreshold * s.cfg.TargetArrivalThreshold
	n := 0
	for i := range s.store.entities {
		if s.store.entities[i].Pos.DistanceSquaredTo(s.target) < limit {
			n++
		}
	}
	return n
}

// Grids returns the cell sizes of the collision and clustering grids, for
// drawing an overlay.
func (s *State) Grids() (collision, clustering geometry.Vector2D) {
	return s.solver.Collision().CellSize(), s.solver.Clustering().CellSize()
}
