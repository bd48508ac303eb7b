package simulation

import (
	"math/rand/v2"

	"github.com/aquilax/go-perlin"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// Perlin generator parameters used for placement.
const (
	perlinAlpha      = 2.0
	perlinBeta       = 2.0
	perlinIterations = 3
)

// Entity is one boid. It is identified by its index in the EntityStore.
type Entity struct {
	Pos    geometry.Vector2D `json:"pos"`
	Vel    geometry.Vector2D `json:"vel"`
	Radius float64           `json:"radius"`
}

// DistanceTo gives the cartesian distance from this Entity and the other
func (e *Entity) DistanceTo(other *Entity) float64 {
	return e.Pos.Sub(other.Pos).Len()
}

// Speed is the magnitude of the velocity.
func (e *Entity) Speed() float64 {
	return e.Vel.Len()
}

// SpeedRange bounds the initial velocity components.
type SpeedRange struct {
	Min, Max float64
}

// Placement drives the noise-filtered random placement of new entities.
type Placement struct {
	Seed      int64
	Scale     float64 // noise sampling scale, smaller is smoother
	Threshold float64 // keep a candidate when noise > Threshold
	Radius    float64 // radius given to every entity
}

// EntityStore owns the flat array of entities. Its length never changes after
// creation.
type EntityStore struct {
	entities []Entity
}

// NewEntityStore draws count candidate positions uniformly inside domain and
// keeps those where a Perlin noise field is above the placement threshold,
// which clusters the flock organically instead of scattering it uniformly.
// Kept entities get a velocity with each component uniform in
// [-speed.Max, speed.Max]. A zero-area domain yields an empty store.
func NewEntityStore(count int, domain geometry.Vector2D, speed SpeedRange, p Placement) *EntityStore {
	s := &EntityStore{}
	if count <= 0 || domain.X <= 0 || domain.Y <= 0 {
		return s
	}

	rng := rand.New(rand.NewPCG(uint64(p.Seed), uint64(p.Seed)^0x9e3779b97f4a7c15))
	noise := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinIterations, p.Seed)

	s.entities = make([]Entity, 0, count)
	for i := 0; i < count; i++ {
		x := rng.Float64() * domain.X
		y := rng.Float64() * domain.Y
		if noise.Noise2D(x*p.Scale, y*p.Scale) <= p.Threshold {
			continue
		}
		s.entities = append(s.entities, Entity{
			Pos: geometry.Vector2D{X: x, Y: y},
			Vel: geometry.Vector2D{
				X: uniform(rng, speed.Max),
				Y: uniform(rng, speed.Max),
			},
			Radius: p.Radius,
		})
	}
	return s
}

// NewEntityStoreFrom wraps an explicit set of entities. The store takes
// ownership of the slice.
func NewEntityStoreFrom(entities []Entity) *EntityStore {
	return &EntityStore{entities: entities}
}

// uniform returns a value uniformly drawn from [-bound, bound].
func uniform(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

// Len returns the number of entities.
func (s *EntityStore) Len() int {
	return len(s.entities)
}

// All returns the underlying entities. The slice is mutated in place by the
// solver; callers must re-fetch it after every tick.
func (s *EntityStore) All() []Entity {
	return s.entities
}

// Snapshot returns a copy of the entities that is safe to hand to another
// goroutine.
func (s *EntityStore) Snapshot() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}
