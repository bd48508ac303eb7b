package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/spatial"
)

const (
	// maxTargetInfluence caps the target pull far away from the target.
	maxTargetInfluence = 1.2
	// nearTargetInfluence damps the pull close to the target so boids
	// circle around it instead of oscillating through it.
	nearTargetInfluence = 0.05
)

// Forces are the raw (unweighted, unnormalized) steering inputs of one boid.
type Forces struct {
	Separation geometry.Vector2D
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
	Target     geometry.Vector2D // direction to the target, already scaled by influence
}

// Solver runs the per-tick flocking update. It owns the two spatial grids and
// the pre-tick snapshot buffers as scratch space; nothing survives a Step
// except through the entities it writes back.
type Solver struct {
	cfg        *Config
	collision  *spatial.Grid
	clustering *spatial.Grid

	// pre-tick state: neighbors are always read from here, so the order in
	// which entities are updated only changes float summation order
	positions  []geometry.Vector2D
	velocities []geometry.Vector2D
}

// NewSolver builds a solver and its two grids from cfg.
func NewSolver(cfg *Config) *Solver {
	s := &Solver{
		cfg:        cfg,
		collision:  spatial.NewGrid(cfg.CollisionCellSize),
		clustering: spatial.NewGrid(cfg.ClusteringCellSize),
	}
	if cfg.BorderLayer.Enabled {
		s.collision.WithBorderLayer(cfg.BorderLayer.ObjectRadius, cfg.BorderLayer.SeparationDistance)
		s.clustering.WithBorderLayer(cfg.BorderLayer.ObjectRadius, cfg.BorderLayer.SeparationDistance)
	}
	return s
}

// Collision returns the fine grid used for short-range interactions.
func (s *Solver) Collision() *spatial.Grid { return s.collision }

// Clustering returns the coarse grid used for alignment and cohesion.
func (s *Solver) Clustering() *spatial.Grid { return s.clustering }

// Step advances entities by dt seconds toward target, wrapping them around a
// domain of the given size.
func (s *Solver) Step(dt float64, entities []Entity, target, domain geometry.Vector2D) {
	if len(entities) == 0 {
		return
	}
	s.snapshot(entities)
	s.collision.Rebuild(s.positions)
	s.clustering.Rebuild(s.positions)

	for i := range entities {
		e := &entities[i]
		f := s.forces(i, target)
		desired := s.desiredDirection(f, s.velocities[i])
		steer := s.steer(s.velocities[i], desired)

		vel := s.velocities[i].Add(steer.Mul(dt * s.cfg.BaseAccScale))
		e.Vel = vel.ClampLength(s.cfg.MinSpeed, s.cfg.MaxSpeed, desired)
		e.Pos = wrap(s.positions[i].Add(e.Vel.Mul(dt)), domain, s.cfg.BoundaryMargin)
	}
}

func (s *Solver) snapshot(entities []Entity) {
	if cap(s.positions) < len(entities) {
		s.positions = make([]geometry.Vector2D, len(entities))
		s.velocities = make([]geometry.Vector2D, len(entities))
	}
	s.positions = s.positions[:len(entities)]
	s.velocities = s.velocities[:len(entities)]
	for i := range entities {
		s.positions[i] = entities[i].Pos
		s.velocities[i] = entities[i].Vel
	}
}

// forces gathers the raw steering inputs of entity i from the grids built
// for the current tick.
func (s *Solver) forces(i int, target geometry.Vector2D) Forces {
	var f Forces
	pos := s.positions[i]

	// Separation: short range, fine grid.
	near := s.collision.Query(pos)
	if s.cfg.EnableSeparation {
		f.Separation = s.separation(i, near)
	}

	// Alignment and cohesion: longer range, coarse grid.
	var (
		alignCount, cohesionCount int
		cohesionSum               geometry.Vector2D
	)
	for _, id := range s.clustering.Query(pos) {
		if id == i {
			continue
		}
		other := s.positions[id]
		dist := pos.DistanceTo(other)

		if dist > s.cfg.AlignmentMinRadius && dist < s.cfg.AlignmentMaxRadius {
			f.Alignment = f.Alignment.Add(s.velocities[id])
			alignCount++
		}
		if dist > 0 && dist < s.cfg.CohesionRadius {
			cohesionSum = cohesionSum.Add(other)
			cohesionCount++
		}
	}
	if alignCount > 0 {
		f.Alignment = f.Alignment.Mul(1 / float64(alignCount))
	}
	if cohesionCount > 0 {
		f.Cohesion = cohesionSum.Mul(1 / float64(cohesionCount)).Sub(pos)
	}

	// Target seeking.
	toTarget := target.Sub(pos)
	if dist := toTarget.Len(); dist > 0 {
		influence := math.Min(dist/s.cfg.TargetInfluenceScale, maxTargetInfluence)
		if dist < s.cfg.TargetMinDistance {
			influence = nearTargetInfluence
		}
		f.Target = toTarget.Normalize().Mul(influence)
	}
	return f
}

// separation pushes away from close neighbors with a strength inversely
// proportional to their distance.
func (s *Solver) separation(i int, near []int) geometry.Vector2D {
	var push geometry.Vector2D
	pos := s.positions[i]
	for _, id := range near {
		if id == i {
			continue
		}
		away := pos.Sub(s.positions[id])
		distSq := away.LenSqr()
		if distSq == 0 || distSq >= s.cfg.SeparationRadius*s.cfg.SeparationRadius {
			continue
		}
		// (away / d) / d
		push = push.Add(away.Mul(1 / distSq))
	}
	return push
}

// desiredDirection blends the weighted unit forces into a heading. Zero
// forces are skipped rather than normalized. With nothing to follow the boid
// keeps its current heading.
func (s *Solver) desiredDirection(f Forces, vel geometry.Vector2D) geometry.Vector2D {
	var dir geometry.Vector2D
	add := func(force geometry.Vector2D, weight float64) {
		if force.IsZero() {
			return
		}
		dir = dir.Add(force.Normalize().Mul(weight))
	}
	add(f.Separation, s.cfg.SeparationWeight)
	add(f.Alignment, s.cfg.AlignmentWeight)
	add(f.Cohesion, s.cfg.CohesionWeight)
	if !f.Target.IsZero() {
		// the target keeps its influence magnitude
		dir = dir.Add(f.Target.Mul(s.cfg.TargetWeight))
	}

	if d := dir.Normalize(); !d.IsZero() {
		return d
	}
	return vel.Normalize()
}

// steer turns the current heading toward desired by a fraction that shrinks
// for sharp turns, then scales it to the steering force.
func (s *Solver) steer(vel, desired geometry.Vector2D) geometry.Vector2D {
	current := vel.Normalize()
	angle := current.AngleBetween(desired)
	angleFactor := math.Min(angle/math.Pi, 1)
	t := s.cfg.SteerStrength * (1 - angleFactor*s.cfg.SteerAngleFactor)
	return current.Slerp(desired, t, angle).Mul(s.cfg.MaxSteerForce)
}

// wrap re-enters a position that left [-margin, extent+margin] from the
// opposite edge.
func wrap(p, domain geometry.Vector2D, margin float64) geometry.Vector2D {
	if p.X < -margin {
		p.X = domain.X + margin
	} else if p.X > domain.X+margin {
		p.X = -margin
	}
	if p.Y < -margin {
		p.Y = domain.Y + margin
	} else if p.Y > domain.Y+margin {
		p.Y = -margin
	}
	return p
}
