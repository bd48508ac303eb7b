package simulation

import (
	"errors"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

func TestInitialize(t *testing.T) {
	domain := geometry.Vector2D{X: 800, Y: 600}

	t.Run("defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		st, err := Initialize(cfg, domain)
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if st.Len() == 0 || st.Len() > cfg.MaxEntities {
			t.Errorf("Len() = %d; want in (0, %d]", st.Len(), cfg.MaxEntities)
		}
		if !st.Target().Eq(cfg.InitialTarget) {
			t.Errorf("Target() = %v; want %v", st.Target(), cfg.InitialTarget)
		}
		if !st.Domain().Eq(domain) {
			t.Errorf("Domain() = %v; want %v", st.Domain(), domain)
		}
		if st.Config() != cfg {
			t.Error("Config() should return the config the state was built with")
		}
		collision, clustering := st.Grids()
		if !collision.Eq(cfg.CollisionCellSize) || !clustering.Eq(cfg.ClusteringCellSize) {
			t.Errorf("Grids() = %v, %v; want %v, %v", collision, clustering, cfg.CollisionCellSize, cfg.ClusteringCellSize)
		}
	})

	t.Run("empty flock", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxEntities = 0
		st, err := Initialize(cfg, domain)
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		st.Tick(0.1)
		if st.Len() != 0 || st.NearTarget() != 0 {
			t.Errorf("empty flock has Len %d NearTarget %d", st.Len(), st.NearTarget())
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ClusteringCellSize = geometry.Vector2D{}
		if _, err := Initialize(cfg, domain); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("err = %v; want ErrInvalidConfig", err)
		}
	})

	t.Run("rejects invalid domain", func(t *testing.T) {
		_, err := Initialize(DefaultConfig(), geometry.Vector2D{X: -1, Y: 600})
		if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidDomain) {
			t.Errorf("err = %v; want both ErrInvalidConfig and ErrInvalidDomain", err)
		}
	})
}

func TestState_SetTarget(t *testing.T) {
	entities := []Entity{
		{Pos: geometry.Vector2D{X: 100, Y: 100}, Vel: geometry.Vector2D{X: 10}},
		{Pos: geometry.Vector2D{X: 700, Y: 500}, Vel: geometry.Vector2D{X: -10}},
	}
	st, err := InitializeWith(DefaultConfig(), geometry.Vector2D{X: 800, Y: 600}, entities)
	if err != nil {
		t.Fatalf("InitializeWith: %v", err)
	}

	// default target (400,400) is beyond the arrival threshold of both
	if n := st.NearTarget(); n != 0 {
		t.Errorf("NearTarget() = %d; want 0", n)
	}

	st.SetTarget(geometry.Vector2D{X: 120, Y: 110})
	if !st.Target().Eq(geometry.Vector2D{X: 120, Y: 110}) {
		t.Errorf("Target() = %v after SetTarget", st.Target())
	}
	if n := st.NearTarget(); n != 1 {
		t.Errorf("NearTarget() = %d; want 1", n)
	}

	// the new target is used from the next tick on
	before := st.Entities()[1].Pos.DistanceTo(st.Target())
	for i := 0; i < 30; i++ {
		st.Tick(0.05)
	}
	after := st.Entities()[1].Pos.DistanceTo(st.Target())
	if after >= before {
		t.Errorf("entity did not close in on the new target: %v -> %v", before, after)
	}
}

func TestState_OnDomainResized(t *testing.T) {
	entities := []Entity{{Pos: geometry.Vector2D{X: 790, Y: 300}, Vel: geometry.Vector2D{X: 100}}}
	st, err := InitializeWith(DefaultConfig(), geometry.Vector2D{X: 800, Y: 600}, entities)
	if err != nil {
		t.Fatalf("InitializeWith: %v", err)
	}

	for _, bad := range []geometry.Vector2D{{X: 0, Y: 600}, {X: 800, Y: -1}} {
		if err := st.OnDomainResized(bad); !errors.Is(err, ErrInvalidDomain) {
			t.Errorf("OnDomainResized(%v) err = %v; want ErrInvalidDomain", bad, err)
		}
	}
	if !st.Domain().Eq(geometry.Vector2D{X: 800, Y: 600}) {
		t.Errorf("Domain() = %v; invalid resize must keep the previous domain", st.Domain())
	}

	if err := st.OnDomainResized(geometry.Vector2D{X: 400, Y: 300}); err != nil {
		t.Fatalf("OnDomainResized: %v", err)
	}
	if !st.Entities()[0].Pos.Eq(geometry.Vector2D{X: 790, Y: 300}) {
		t.Error("resize must not move entities")
	}

	// 790 is beyond the new 400+50 edge: wraps on the next tick
	st.Tick(0.01)
	if x := st.Entities()[0].Pos.X; x != -DefaultConfig().BoundaryMargin {
		t.Errorf("x = %v after tick; want wrapped to %v", x, -DefaultConfig().BoundaryMargin)
	}
}

func TestState_SnapshotDetached(t *testing.T) {
	st, err := Initialize(DefaultConfig(), geometry.Vector2D{X: 800, Y: 600})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	snap := st.Snapshot()
	st.Tick(0.1)
	if len(snap) > 0 && snap[0] == st.Entities()[0] {
		t.Error("snapshot followed the live state across a tick")
	}
}
