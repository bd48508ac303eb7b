package world

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
)

// Snapshot is what the world pushes to a viewer after every change. It owns
// its entity slice.
type Snapshot struct {
	Entities       []simulation.Entity
	Target         geometry.Vector2D
	Domain         geometry.Vector2D
	NearTarget     int
	Tick           uint64
	CollisionCell  geometry.Vector2D
	ClusteringCell geometry.Vector2D
}

// WorldActor owns the authoritative flock state. All mutations go through
// its mailbox, so the state itself needs no locking.
type WorldActor struct {
	state *simulation.State
	// Communication with UI
	snapshotCh chan<- *Snapshot
	ticks      uint64
	// --- Benchmark Stats ---
	ticksSinceLog int
	lastLogTime   time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit around an initialized state.
func NewWorldActor(state *simulation.State, snapshotCh chan<- *Snapshot) *WorldActor {
	return &WorldActor{
		state:       state,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

// Spawn starts w on system under a unique name.
func Spawn(ctx context.Context, system actor.ActorSystem, w *WorldActor) (*actor.PID, error) {
	pid, err := system.Spawn(ctx, "world-"+uuid.NewString(), w)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	return pid, nil
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World %s is placing %d boids...", ctx.ActorName(), w.state.Len())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started: %d boids, domain %s, target %s",
			w.state.Len(), w.state.Domain(), w.state.Target())
		w.pushSnapshot()

	// The main simulation step, driven by the viewer's frame loop
	case *durationpb.Duration:
		dt := clampDelta(msg.AsDuration().Seconds(), w.state.Config().MaxDeltaTime)
		if dt == 0 {
			return
		}
		w.state.Tick(dt)
		w.ticks++
		w.ticksSinceLog++
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *structpb.Struct:
		cmd, err := DecodeCommand(msg)
		if err != nil {
			ctx.Logger().Warnf("dropping command: %v", err)
			return
		}
		w.apply(ctx, cmd)
		w.pushSnapshot()

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) apply(ctx *actor.ReceiveContext, cmd Command) {
	switch cmd.Kind {
	case kindSetTarget:
		w.state.SetTarget(cmd.Point)
	case kindResize:
		if err := w.state.OnDomainResized(cmd.Point); err != nil {
			ctx.Logger().Warnf("ignoring resize: %v", err)
			return
		}
		ctx.Logger().Debugf("domain resized to %s", cmd.Point)
	}
}

// clampDelta bounds a frame delta to [0, maxDt] so a stalled frame does not
// teleport the flock.
func clampDelta(dt, maxDt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if maxDt > 0 && dt > maxDt {
		return maxDt
	}
	return dt
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Boids: %d | Near target: %d",
			w.ticksSinceLog, w.state.Len(), w.state.NearTarget())
		w.ticksSinceLog = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.buildSnapshot():
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) buildSnapshot() *Snapshot {
	collision, clustering := w.state.Grids()
	return &Snapshot{
		Entities:       w.state.Snapshot(),
		Target:         w.state.Target(),
		Domain:         w.state.Domain(),
		NearTarget:     w.state.NearTarget(),
		Tick:           w.ticks,
		CollisionCell:  collision,
		ClusteringCell: clustering,
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World %s is shutdown after %d ticks", ctx.ActorName(), w.ticks)
	return nil
}
