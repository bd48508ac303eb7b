package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tochemey/goakt/v3/actor"

	"github.com/lao-tseu-is-alive/go-boids-flock/internal/world"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
)

const frameInterval = 33 * time.Millisecond // ~30 FPS

// headings indexed by octant, clockwise from +X in screen space (Y down)
var headings = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var (
	boidStyle   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	targetStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// View draws the flock on a terminal, scaling the whole domain onto the
// available cells.
type View struct {
	screen    tcell.Screen
	ctx       context.Context
	worldPID  *actor.PID
	snapshots chan *world.Snapshot
	last      *world.Snapshot
	paused    bool
}

// New spawns a world actor around state and prepares screen to display it.
// The caller owns screen and must have called Init on it.
func New(ctx context.Context, system actor.ActorSystem, state *simulation.State, screen tcell.Screen) (*View, error) {
	snapshots := make(chan *world.Snapshot, 4)
	pid, err := world.Spawn(ctx, system, world.NewWorldActor(state, snapshots))
	if err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	return &View{
		screen:    screen,
		ctx:       ctx,
		worldPID:  pid,
		snapshots: snapshots,
		last:      &world.Snapshot{Target: state.Target(), Domain: state.Domain()},
	}, nil
}

// Run drives the world and redraws until the user quits or ctx is done.
func (v *View) Run() error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-v.ctx.Done():
			return v.ctx.Err()
		case ev := <-events:
			quit, err := v.handleEvent(ev)
			if err != nil || quit {
				return err
			}
		case <-ticker.C:
			v.drain()
			if !v.paused {
				if err := actor.Tell(v.ctx, v.worldPID, world.NewTick(frameInterval)); err != nil {
					return fmt.Errorf("tick: %w", err)
				}
			}
			v.Render()
		}
	}
}

func (v *View) drain() {
	for {
		select {
		case snap := <-v.snapshots:
			v.last = snap
		default:
			return
		}
	}
}

func (v *View) handleEvent(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true, nil
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true, nil
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			v.paused = !v.paused
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'c':
			center := v.last.Domain.Mul(0.5)
			return false, actor.Tell(v.ctx, v.worldPID, world.NewSetTargetCommand(center))
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false, nil
		}
		x, y := ev.Position()
		w, h := v.screen.Size()
		p := toDomain(x, y, w, h-1, v.last.Domain)
		return false, actor.Tell(v.ctx, v.worldPID, world.NewSetTargetCommand(p))
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false, nil
}

// Render draws the last snapshot. The bottom row is the status line.
func (v *View) Render() {
	v.screen.Clear()
	w, h := v.screen.Size()
	rows := h - 1
	snap := v.last

	for i := range snap.Entities {
		e := &snap.Entities[i]
		if x, y, ok := toCell(e.Pos, snap.Domain, w, rows); ok {
			v.screen.SetContent(x, y, headingRune(e.Vel), nil, boidStyle)
		}
	}
	if x, y, ok := toCell(snap.Target, snap.Domain, w, rows); ok {
		v.screen.SetContent(x, y, '◎', nil, targetStyle)
	}

	state := "running"
	if v.paused {
		state = "paused"
	}
	status := []rune(fmt.Sprintf(" boids %d | near target %d | tick %d | %s | click: target  space: pause  c: center  q: quit ",
		len(snap.Entities), snap.NearTarget, snap.Tick, state))
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(status) {
			r = status[x]
		}
		v.screen.SetContent(x, h-1, r, nil, statusStyle)
	}
	v.screen.Show()
}

// headingRune picks the arrow closest to the direction of vel.
func headingRune(vel geometry.Vector2D) rune {
	if vel.IsZero() {
		return '•'
	}
	octant := int(math.Round(vel.Angle()/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return headings[octant]
}

// toCell maps a domain position onto a w×h cell grid. Positions in the wrap
// margin fall outside and are not drawn.
func toCell(p, domain geometry.Vector2D, w, h int) (int, int, bool) {
	if w <= 0 || h <= 0 || domain.X <= 0 || domain.Y <= 0 {
		return 0, 0, false
	}
	x := int(math.Floor(p.X / domain.X * float64(w)))
	y := int(math.Floor(p.Y / domain.Y * float64(h)))
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, 0, false
	}
	return x, y, true
}

// toDomain maps the center of cell (x, y) back to domain coordinates.
func toDomain(x, y, w, h int, domain geometry.Vector2D) geometry.Vector2D {
	if w <= 0 || h <= 0 {
		return domain.Mul(0.5)
	}
	return geometry.Vector2D{
		X: (float64(x) + 0.5) / float64(w) * domain.X,
		Y: (float64(y) + 0.5) / float64(h) * domain.Y,
	}
}
