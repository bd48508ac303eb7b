package viewer

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"

	"github.com/lao-tseu-is-alive/go-boids-flock/internal/world"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/ui"
)

// boids per DrawTriangles call, keeps vertex indices within uint16
const boidsPerBatch = 20000

var (
	whiteImage      = ebiten.NewImage(3, 3)
	backgroundColor = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	clusterColor    = color.RGBA{R: 70, G: 110, B: 230, A: 140}
	collisionColor  = color.RGBA{R: 200, G: 60, B: 60, A: 90}
	targetColor     = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	arrivalColor    = color.RGBA{R: 255, G: 80, B: 80, A: 60}
)

func init() {
	whiteImage.Fill(color.White)
}

// Game renders world snapshots with ebiten and turns input into world
// messages.
type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *world.Snapshot
	lastState  *world.Snapshot
	cfg        *simulation.Config

	// UI Controls
	panel      *ui.Panel
	timeScale  *ui.Slider
	showGrid   *ui.Checkbox
	showTarget *ui.Checkbox
	paused     bool

	width, height int

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns a world actor around state on system and builds the viewer
// driving it.
func NewGame(ctx context.Context, system actor.ActorSystem, state *simulation.State) (*Game, error) {
	snapshotCh := make(chan *world.Snapshot, 10)
	worldPID, err := world.Spawn(ctx, system, world.NewWorldActor(state, snapshotCh))
	if err != nil {
		return nil, err
	}

	domain := state.Domain()
	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &world.Snapshot{Target: state.Target(), Domain: domain},
		cfg:        state.Config(),
		width:      int(domain.X),
		height:     int(domain.Y),
	}

	panel := ui.NewPanel(10, 10, 200, "Flock")
	panel.AddSection("Simulation")
	g.timeScale = panel.AddSlider("Time scale", 0, 3, 1)
	panel.AddButton("Pause / Resume", func() { g.paused = !g.paused })
	panel.AddButton("Center target", g.centerTarget)
	panel.AddSection("Display")
	g.showGrid = panel.AddCheckbox("Show grid", false)
	g.showTarget = panel.AddCheckbox("Show target", true)
	panel.EndSection()
	g.panel = panel

	return g, nil
}

func (g *Game) centerTarget() {
	center := geometry.Vector2D{X: float64(g.width) / 2, Y: float64(g.height) / 2}
	_ = actor.Tell(g.ctx, g.worldPID, world.NewSetTargetCommand(center))
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Keep only the latest snapshot
Drain:
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			break Drain
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.showGrid.Value = !g.showGrid.Value
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if !g.panel.Contains(float64(mx), float64(my)) {
			p := geometry.Vector2D{X: float64(mx), Y: float64(my)}
			if err := actor.Tell(g.ctx, g.worldPID, world.NewSetTargetCommand(p)); err != nil {
				return fmt.Errorf("set target: %w", err)
			}
		}
	}

	if g.paused || g.timeScale.Value == 0 {
		return nil
	}
	dt := time.Duration(g.timeScale.Value / float64(ebiten.TPS()) * float64(time.Second))
	if err := actor.Tell(g.ctx, g.worldPID, world.NewTick(dt)); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundColor)
	snap := g.lastState

	if g.showGrid.Value {
		drawGrid(screen, snap.CollisionCell, collisionColor)
		drawGrid(screen, snap.ClusteringCell, clusterColor)
	}

	g.drawBoids(screen, snap.Entities)

	if g.showTarget.Value {
		tx, ty := float32(snap.Target.X), float32(snap.Target.Y)
		vector.StrokeCircle(screen, tx, ty, 8, 2, targetColor, true)
		vector.StrokeCircle(screen, tx, ty, float32(g.cfg.TargetArrivalThreshold), 1, arrivalColor, true)
	}

	g.panel.Draw(screen)

	state := "running"
	if g.paused {
		state = "paused"
	}
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nBoids: %d\nNear target: %d\nTick: %d (%s)\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		len(snap.Entities),
		snap.NearTarget,
		snap.Tick, state,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-170, 10)
}

// drawGrid strokes the cell boundaries of a grid with the given cell size.
func drawGrid(screen *ebiten.Image, cell geometry.Vector2D, clr color.Color) {
	if cell.X <= 0 || cell.Y <= 0 {
		return
	}
	w, h := float32(screen.Bounds().Dx()), float32(screen.Bounds().Dy())
	for x := 0.0; x <= float64(w); x += cell.X {
		vector.StrokeLine(screen, float32(x), 0, float32(x), h, 1, clr, false)
	}
	for y := 0.0; y <= float64(h); y += cell.Y {
		vector.StrokeLine(screen, 0, float32(y), w, float32(y), 1, clr, false)
	}
}

// drawBoids batches one triangle per boid, pointing along its velocity.
func (g *Game) drawBoids(screen *ebiten.Image, entities []simulation.Entity) {
	op := &ebiten.DrawTrianglesOptions{}
	for start := 0; start < len(entities); start += boidsPerBatch {
		end := min(start+boidsPerBatch, len(entities))
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
		for i := start; i < end; i++ {
			g.appendBoid(&entities[i], uint16(3*(i-start)))
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, op)
	}
}

func (g *Game) appendBoid(b *simulation.Entity, base uint16) {
	angle := b.Vel.Angle()
	// faster boids are drawn warmer
	heat := float32(math.Min(b.Speed()/g.cfg.MaxSpeed, 1))

	tip := b.Pos.Add(geometry.NewVectorPolar(6, angle))
	right := b.Pos.Add(geometry.NewVectorPolar(5, angle+2.5))
	left := b.Pos.Add(geometry.NewVectorPolar(5, angle-2.5))

	for _, p := range []geometry.Vector2D{tip, right, left} {
		g.vertices = append(g.vertices, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 1, SrcY: 1,
			ColorR: 0.4 + 0.6*heat, ColorG: 0.8 - 0.4*heat, ColorB: 1 - 0.6*heat, ColorA: 1,
		})
	}
	g.indices = append(g.indices, base, base+1, base+2)
}

// Layout follows the window size and forwards changes to the world as a
// domain resize.
func (g *Game) Layout(w, h int) (int, int) {
	if w != g.width || h != g.height {
		g.width, g.height = w, h
		_ = actor.Tell(g.ctx, g.worldPID, world.NewResizeCommand(geometry.Vector2D{X: float64(w), Y: float64(h)}))
	}
	return w, h
}
