package termview

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lao-tseu-is-alive/go-boids-flock/internal/world"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
)

func TestHeadingRune(t *testing.T) {
	tests := []struct {
		vel  geometry.Vector2D
		want rune
	}{
		{geometry.Vector2D{X: 1}, '→'},
		{geometry.Vector2D{X: -1}, '←'},
		{geometry.Vector2D{Y: 1}, '↓'},
		{geometry.Vector2D{Y: -1}, '↑'},
		{geometry.Vector2D{X: 1, Y: 1}, '↘'},
		{geometry.Vector2D{X: -1, Y: -1}, '↖'},
		{geometry.Vector2D{X: 1, Y: -1}, '↗'},
		{geometry.Vector2D{X: -1, Y: 1}, '↙'},
		{geometry.Vector2D{X: -1, Y: -0.0001}, '←'},
		{geometry.Vector2D{}, '•'},
	}
	for _, tt := range tests {
		if got := headingRune(tt.vel); got != tt.want {
			t.Errorf("headingRune(%v) = %q; want %q", tt.vel, got, tt.want)
		}
	}
}

func TestToCell(t *testing.T) {
	domain := geometry.Vector2D{X: 800, Y: 600}
	tests := []struct {
		name   string
		p      geometry.Vector2D
		x, y   int
		inside bool
	}{
		{"origin", geometry.Vector2D{}, 0, 0, true},
		{"center", geometry.Vector2D{X: 400, Y: 300}, 40, 15, true},
		{"last cell", geometry.Vector2D{X: 799, Y: 599}, 79, 29, true},
		{"far edge", geometry.Vector2D{X: 800, Y: 300}, 0, 0, false},
		{"wrap margin", geometry.Vector2D{X: -10, Y: 300}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := toCell(tt.p, domain, 80, 30)
			if ok != tt.inside || (ok && (x != tt.x || y != tt.y)) {
				t.Errorf("toCell(%v) = %d, %d, %v; want %d, %d, %v", tt.p, x, y, ok, tt.x, tt.y, tt.inside)
			}
		})
	}
	if _, _, ok := toCell(geometry.Vector2D{}, domain, 0, 30); ok {
		t.Error("zero-width screen should draw nothing")
	}
}

func TestToDomainRoundTrip(t *testing.T) {
	domain := geometry.Vector2D{X: 800, Y: 600}
	for _, c := range [][2]int{{0, 0}, {10, 5}, {79, 29}} {
		p := toDomain(c[0], c[1], 80, 30, domain)
		x, y, ok := toCell(p, domain, 80, 30)
		if !ok || x != c[0] || y != c[1] {
			t.Errorf("cell %v -> %v -> %d, %d", c, p, x, y)
		}
	}
}

func TestView_Render(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(80, 31)

	v := &View{
		screen: screen,
		last: &world.Snapshot{
			Domain: geometry.Vector2D{X: 800, Y: 600},
			Target: geometry.Vector2D{X: 400, Y: 300},
			Entities: []simulation.Entity{
				{Pos: geometry.Vector2D{X: 5, Y: 5}, Vel: geometry.Vector2D{X: 3}},
				{Pos: geometry.Vector2D{X: 795, Y: 595}, Vel: geometry.Vector2D{Y: -3}},
			},
			NearTarget: 0,
			Tick:       7,
		},
	}
	v.Render()

	cell := func(x, y int) rune {
		r, _, _, _ := screen.GetContent(x, y)
		return r
	}
	if got := cell(0, 0); got != '→' {
		t.Errorf("boid at (0,0) drawn as %q", got)
	}
	if got := cell(79, 29); got != '↑' {
		t.Errorf("boid at (79,29) drawn as %q", got)
	}
	if got := cell(40, 15); got != '◎' {
		t.Errorf("target drawn as %q", got)
	}
	if got := cell(1, 30); got != 'b' {
		t.Errorf("status line starts with %q; want it on the last row", got)
	}
}
