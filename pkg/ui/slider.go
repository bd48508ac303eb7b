package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal bar selecting a value in [Min, Max].
type Slider struct {
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider with value clamped into range.
func NewSlider(x, y, w, min, max, value float64) *Slider {
	s := &Slider{Min: min, Max: max, X: x, Y: y, W: w, H: 12}
	s.Value = s.clamp(value)
	return s
}

func (s *Slider) Height() float64     { return s.H }
func (s *Slider) MoveTo(x, y float64) { s.X, s.Y = x, y }

func (s *Slider) clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) >= s.X && float64(mx) <= s.X+s.W &&
		float64(my) >= s.Y && float64(my) <= s.Y+s.H {
		p := (float64(mx) - s.X) / s.W
		s.Value = s.clamp(s.Min + p*(s.Max-s.Min))
	}
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := (s.Value - s.Min) / (s.Max - s.Min)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.2f", s.Value), int(s.X+s.W-40), int(s.Y-15))
}
