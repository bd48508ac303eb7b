package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelHeight   = 15.0
	margin        = 10.0
)

// Widget is implemented by everything a Panel can lay out.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	// Height is the vertical space the widget needs below its label.
	Height() float64
	// MoveTo places the widget's top-left corner.
	MoveTo(x, y float64)
}

// section groups the widgets in [start, end) under a header.
type section struct {
	title      string
	start, end int
}

// Panel is a vertical stack of labelled widgets grouped in sections.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string

	widgets  []Widget
	labels   []string
	sections []section

	// Styling
	BGColor      color.RGBA
	BorderColor  color.RGBA
	SectionColor color.RGBA
}

// NewPanel creates an empty panel. Height grows as widgets are added.
func NewPanel(x, y, width float64, title string) *Panel {
	return &Panel{
		X:            x,
		Y:            y,
		Width:        width,
		Height:       titleHeight,
		Title:        title,
		BGColor:      color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor:  color.RGBA{R: 100, G: 100, B: 110, A: 255},
		SectionColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection opens a new section; widgets added next belong to it.
func (p *Panel) AddSection(title string) {
	p.EndSection()
	p.sections = append(p.sections, section{title: title, start: len(p.widgets), end: -1})
	p.Height += sectionHeight
}

// EndSection closes the current section, if any.
func (p *Panel) EndSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].end < 0 {
		p.sections[n-1].end = len(p.widgets)
	}
}

// AddSlider adds a slider and returns it so its Value can be read.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+margin, 0, p.Width-2*margin, min, max, value)
	p.add(label, s)
	return s
}

// AddCheckbox adds a checkbox and returns it.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, value)
	p.add(label, c)
	return c
}

// AddButton adds a full-width button calling onClick when pressed.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.Width-2*margin, 20, label, onClick)
	p.add("", b)
	return b
}

func (p *Panel) add(label string, w Widget) {
	p.widgets = append(p.widgets, w)
	p.labels = append(p.labels, label)
	if label != "" {
		p.Height += labelHeight
	}
	p.Height += w.Height() + 5
	p.layout()
}

// layout assigns every widget its position from the section structure.
func (p *Panel) layout() {
	y := p.Y + titleHeight
	next := 0
	place := func(upTo int) {
		for ; next < upTo; next++ {
			if p.labels[next] != "" {
				y += labelHeight
			}
			p.widgets[next].MoveTo(p.X+margin, y)
			y += p.widgets[next].Height() + 5
		}
	}
	for _, s := range p.sections {
		place(s.start)
		y += sectionHeight
		end := s.end
		if end < 0 {
			end = len(p.widgets)
		}
		place(end)
	}
	place(len(p.widgets))
}

// Contains reports whether a screen point lies over the panel, so clicks
// there are not forwarded to the simulation.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// Update handles input for all widgets.
func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel and all widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	y := p.Y + titleHeight
	next := 0
	draw := func(upTo int) {
		for ; next < upTo; next++ {
			if label := p.labels[next]; label != "" {
				ebitenutil.DebugPrintAt(screen, label, int(p.X+margin), int(y))
				y += labelHeight
			}
			p.widgets[next].Draw(screen)
			y += p.widgets[next].Height() + 5
		}
	}
	for _, s := range p.sections {
		draw(s.start)
		vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20, p.SectionColor, true)
		ebitenutil.DebugPrintAt(screen, s.title, int(p.X+margin), int(y+3))
		y += sectionHeight
		end := s.end
		if end < 0 {
			end = len(p.widgets)
		}
		draw(end)
	}
	draw(len(p.widgets))
}
