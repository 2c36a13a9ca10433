package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Category tells the color engine how a palette animates.
type Category int

const (
	// StaticGradient palettes paint with a fixed bottom-to-top gradient.
	StaticGradient Category = iota
	// SpectrumIndexed palettes color each element by its position.
	SpectrumIndexed
	// DynamicTime palettes rotate their hues with time.
	DynamicTime
)

func (c Category) String() string {
	switch c {
	case SpectrumIndexed:
		return "spectrum"
	case DynamicTime:
		return "dynamic"
	default:
		return "gradient"
	}
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Palette is one catalog entry.
type Palette struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Colors   []color.NRGBA `json:"-"`
	Hex      []string      `json:"colors"`
	Category Category      `json:"category"`
}

func newPalette(id, name string, cat Category, hex ...string) Palette {
	p := Palette{ID: id, Name: name, Category: cat, Hex: hex}
	for _, h := range hex {
		p.Colors = append(p.Colors, mustHex(h))
	}
	return p
}

var palettes = []Palette{
	newPalette("neon_cyber", "Cyberpunk", StaticGradient, "#f0f", "#0ff", "#f00"),
	newPalette("rainbow_flow", "Rainbow Flow", DynamicTime),
	newPalette("sunset", "Sunset Blvd", StaticGradient, "#ff4e50", "#f9d423"),
	newPalette("oceanic", "Deep Ocean", StaticGradient, "#2e3192", "#1bffff"),
	newPalette("matrix", "The Matrix", StaticGradient, "#000000", "#0f0"),
	newPalette("fire_ice", "Fire & Ice", StaticGradient, "#f12711", "#f5af19", "#00c6ff", "#0072ff"),
	newPalette("pastel", "Pastel Dream", StaticGradient, "#ff9a9e", "#fad0c4", "#fad0c4"),
	newPalette("monochrome", "Monochrome", StaticGradient, "#fff", "#888", "#222"),
	newPalette("golden", "Golden Hour", StaticGradient, "#cac531", "#f3f9a7"),
	newPalette("royal", "Royal Violet", StaticGradient, "#7f00ff", "#e100ff"),
	newPalette("toxic", "Toxic Lime", StaticGradient, "#dce35b", "#45b649"),
	newPalette("cherry", "Cherry Bomb", StaticGradient, "#eb3349", "#f45c43"),
	newPalette("space", "Deep Space", StaticGradient, "#000000", "#434343"),
	newPalette("rainbow", "Rainbow Road", SpectrumIndexed, "#ff0000", "#ffa500", "#ffff00", "#008000", "#0000ff", "#4b0082", "#ee82ee"),
	newPalette("cotton", "Cotton Candy", StaticGradient, "#d9afd9", "#97d9e1"),
	newPalette("midnight", "Midnight City", StaticGradient, "#232526", "#414345"),
}

// Palettes returns the ordered palette catalog.
func Palettes() []Palette {
	out := make([]Palette, len(palettes))
	copy(out, palettes)
	return out
}

// PaletteIDs returns the catalog ids in order.
func PaletteIDs() []string {
	ids := make([]string, len(palettes))
	for i, p := range palettes {
		ids[i] = p.ID
	}
	return ids
}

// LookupPalette returns the palette with the given id, or the first catalog
// entry when the id is unknown.
func LookupPalette(id string) Palette {
	for _, p := range palettes {
		if p.ID == id {
			return p
		}
	}
	return palettes[0]
}

// ResolveSurfaceStyle returns the bulk style for a palette: a vertical
// gradient from the bottom edge (offset 0) to the top edge (offset 1).
func ResolveSurfaceStyle(paletteID string, width, height, timeMs float64) Style {
	p := LookupPalette(paletteID)
	g := &Gradient{X0: 0, Y0: height, X1: 0, Y1: 0}

	if p.Category == DynamicTime {
		t := timeMs * 0.05
		g.Stops = []Stop{
			{Offset: 0, Color: HSL(t, 1, 0.5)},
			{Offset: 0.5, Color: HSL(t+90, 1, 0.5)},
			{Offset: 1, Color: HSL(t+180, 1, 0.5)},
		}
		return g.Style()
	}

	switch len(p.Colors) {
	case 0:
		return Solid(white)
	case 1:
		g.Stops = []Stop{{Offset: 0, Color: p.Colors[0]}}
		return g.Style()
	}
	g.Stops = make([]Stop, len(p.Colors))
	last := float64(len(p.Colors) - 1)
	for i, c := range p.Colors {
		g.Stops[i] = Stop{Offset: float64(i) / last, Color: c}
	}
	return g.Style()
}

// ResolveIndexedColor returns a per-element color override. Static gradient
// palettes report false and callers fall back to ResolveSurfaceStyle.
func ResolveIndexedColor(paletteID string, timeMs float64, index, total int) (color.NRGBA, bool) {
	if total <= 0 {
		total = 1
	}
	pos := float64(index) / float64(total) * 360
	switch LookupPalette(paletteID).Category {
	case SpectrumIndexed:
		return HSL(pos, 1, 0.5), true
	case DynamicTime:
		return HSL(pos+timeMs*0.1, 1, 0.5), true
	default:
		return color.NRGBA{}, false
	}
}

// PaletteColor returns the k-th fixed color of a palette.
func PaletteColor(paletteID string, k int) (color.NRGBA, bool) {
	p := LookupPalette(paletteID)
	if k < 0 || k >= len(p.Colors) {
		return color.NRGBA{}, false
	}
	return p.Colors[k], true
}

// FlowColor is the time-rotating hue used by dynamic palettes, shifted by
// offset degrees.
func FlowColor(timeMs, offset float64) color.NRGBA {
	return HSL(timeMs*0.1+offset, 1, 0.5)
}

// HSL converts hue in degrees (any range) plus saturation and lightness in
// [0, 1] to an opaque color.
func HSL(h, s, l float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// HSLA is HSL with an alpha in [0, 1].
func HSLA(h, s, l, a float64) color.NRGBA {
	c := HSL(h, s, l)
	return rgba(c.R, c.G, c.B, a)
}

func mustHex(s string) color.NRGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("palette color %q: %v", s, err))
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
