package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

// recorder is a Surface that counts drawing calls and checks state balance.
type recorder struct {
	w, h      float64
	depth     int
	composite Composite
	fills     int
	strokes   int
	rects     int
	texts     int
	badCoord  bool
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) Reset()                   { r.depth = 0; r.composite = SourceOver }
func (r *recorder) Clear(color.NRGBA)        {}
func (r *recorder) SetAlpha(float64)         {}
func (r *recorder) SetLineWidth(float64)     {}
func (r *recorder) SetGlow(float64)          {}
func (r *recorder) SetComposite(c Composite) { r.composite = c }
func (r *recorder) Save()                    { r.depth++ }
func (r *recorder) Restore()                 { r.depth-- }
func (r *recorder) Translate(x, y float64)   { r.check(x, y) }
func (r *recorder) Rotate(a float64)         { r.check(a, 0) }
func (r *recorder) BeginPath()               {}
func (r *recorder) MoveTo(x, y float64)      { r.check(x, y) }
func (r *recorder) LineTo(x, y float64)      { r.check(x, y) }
func (r *recorder) Arc(x, y, rad, a, b float64) {
	r.check(x, y)
	r.check(rad, a)
	r.check(b, 0)
}
func (r *recorder) ClosePath()   {}
func (r *recorder) Fill(Style)   { r.fills++ }
func (r *recorder) Stroke(Style) { r.strokes++ }
func (r *recorder) FillRect(x, y, w, h float64, _ Style) {
	r.check(x, y)
	r.check(w, h)
	r.rects++
}
func (r *recorder) FillText(_ string, x, y, size float64, _ Style) {
	r.check(x, y)
	r.check(size, 0)
	r.texts++
}

func (r *recorder) check(a, b float64) {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		r.badCoord = true
	}
}

func filled(n int, v byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func TestCatalogOrder(t *testing.T) {
	cat := Catalog()
	if len(cat) != 18 {
		t.Fatalf("expected 18 visualizers, got %d", len(cat))
	}
	for i, d := range cat {
		if d.ID != i+1 {
			t.Fatalf("entry %d has id %d", i, d.ID)
		}
		if d.Name == "" || d.Strategy == nil {
			t.Fatalf("entry %d is incomplete", d.ID)
		}
	}
	if cat[2].Name != "White Oscilloscope" || cat[17].Name != "Block Matrix" {
		t.Fatalf("unexpected names %q %q", cat[2].Name, cat[17].Name)
	}
}

func TestLookupAndNext(t *testing.T) {
	if Lookup(99).ID != 1 {
		t.Fatalf("unknown id should fall back to the first visualizer")
	}
	if Lookup(7).Name != "Particle Frequency Grid" {
		t.Fatalf("lookup returned %q", Lookup(7).Name)
	}
	if Next(18, 1) != 1 || Next(1, -1) != 18 || Next(5, 1) != 6 {
		t.Fatalf("next does not wrap: %d %d %d", Next(18, 1), Next(1, -1), Next(5, 1))
	}
}

func TestStrategiesHandleAnyFrame(t *testing.T) {
	frames := map[string]Frame{
		"empty":  {},
		"silent": {Frequency: make([]byte, 1024), Processed: make([]byte, 64), Waveform: filled(2048, 128)},
		"loud":   {Frequency: filled(1024, 255), Processed: filled(64, 255), Waveform: filled(2048, 255)},
		"tiny":   {Frequency: filled(3, 200), Processed: filled(1, 200), Waveform: filled(2, 0)},
	}
	configs := map[string]params.Config{
		"defaults": params.Defaults(),
		"zero":     {},
		"dense":    {Sensitivity: 10, Density: 1024, Palette: "rainbow", Glow: 40, Scale: 2, Speed: 5},
		"sparse":   {Sensitivity: 0.1, Density: 1, Palette: "rainbow_flow", Padding: 50},
	}
	for _, d := range Catalog() {
		for fname, f := range frames {
			for cname, cfg := range configs {
				r := &recorder{w: 320, h: 200}
				func() {
					defer func() {
						if p := recover(); p != nil {
							t.Fatalf("%s on %s/%s panicked: %v", d.Name, fname, cname, p)
						}
					}()
					d.Strategy.Render(r, f, cfg, 12345)
				}()
				if r.depth != 0 {
					t.Fatalf("%s on %s/%s left %d unbalanced saves", d.Name, fname, cname, r.depth)
				}
				if r.composite != SourceOver {
					t.Fatalf("%s on %s/%s left screen compositing on", d.Name, fname, cname)
				}
				if r.badCoord {
					t.Fatalf("%s on %s/%s produced a non-finite coordinate", d.Name, fname, cname)
				}
			}
		}
	}
}

func TestStrategiesDrawSomething(t *testing.T) {
	f := Frame{Frequency: filled(1024, 180), Processed: filled(64, 180), Waveform: filled(2048, 200)}
	for _, d := range Catalog() {
		r := &recorder{w: 640, h: 360}
		// Several instants so hash-driven strategies get a chance to fire.
		for ms := 0.0; ms < 2000; ms += 16 {
			d.Strategy.Render(r, f, params.Defaults(), ms)
		}
		if r.fills+r.strokes+r.rects+r.texts == 0 {
			t.Fatalf("%s drew nothing", d.Name)
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	f := Frame{Frequency: filled(1024, 90), Processed: filled(64, 90), Waveform: filled(2048, 60)}
	for _, d := range Catalog() {
		a, b := &recorder{w: 200, h: 100}, &recorder{w: 200, h: 100}
		d.Strategy.Render(a, f, params.Defaults(), 777)
		d.Strategy.Render(b, f, params.Defaults(), 777)
		if *a != *b {
			t.Fatalf("%s is not deterministic: %+v vs %+v", d.Name, *a, *b)
		}
	}
}
