package app

import (
	"bytes"
	"context"
	"image/color"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/render"
)

type fakeSampler struct {
	active    bool
	reads     int
	smoothing []float64
}

func (f *fakeSampler) SampleInto(fr *audio.Frame) bool {
	if !f.active {
		return false
	}
	f.reads++
	if len(fr.Frequency) != 1024 {
		fr.Frequency = make([]byte, 1024)
		fr.Waveform = make([]byte, 2048)
	}
	for i := range fr.Frequency {
		fr.Frequency[i] = byte(i % 256)
	}
	return true
}

func (f *fakeSampler) SetSmoothing(v float64) { f.smoothing = append(f.smoothing, v) }

type call struct {
	id        int
	w, h      float64
	freq      int
	processed int
	timeMs    float64
}

type recordingStrategy struct {
	id    int
	calls *[]call
	panic bool
}

func (r recordingStrategy) Render(s render.Surface, f render.Frame, cfg params.Config, timeMs float64) {
	if r.panic {
		panic("boom")
	}
	w, h := s.Size()
	*r.calls = append(*r.calls, call{r.id, w, h, len(f.Frequency), len(f.Processed), timeMs})
	s.FillRect(0, 0, w, h, render.Solid(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
}

func newTestLoop(t *testing.T, src Sampler, panicking map[int]bool) (*Loop, *params.Store, *render.Canvas, *[]call, time.Time) {
	t.Helper()
	calls := &[]call{}
	store := params.NewStore(params.Defaults(), 1)
	canvas := render.NewCanvas(32, 16)
	start := time.Unix(1000, 0)
	loop := NewLoop(LoopConfig{
		Store:   store,
		Source:  src,
		Surface: canvas,
		Bins:    1024,
		Start:   start,
		Lookup: func(id int) render.Descriptor {
			return render.Descriptor{ID: id, Name: "test", Strategy: recordingStrategy{id: id, calls: calls, panic: panicking[id]}}
		},
	})
	return loop, store, canvas, calls, start
}

func TestIdleTickClearsWithoutRendering(t *testing.T) {
	src := &fakeSampler{}
	loop, _, canvas, calls, start := newTestLoop(t, src, nil)

	canvas.FillRect(0, 0, 32, 16, render.Solid(color.NRGBA{R: 200, A: 255}))
	res := loop.Tick(start.Add(time.Second))
	if res.Active {
		t.Fatalf("expected idle tick")
	}
	if len(*calls) != 0 {
		t.Fatalf("strategy must not run while idle, got %d calls", len(*calls))
	}
	if px := canvas.Image().RGBAAt(3, 3); px.R != 0 || px.A != 255 {
		t.Fatalf("idle surface should be black, got %v", px)
	}
}

func TestNilSourceIsIdle(t *testing.T) {
	loop, _, _, calls, start := newTestLoop(t, nil, nil)
	if res := loop.Tick(start); res.Active || len(*calls) != 0 {
		t.Fatalf("nil source should idle")
	}
}

func TestTickRendersActiveVisualizer(t *testing.T) {
	src := &fakeSampler{active: true}
	loop, store, _, calls, start := newTestLoop(t, src, nil)
	store.SetVisualizer(2)

	res := loop.Tick(start.Add(1500 * time.Millisecond))
	if !res.Active || res.Visualizer != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one render, got %d", len(*calls))
	}
	c := (*calls)[0]
	if c.id != 2 || c.freq != 1024 || c.processed != 64 {
		t.Fatalf("unexpected call %+v", c)
	}
	if c.timeMs != 1500 {
		t.Fatalf("timeMs = %v, want 1500", c.timeMs)
	}
	// threshold 10 zeroes bins 0..9
	if res.Gated[5] != 0 || res.Gated[20] != 20 {
		t.Fatalf("gating not applied: %d %d", res.Gated[5], res.Gated[20])
	}
}

func TestVisualizerSwitchTakesEffectNextTick(t *testing.T) {
	src := &fakeSampler{active: true}
	loop, store, _, calls, start := newTestLoop(t, src, nil)

	loop.Tick(start)
	store.SetVisualizer(9)
	loop.Tick(start.Add(16 * time.Millisecond))

	if len(*calls) != 2 || (*calls)[0].id != 1 || (*calls)[1].id != 9 {
		t.Fatalf("unexpected calls %+v", *calls)
	}
}

func TestResizeAppliedBeforeDraw(t *testing.T) {
	src := &fakeSampler{active: true}
	loop, _, canvas, calls, start := newTestLoop(t, src, nil)

	loop.Resize(40, 30)
	loop.Tick(start)
	if c := (*calls)[0]; c.w != 40 || c.h != 30 {
		t.Fatalf("strategy saw %vx%v, want 40x30", c.w, c.h)
	}
	if w, h := canvas.Size(); w != 40 || h != 30 {
		t.Fatalf("canvas is %vx%v", w, h)
	}
}

func TestSmoothingPushedOnChange(t *testing.T) {
	src := &fakeSampler{active: true}
	loop, store, _, _, start := newTestLoop(t, src, nil)

	loop.Tick(start)
	loop.Tick(start)
	store.Update(params.Overrides{Smoothing: params.Ptr(0.3)})
	loop.Tick(start)

	if len(src.smoothing) != 2 || src.smoothing[0] != 0.8 || src.smoothing[1] != 0.3 {
		t.Fatalf("unexpected smoothing pushes %v", src.smoothing)
	}
}

func TestStrategyPanicRecovered(t *testing.T) {
	var logs bytes.Buffer
	src := &fakeSampler{active: true}
	loop, store, canvas, calls, start := newTestLoop(t, src, map[int]bool{4: true})
	loop.log = log.New(&logs, "", 0)
	store.SetVisualizer(4)

	for i := 0; i < 3; i++ {
		res := loop.Tick(start)
		if !res.Recovered {
			t.Fatalf("tick %d: expected recovery", i)
		}
	}
	if n := strings.Count(logs.String(), "failed"); n != 1 {
		t.Fatalf("failure should be logged once, got %d:\n%s", n, logs.String())
	}
	if px := canvas.Image().RGBAAt(1, 1); px.R != 0 {
		t.Fatalf("surface should be cleared after a failure, got %v", px)
	}

	store.SetVisualizer(5)
	if res := loop.Tick(start); res.Recovered || len(*calls) != 1 {
		t.Fatalf("healthy visualizer should render after a failing one")
	}
}

type instantPacer struct{}

func (instantPacer) Wait(ctx context.Context) error { return ctx.Err() }

func TestRunUntilStop(t *testing.T) {
	src := &fakeSampler{active: true}
	loop, _, _, calls, _ := newTestLoop(t, src, nil)

	presented := 0
	err := loop.Run(context.Background(), instantPacer{}, func(res TickResult) error {
		presented++
		if presented == 3 {
			loop.Stop()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if presented != 3 || len(*calls) != 3 {
		t.Fatalf("presented %d frames, rendered %d", presented, len(*calls))
	}
	if loop.surface != nil || loop.source != nil {
		t.Fatalf("run should drop its bindings once stopped")
	}
	if res := loop.Tick(time.Now()); res.Active {
		t.Fatalf("tick after stop should be a no-op")
	}
}

func TestStopReleasesSurface(t *testing.T) {
	src := &fakeSampler{active: true}
	loop, _, canvas, calls, start := newTestLoop(t, src, nil)

	loop.Tick(start)
	canvas.FillRect(0, 0, 32, 16, render.Solid(color.NRGBA{R: 200, A: 255}))
	loop.Stop()
	loop.Resize(64, 64)

	if res := loop.Tick(start.Add(time.Second)); res.Active {
		t.Fatalf("tick after stop should be a no-op")
	}
	if loop.surface != nil || loop.source != nil {
		t.Fatalf("stop should release the surface and source")
	}
	if len(*calls) != 1 || src.reads != 1 {
		t.Fatalf("rendered %d frames, sampled %d after stop", len(*calls), src.reads)
	}
	img := canvas.Image()
	if img.Rect.Dx() != 32 || img.RGBAAt(3, 3).R != 200 {
		t.Fatalf("released surface was touched: %v %v", img.Rect, img.RGBAAt(3, 3))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	loop, _, _, _, _ := newTestLoop(t, &fakeSampler{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop.Run(ctx, instantPacer{}, nil); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
