package app

import (
	"context"
	"image/color"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/frame"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/render"
)

// Sampler is the audio side of the loop. *audio.Session implements it.
type Sampler interface {
	SampleInto(f *audio.Frame) bool
	SetSmoothing(v float64)
}

// Target is a drawing surface the loop can resize.
type Target interface {
	render.Surface
	Resize(width, height int)
}

// LoopConfig wires a Loop.
type LoopConfig struct {
	Store   *params.Store
	Source  Sampler
	Surface Target
	// Bins pre-sizes the processor buffers.
	Bins int
	// Lookup resolves visualizer ids. render.Lookup is used when nil.
	Lookup func(id int) render.Descriptor
	Start  time.Time
	Log    *log.Logger

	profiler *profiler
}

// TickResult describes one rendered frame. Gated is only valid until the
// next tick.
type TickResult struct {
	Visualizer int
	Name       string
	Active     bool
	Recovered  bool
	TimeMs     float64
	Gated      []byte
	Took       time.Duration
}

// Pacer blocks until the next frame is due.
type Pacer interface {
	Wait(ctx context.Context) error
}

type size struct{ w, h int }

// Loop drives sample, process and render once per tick. All methods except
// Resize and Stop must be called from a single goroutine.
type Loop struct {
	store     *params.Store
	source    Sampler
	surface   Target
	lookup    func(int) render.Descriptor
	processor *frame.Processor
	log       *log.Logger
	prof      *profiler

	audio     audio.Frame
	start     time.Time
	smoothing float64
	current   int
	failed    map[int]bool

	pending atomic.Pointer[size]
	stopped atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewLoop returns a loop ready to tick.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Lookup == nil {
		cfg.Lookup = render.Lookup
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}
	if cfg.Log == nil {
		cfg.Log = log.New(io.Discard, "", 0)
	}
	return &Loop{
		store:     cfg.Store,
		source:    cfg.Source,
		surface:   cfg.Surface,
		lookup:    cfg.Lookup,
		processor: frame.NewProcessor(cfg.Bins),
		log:       cfg.Log,
		prof:      cfg.profiler,
		start:     cfg.Start,
		smoothing: -1,
		failed:    make(map[int]bool),
	}
}

// Resize records a new surface size. It takes effect at the start of the
// next tick.
func (l *Loop) Resize(width, height int) {
	l.pending.Store(&size{width, height})
}

// Tick renders one frame for time now.
func (l *Loop) Tick(now time.Time) TickResult {
	if l.stopped.Load() {
		l.release()
		return TickResult{}
	}
	start := time.Now()
	l.prof.beginFrame()

	if sz := l.pending.Swap(nil); sz != nil {
		l.surface.Resize(sz.w, sz.h)
		l.log.Printf("surface resized to %dx%d", sz.w, sz.h)
	}

	st := l.store.Snapshot()
	cfg := st.Config
	res := TickResult{
		Visualizer: st.Visualizer,
		TimeMs:     float64(now.Sub(l.start)) / float64(time.Millisecond),
	}

	if l.source != nil && cfg.Smoothing != l.smoothing {
		l.source.SetSmoothing(cfg.Smoothing)
		l.smoothing = cfg.Smoothing
	}

	if l.source == nil || !l.source.SampleInto(&l.audio) {
		l.surface.Reset()
		l.surface.Clear(color.NRGBA{A: 255})
		l.prof.markSection("idle")
		res.Took = time.Since(start)
		return res
	}
	l.prof.markSection("sample")

	out := l.processor.Process(l.audio.Frequency, cfg)
	l.prof.markSection("process")

	desc := l.lookup(st.Visualizer)
	if desc.ID != l.current {
		l.log.Printf("visualizer %d (%s)", desc.ID, desc.Name)
		l.current = desc.ID
	}
	res.Visualizer = desc.ID
	res.Name = desc.Name

	l.surface.Reset()
	res.Recovered = !l.draw(desc, render.Frame{
		Frequency: out.Gated,
		Processed: out.Processed,
		Waveform:  l.audio.Waveform,
	}, cfg, res.TimeMs)
	l.prof.markSection("render")

	res.Active = true
	res.Gated = out.Gated
	res.Took = time.Since(start)
	return res
}

// draw runs the strategy and reports false when it panicked.
func (l *Loop) draw(d render.Descriptor, f render.Frame, cfg params.Config, timeMs float64) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			if !l.failed[d.ID] {
				l.failed[d.ID] = true
				l.log.Printf("visualizer %d (%s) failed: %v", d.ID, d.Name, p)
			}
			l.surface.Reset()
			l.surface.Clear(color.NRGBA{A: 255})
			ok = false
		}
	}()
	d.Strategy.Render(l.surface, f, cfg, timeMs)
	return true
}

// Run ticks until ctx is cancelled, Stop is called or present fails. A tick
// starts only after the previous one has been presented.
func (l *Loop) Run(ctx context.Context, pacer Pacer, present func(TickResult) error) error {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()
	defer func() {
		if l.stopped.Load() {
			l.release()
		}
	}()

	for !l.stopped.Load() {
		if err := pacer.Wait(ctx); err != nil {
			if l.stopped.Load() {
				return nil
			}
			return err
		}
		res := l.Tick(time.Now())
		if present != nil {
			if err := present(res); err != nil {
				return err
			}
		}
		l.prof.markSection("present")
		l.prof.endFrame()
	}
	return nil
}

// Stop ends Run after the current tick. Later ticks are no-ops. The surface
// and source bindings are dropped on the render goroutine, when Run returns
// or at the next Tick.
func (l *Loop) Stop() {
	l.stopped.Store(true)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
}

func (l *Loop) release() {
	l.surface = nil
	l.source = nil
}

// TickerPacer paces frames with a time.Ticker.
type TickerPacer struct {
	ticker *time.Ticker
}

// NewTickerPacer returns a pacer for fps frames per second.
func NewTickerPacer(fps float64) *TickerPacer {
	if fps <= 0 {
		fps = 60
	}
	return &TickerPacer{ticker: time.NewTicker(time.Duration(float64(time.Second) / fps))}
}

func (p *TickerPacer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

// Reset changes the frame rate.
func (p *TickerPacer) Reset(fps float64) {
	if fps > 0 {
		p.ticker.Reset(time.Duration(float64(time.Second) / fps))
	}
}

func (p *TickerPacer) Stop() { p.ticker.Stop() }
