package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/analyzer"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/display"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/render"
)

// Config configures the application runtime.
type Config struct {
	Source       audio.SourceKind
	DeviceName   string
	DisableAudio bool
	Width        int
	Height       int
	PixelScale   int
	TargetFPS    float64
	FFTSize      int
	// Smoothing overrides the stored default when positive.
	Smoothing   float64
	Visualizer  int
	Palette     string
	ConfigPath  string
	Window      bool
	ShowStatus  bool
	ProfilePath string
	Log         *log.Logger

	// Presenter and Open replace the terminal/SDL output and the PortAudio
	// capture when set.
	Presenter display.Presenter
	Open      audio.Opener
}

// Status is a point-in-time summary of the running visualizer.
type Status struct {
	Visualizer int             `json:"visualizer"`
	Name       string          `json:"name"`
	Source     string          `json:"source"`
	Device     string          `json:"device,omitempty"`
	Active     bool            `json:"active"`
	FPS        float64         `json:"fps"`
	FrameMs    float64         `json:"frameMs"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Levels     analyzer.Levels `json:"levels"`
	Config     params.Config   `json:"config"`
}

type inputEvent int

const (
	inputEventRandomize inputEvent = iota
	inputEventQuit
	inputEventNext
	inputEventPrev
	inputEventMicrophone
	inputEventSystem
	inputEventCloseSource
	inputEventResetProfile
)

// App ties together audio capture, frame processing, rendering and output.
type App struct {
	cfg       Config
	log       *log.Logger
	store     *params.Store
	session   *audio.Session
	canvas    *render.Canvas
	presenter display.Presenter
	loop      *Loop
	prof      *profiler
	rng       *rand.Rand

	inputEvents chan inputEvent
	width       int
	height      int
	last        time.Time
	statusText  strings.Builder
	scratch     []float64

	mu     sync.Mutex
	status Status
}

// New constructs the application. A capture failure is logged and leaves
// the visualizer idle; it is not returned.
func New(cfg Config) (*App, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "", log.LstdFlags)
	}
	if cfg.PixelScale <= 0 {
		cfg.PixelScale = 1
	}
	if cfg.Visualizer == 0 {
		cfg.Visualizer = 1
	}

	store := params.NewStore(params.Defaults(), cfg.Visualizer)
	if cfg.ConfigPath != "" {
		f, err := params.LoadFile(cfg.ConfigPath)
		switch {
		case err == nil:
			f.Apply(store)
			cfg.Log.Printf("settings loaded from %s", cfg.ConfigPath)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}
	if cfg.Palette != "" {
		store.UpdateDefaults(params.Overrides{Palette: params.Ptr(cfg.Palette)})
	}
	if cfg.Smoothing > 0 {
		store.UpdateDefaults(params.Overrides{Smoothing: params.Ptr(cfg.Smoothing)})
	}

	open := cfg.Open
	if open == nil && cfg.DisableAudio {
		open = openSynthetic
		cfg.Log.Println("audio disabled, using synthetic generator")
	}
	session, err := audio.NewSession(audio.SessionConfig{
		DeviceName:    cfg.DeviceName,
		TransformSize: cfg.FFTSize,
		Smoothing:     store.Snapshot().Config.Smoothing,
		Open:          open,
		Log:           cfg.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("audio session: %w", err)
	}

	presenter := cfg.Presenter
	if presenter == nil {
		if cfg.Window {
			w, err := display.NewWindow("AURALIS", cfg.Width, cfg.Height, cfg.PixelScale)
			if err != nil {
				return nil, fmt.Errorf("window: %w", err)
			}
			presenter = w
		} else {
			presenter = display.NewTerminal(display.TerminalConfig{
				Columns:    cfg.Width,
				Rows:       cfg.Height,
				PixelScale: cfg.PixelScale,
				Status:     cfg.ShowStatus,
			})
		}
	}

	width, height := presenter.Size()
	canvas := render.NewCanvas(width, height)
	prof := newProfiler(cfg.ProfilePath, cfg.Log)

	a := &App{
		cfg:       cfg,
		log:       cfg.Log,
		store:     store,
		session:   session,
		canvas:    canvas,
		presenter: presenter,
		prof:      prof,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		width:     width,
		height:    height,
	}
	a.loop = NewLoop(LoopConfig{
		Store:    store,
		Source:   session,
		Surface:  canvas,
		Bins:     session.Bins(),
		Log:      cfg.Log,
		profiler: prof,
	})

	_ = a.OpenSource(cfg.Source)
	return a, nil
}

// Run renders until ctx is cancelled, the user quits or the output fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.startInputListener(ctx)
	pacer := NewTickerPacer(a.cfg.TargetFPS)
	defer pacer.Stop()

	done := make(chan error, 1)
	go func() {
		done <- a.loop.Run(ctx, pacer, a.present)
	}()

	for {
		select {
		case err := <-done:
			if errors.Is(err, display.ErrQuit) {
				return nil
			}
			return err
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			if evt == inputEventQuit {
				a.loop.Stop()
				return <-done
			}
			a.handleInput(evt)
		}
	}
}

// Close releases held resources.
func (a *App) Close() error {
	a.loop.Stop()
	return errors.Join(
		a.session.Close(),
		a.presenter.Close(),
		a.prof.Close(),
	)
}

// Store returns the live settings store.
func (a *App) Store() *params.Store { return a.store }

// Status returns the latest frame summary.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.status
	snap := a.store.Snapshot()
	st.Visualizer = snap.Visualizer
	st.Name = render.Lookup(snap.Visualizer).Name
	st.Config = snap.Config
	if h := a.session.Current(); h != nil {
		st.Source = h.Kind.String()
		st.Device = h.Device
	} else {
		st.Source = "idle"
		st.Device = ""
	}
	return st
}

// OpenSource switches capture to kind. Failures are logged once and leave
// the session idle.
func (a *App) OpenSource(kind audio.SourceKind) error {
	if _, err := a.session.Open(kind); err != nil {
		a.log.Printf("audio %s unavailable: %v", kind, err)
		return err
	}
	return nil
}

// CloseSource stops capture; the visualizer goes idle.
func (a *App) CloseSource() error {
	return a.session.Close()
}

// SaveSettings writes the current defaults and profiles to the settings
// file and returns its path.
func (a *App) SaveSettings() (string, error) {
	path := a.cfg.ConfigPath
	if path == "" {
		path = defaultConfigPath()
	}
	if err := params.SaveFile(path, params.Capture(a.store)); err != nil {
		return "", err
	}
	a.log.Printf("settings saved to %s", path)
	return path, nil
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "auralis.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".auralis.yaml")
}

func (a *App) present(res TickResult) error {
	if w, h := a.presenter.Size(); w != a.width || h != a.height {
		a.width, a.height = w, h
		a.loop.Resize(w, h)
	}

	now := time.Now()
	fps := 0.0
	if !a.last.IsZero() {
		if d := now.Sub(a.last).Seconds(); d > 0 {
			fps = 1 / d
		}
	}
	a.last = now

	a.mu.Lock()
	a.status.Levels, a.scratch = analyzer.Summarize(res.Gated, a.scratch)
	a.status.Active = res.Active
	a.status.FPS = fps
	a.status.FrameMs = float64(res.Took) / float64(time.Millisecond)
	a.status.Width, a.status.Height = a.width, a.height
	a.mu.Unlock()

	return a.presenter.Present(a.canvas.Image(), a.buildStatus(res, fps))
}

func (a *App) buildStatus(res TickResult, fps float64) string {
	b := &a.statusText
	b.Reset()
	b.WriteString("AURALIS | ")
	b.WriteString(strconv.Itoa(res.Visualizer))
	b.WriteByte(' ')
	b.WriteString(render.Lookup(res.Visualizer).Name)
	b.WriteString(" | palette=")
	b.WriteString(a.store.Snapshot().Config.Palette)
	if h := a.session.Current(); h != nil {
		b.WriteString(" | ")
		b.WriteString(h.Kind.String())
		b.WriteString("=")
		b.WriteString(h.Device)
	} else {
		b.WriteString(" | idle")
	}
	b.WriteString(" | fps ")
	var buf [32]byte
	b.Write(strconv.AppendFloat(buf[:0], fps, 'f', 1, 64))
	return b.String()
}

func (a *App) handleInput(evt inputEvent) {
	switch evt {
	case inputEventRandomize:
		a.randomizeVisuals()
	case inputEventNext, inputEventPrev:
		step := 1
		if evt == inputEventPrev {
			step = -1
		}
		a.store.SetVisualizer(render.Next(a.store.Snapshot().Visualizer, step))
	case inputEventMicrophone:
		_ = a.OpenSource(audio.Microphone)
	case inputEventSystem:
		_ = a.OpenSource(audio.SystemOutput)
	case inputEventCloseSource:
		if err := a.CloseSource(); err != nil {
			a.log.Printf("close source: %v", err)
		}
	case inputEventResetProfile:
		a.store.ResetProfile()
		a.log.Printf("visualizer %d settings reset", a.store.Snapshot().Visualizer)
	}
}

func (a *App) randomizeVisuals() {
	cur := a.store.Snapshot().Config
	next := params.Randomize(cur, render.PaletteIDs(), a.rng)
	a.store.Update(params.Diff(cur, next))
	a.log.Printf("randomize visuals -> palette=%s density=%d glow=%.0f", next.Palette, next.Density, next.Glow)
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			evt, ok := keyEvent(char, key)
			if !ok {
				continue
			}
			if evt == inputEventQuit {
				events <- evt
				return
			}
			select {
			case events <- evt:
			default:
			}
		}
	}()
}

func keyEvent(char rune, key keyboard.Key) (inputEvent, bool) {
	switch key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return inputEventQuit, true
	case keyboard.KeyArrowRight, keyboard.KeySpace:
		return inputEventNext, true
	case keyboard.KeyArrowLeft:
		return inputEventPrev, true
	}
	switch char {
	case 'q', 'Q':
		return inputEventQuit, true
	case 'r', 'R':
		return inputEventRandomize, true
	case 'n', 'N':
		return inputEventNext, true
	case 'p', 'P':
		return inputEventPrev, true
	case 'm', 'M':
		return inputEventMicrophone, true
	case 's', 'S':
		return inputEventSystem, true
	case 'x', 'X':
		return inputEventCloseSource, true
	case '0':
		return inputEventResetProfile, true
	}
	return 0, false
}
