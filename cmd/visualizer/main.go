package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/analyzer"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/app"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/render"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/web"
)

func main() {
	var (
		source     = flag.String("source", "mic", "Audio source (mic|system)")
		deviceName = flag.String("audio-device", "", "Optional PortAudio device name (substring match)")
		width      = flag.Int("width", 80, "Output width in terminal columns, or window width in pixels")
		height     = flag.Int("height", 24, "Output height in terminal rows, or window height in pixels")
		pixelScale = flag.Int("pixel-scale", 4, "Surface pixels per terminal half cell or window pixel")
		targetFPS  = flag.Float64("fps", 60, "Target frames per second")
		fftSize    = flag.Int("fft-size", analyzer.DefaultSize, "FFT size (power of two, 32..32768)")
		smoothing  = flag.Float64("smoothing", 0, "Spectrum smoothing in [0,1] (0 keeps the stored setting)")
		noAudio    = flag.Bool("no-audio", false, "Run with synthetic audio (for testing)")
		debug      = flag.Bool("debug", false, "Enable verbose logging")
		showStatus = flag.Bool("status", true, "Display status bar")
		visualizer = flag.Int("visualizer", 1, "Visualizer id (see -list-visualizers)")
		palette    = flag.String("palette", "", "Palette id overriding the stored default")
		configPath = flag.String("config", "", "YAML settings file (loaded at start, written by /api/save)")
		window     = flag.Bool("window", false, "Render into an SDL window (build with -tags sdl)")
		webPort    = flag.Int("web-port", 0, "Serve the control API on this port (0 disables)")
		profile    = flag.String("profile", "", "Write per-frame timings to this CSV file")
		listDevs   = flag.Bool("list-audio-devices", false, "List available audio devices and exit")
		listVis    = flag.Bool("list-visualizers", false, "List visualizers and palettes and exit")
	)

	flag.Parse()

	if *listVis {
		printCatalog()
		return
	}

	if *window {
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["width"] && !set["height"] {
			*width, *height = 960, 540
		}
		if !set["pixel-scale"] {
			*pixelScale = 1
		}
	}

	if *width <= 0 || *height <= 0 {
		log.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}
	if *targetFPS <= 0 {
		log.Fatalf("fps must be positive (got %.2f)", *targetFPS)
	}
	if !analyzer.ValidSize(*fftSize) {
		log.Fatalf("fft-size must be a power of two in [%d, %d] (got %d)", analyzer.MinSize, analyzer.MaxSize, *fftSize)
	}
	if *smoothing < 0 || *smoothing > 1 {
		log.Fatalf("smoothing must be within [0, 1] (got %.2f)", *smoothing)
	}
	kind, err := audio.ParseSourceKind(*source)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stdout, "[auralis] ", log.LstdFlags)
	if !*debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	needAudio := !*noAudio || *listDevs
	if needAudio {
		if err := audio.Initialize(); err != nil {
			logger.Fatalf("failed to initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
	}

	if *listDevs {
		printDevices(logger)
		return
	}

	a, err := app.New(app.Config{
		Source:       kind,
		DeviceName:   *deviceName,
		DisableAudio: *noAudio,
		Width:        *width,
		Height:       *height,
		PixelScale:   *pixelScale,
		TargetFPS:    *targetFPS,
		FFTSize:      *fftSize,
		Smoothing:    *smoothing,
		Visualizer:   *visualizer,
		Palette:      *palette,
		ConfigPath:   *configPath,
		Window:       *window,
		ShowStatus:   *showStatus,
		ProfilePath:  *profile,
		Log:          logger,
	})
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if *webPort > 0 {
		srv := web.NewServer(a, logger)
		go func() {
			if err := srv.Start(ctx, fmt.Sprintf(":%d", *webPort)); err != nil {
				logger.Printf("[web] server stopped: %v", err)
			}
		}()
	}

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Printf("runtime error: %v", err)
		return
	}

	time.Sleep(50 * time.Millisecond)
}

func printCatalog() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVISUALIZER\tDESCRIPTION")
	for _, d := range render.Catalog() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.Description)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PALETTE\tNAME\tKIND")
	for _, p := range render.Palettes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Category)
	}
	tw.Flush()
}

func printDevices(logger *log.Logger) {
	devices, err := audio.ListDevices()
	if err != nil {
		logger.Fatalf("list devices: %v", err)
	}
	fmt.Printf("\n=== Audio Devices ===\n\n")
	for _, dev := range devices {
		if dev.MaxInput == 0 {
			continue
		}
		markers := ""
		if dev.IsDefaultInput {
			markers += " (default)"
		}
		if dev.IsLoopback {
			markers += " (system output)"
		}
		fmt.Printf("- %s [%s]%s\n    inputs:%d outputs:%d sample:%.0f Hz\n",
			dev.Name, dev.HostAPI, markers, dev.MaxInput, dev.MaxOutput, dev.DefaultSampleHz)
	}
}
