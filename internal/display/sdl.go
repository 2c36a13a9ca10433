//go:build sdl

package display

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"
)

// Window presents frames in a resizable SDL window through a streaming
// texture.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	texW     int
	texH     int
	scale    int
	title    string
}

// NewWindow opens a width x height window. Frames are rendered at
// 1/pixelScale of the window size and stretched to fit.
func NewWindow(title string, width, height, pixelScale int) (*Window, error) {
	if pixelScale <= 0 {
		pixelScale = 1
	}
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("sdl window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("sdl renderer: %w", err)
	}
	return &Window{window: window, renderer: renderer, scale: pixelScale, title: title}, nil
}

func (w *Window) Size() (int, int) {
	ww, wh := w.window.GetSize()
	return max(1, int(ww)/w.scale), max(1, int(wh)/w.scale)
}

func (w *Window) Present(img *image.RGBA, status string) error {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if w.texture == nil || w.texW != width || w.texH != height {
		if w.texture != nil {
			w.texture.Destroy()
			w.texture = nil
		}
		tex, err := w.renderer.CreateTexture(
			sdl.PIXELFORMAT_ABGR8888,
			sdl.TEXTUREACCESS_STREAMING,
			int32(width), int32(height),
		)
		if err != nil {
			return fmt.Errorf("sdl texture: %w", err)
		}
		w.texture, w.texW, w.texH = tex, width, height
	}

	if status != "" && status != w.title {
		w.window.SetTitle(status)
		w.title = status
	}
	if err := w.texture.Update(nil, img.Pix, img.Stride); err != nil {
		return err
	}
	if err := w.renderer.Clear(); err != nil {
		return err
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return err
	}
	w.renderer.Present()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			return ErrQuit
		}
	}
	return nil
}

func (w *Window) Close() error {
	if w.texture != nil {
		w.texture.Destroy()
		w.texture = nil
	}
	if w.renderer != nil {
		w.renderer.Destroy()
		w.renderer = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}

// SupportsWindow reports whether the SDL window is compiled in.
func SupportsWindow() bool { return true }
