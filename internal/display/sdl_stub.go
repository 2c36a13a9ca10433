//go:build !sdl

package display

import (
	"errors"
	"image"
)

// Window is unavailable without the sdl build tag.
type Window struct{}

func NewWindow(title string, width, height, pixelScale int) (*Window, error) {
	return nil, errors.New("SDL window not enabled; rebuild with -tags sdl")
}

func (w *Window) Size() (int, int)                  { return 0, 0 }
func (w *Window) Present(*image.RGBA, string) error { return ErrQuit }
func (w *Window) Close() error                      { return nil }

// SupportsWindow reports whether the SDL window is compiled in.
func SupportsWindow() bool { return false }
