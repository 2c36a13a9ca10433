// Package display puts rendered frames in front of the user.
package display

import (
	"errors"
	"image"
)

// ErrQuit is returned by Present when the user closed the output.
var ErrQuit = errors.New("display closed")

// Presenter shows frames. Size reports the pixel size frames should be
// rendered at; it may change between calls when the output is resized.
type Presenter interface {
	Size() (width, height int)
	Present(img *image.RGBA, status string) error
	Close() error
}
