package display

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func newTestTerminal(out *bytes.Buffer, profile ColorProfile, scale int) *Terminal {
	t := NewTerminal(TerminalConfig{Out: out, Fd: -1, Columns: 4, Rows: 3, PixelScale: scale, Status: true, Profile: profile})
	out.Reset()
	return t
}

func TestTerminalSizeAccountsForStatusAndScale(t *testing.T) {
	var out bytes.Buffer
	term := newTestTerminal(&out, ProfileTrueColor, 2)
	if w, h := term.Size(); w != 8 || h != 8 {
		t.Fatalf("size = %dx%d, want 8x8", w, h)
	}
}

func TestTerminalTrueColorHalfBlocks(t *testing.T) {
	var out bytes.Buffer
	term := newTestTerminal(&out, ProfileTrueColor, 1)
	w, h := term.Size()
	img := solid(w, h, color.RGBA{R: 255, A: 255})
	// bottom half of every cell blue
	for y := 1; y < h; y += 2 {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	if err := term.Present(img, "ok"); err != nil {
		t.Fatalf("present: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "\x1b[38;2;255;0;0m") || !strings.Contains(s, "\x1b[48;2;0;0;255m") {
		t.Fatalf("missing truecolor sequences: %q", s)
	}
	if n := strings.Count(s, "▀"); n != 8 {
		t.Fatalf("expected 8 cells, got %d", n)
	}
	// colors are only emitted when they change within a row
	if n := strings.Count(s, "\x1b[38;2;255;0;0m"); n != 2 {
		t.Fatalf("expected one foreground switch per row, got %d", n)
	}
	if !strings.HasSuffix(s, "ok  ") {
		t.Fatalf("status line missing: %q", s)
	}
}

func TestTerminalBoxAverages(t *testing.T) {
	var out bytes.Buffer
	term := newTestTerminal(&out, ProfileTrueColor, 2)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})
	if got := term.cellColor(img, 0, 0); got != [3]int{100, 0, 0} {
		t.Fatalf("average = %v", got)
	}
	if got := term.cellColor(img, 5, 5); got != [3]int{} {
		t.Fatalf("out of bounds cell should be black, got %v", got)
	}
}

func TestTerminal256AndPlain(t *testing.T) {
	if got := rgbToANSI([3]int{255, 0, 0}); got != 196 {
		t.Fatalf("red = %d", got)
	}
	if got := rgbToANSI([3]int{128, 128, 128}); got != 244 {
		t.Fatalf("gray = %d", got)
	}

	var out bytes.Buffer
	term := newTestTerminal(&out, Profile256, 1)
	w, h := term.Size()
	if err := term.Present(solid(w, h, color.RGBA{R: 255, A: 255}), ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[38;5;196m") {
		t.Fatalf("missing 256-color sequence: %q", out.String())
	}

	out.Reset()
	plain := newTestTerminal(&out, ProfileNone, 1)
	w, h = plain.Size()
	if err := plain.Present(solid(w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255}), ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	if strings.Contains(out.String(), "\x1b[38") || !strings.Contains(out.String(), "@@@@") {
		t.Fatalf("plain output should be ASCII: %q", out.String())
	}
}

func TestStatusLine(t *testing.T) {
	if got := statusLine("abcdef", 3); got != "abc" {
		t.Fatalf("truncate: %q", got)
	}
	if got := statusLine("ab", 4); got != "ab  " {
		t.Fatalf("pad: %q", got)
	}
}
