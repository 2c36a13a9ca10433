package display

import (
	"bufio"
	"image"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ColorProfile is the color depth used for terminal output.
type ColorProfile int

const (
	ProfileAuto ColorProfile = iota
	ProfileNone
	Profile256
	ProfileTrueColor
)

// DetectProfile inspects NO_COLOR, COLORTERM and TERM.
func DetectProfile() ColorProfile {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return ProfileNone
	}
	colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
	termName := strings.ToLower(os.Getenv("TERM"))
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return ProfileTrueColor
	case termName == "", termName == "dumb":
		return ProfileNone
	default:
		return Profile256
	}
}

// TerminalConfig configures a Terminal.
type TerminalConfig struct {
	Out io.Writer
	// Fd is queried for the terminal size; a negative value uses Columns and
	// Rows as-is.
	Fd      int
	Columns int
	Rows    int
	// PixelScale is the number of surface pixels per half cell.
	PixelScale int
	Status     bool
	Profile    ColorProfile
}

// Terminal draws frames with upper half block glyphs, two pixels per cell.
type Terminal struct {
	cfg  TerminalConfig
	out  *bufio.Writer
	cols int
	rows int
	buf  []byte
	fg   [3]int
	bg   [3]int
}

// NewTerminal switches to the alternate screen and hides the cursor.
func NewTerminal(cfg TerminalConfig) *Terminal {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
		cfg.Fd = int(os.Stdout.Fd())
	}
	if cfg.Columns <= 0 {
		cfg.Columns = 80
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 24
	}
	if cfg.PixelScale <= 0 {
		cfg.PixelScale = 1
	}
	if cfg.Profile == ProfileAuto {
		cfg.Profile = DetectProfile()
	}
	t := &Terminal{cfg: cfg, out: bufio.NewWriterSize(cfg.Out, 1<<16)}
	t.out.WriteString("\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l")
	t.out.Flush()
	return t
}

// Size returns the surface size matching the current terminal grid.
func (t *Terminal) Size() (int, int) {
	t.cols, t.rows = t.cfg.Columns, t.cfg.Rows
	if t.cfg.Fd >= 0 {
		if w, h, err := term.GetSize(t.cfg.Fd); err == nil && w > 0 && h > 0 {
			t.cols, t.rows = w, h
		}
	}
	if t.cfg.Status && t.rows > 1 {
		t.rows--
	}
	s := t.cfg.PixelScale
	return t.cols * s, t.rows * 2 * s
}

// Present writes img scaled onto the terminal grid, followed by the status
// line when enabled.
func (t *Terminal) Present(img *image.RGBA, status string) error {
	if t.cols == 0 {
		t.Size()
	}
	b := t.buf[:0]
	b = append(b, "\x1b[H"...)
	for row := 0; row < t.rows; row++ {
		t.fg, t.bg = [3]int{-1}, [3]int{-1}
		for col := 0; col < t.cols; col++ {
			top := t.cellColor(img, col, row*2)
			bottom := t.cellColor(img, col, row*2+1)
			b = t.appendCell(b, top, bottom)
		}
		b = append(b, "\x1b[0m"...)
		if row < t.rows-1 || t.cfg.Status {
			b = append(b, '\r', '\n')
		}
	}
	if t.cfg.Status {
		b = append(b, statusLine(status, t.cols)...)
	}
	t.buf = b
	if _, err := t.out.Write(b); err != nil {
		return err
	}
	return t.out.Flush()
}

// Close restores the cursor and the main screen.
func (t *Terminal) Close() error {
	t.out.WriteString("\x1b[0m\x1b[?25h\x1b[?1049l")
	return t.out.Flush()
}

// cellColor box-averages the pixels covered by half cell (col, half).
func (t *Terminal) cellColor(img *image.RGBA, col, half int) [3]int {
	s := t.cfg.PixelScale
	r := img.Rect
	x0, y0 := r.Min.X+col*s, r.Min.Y+half*s
	x1, y1 := min(x0+s, r.Max.X), min(y0+s, r.Max.Y)
	if x0 >= x1 || y0 >= y1 {
		return [3]int{}
	}
	var sum [3]int
	n := 0
	for y := y0; y < y1; y++ {
		i := img.PixOffset(x0, y)
		for x := x0; x < x1; x++ {
			sum[0] += int(img.Pix[i])
			sum[1] += int(img.Pix[i+1])
			sum[2] += int(img.Pix[i+2])
			i += 4
			n++
		}
	}
	return [3]int{sum[0] / n, sum[1] / n, sum[2] / n}
}

const asciiRamp = " .:-=+*#%@"

func (t *Terminal) appendCell(b []byte, top, bottom [3]int) []byte {
	switch t.cfg.Profile {
	case ProfileNone:
		l := (luma(top) + luma(bottom)) / 2
		return append(b, asciiRamp[min(len(asciiRamp)-1, int(l*float64(len(asciiRamp))))])
	case Profile256:
		top = [3]int{rgbToANSI(top), 0, 0}
		bottom = [3]int{rgbToANSI(bottom), 0, 0}
	}
	if top != t.fg {
		b = t.appendColor(b, 38, top)
		t.fg = top
	}
	if bottom != t.bg {
		b = t.appendColor(b, 48, bottom)
		t.bg = bottom
	}
	return append(b, "▀"...)
}

func (t *Terminal) appendColor(b []byte, layer int, c [3]int) []byte {
	b = append(b, "\x1b["...)
	b = strconv.AppendInt(b, int64(layer), 10)
	if t.cfg.Profile == Profile256 {
		b = append(b, ";5;"...)
		b = strconv.AppendInt(b, int64(c[0]), 10)
		return append(b, 'm')
	}
	b = append(b, ";2;"...)
	for i, v := range c {
		if i > 0 {
			b = append(b, ';')
		}
		b = strconv.AppendInt(b, int64(v), 10)
	}
	return append(b, 'm')
}

func luma(c [3]int) float64 {
	return (0.2126*float64(c[0]) + 0.7152*float64(c[1]) + 0.0722*float64(c[2])) / 255
}

// rgbToANSI maps a color to the xterm 256-color cube, using the gray ramp
// for near-neutral colors.
func rgbToANSI(c [3]int) int {
	r, g, b := float64(c[0])/255, float64(c[1])/255, float64(c[2])/255
	if math.Abs(r-g) < 0.02 && math.Abs(g-b) < 0.02 {
		return 232 + int(math.Round(r*23))
	}
	ri := int(r*5 + 0.5)
	gi := int(g*5 + 0.5)
	bi := int(b*5 + 0.5)
	return 16 + 36*ri + 6*gi + bi
}

func statusLine(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}
