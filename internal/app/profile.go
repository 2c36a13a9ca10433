package app

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// profiler appends per-section frame timings to a CSV file. A nil profiler
// is valid and records nothing.
type profiler struct {
	file  *os.File
	out   *csv.Writer
	frame int
	start time.Time
	last  time.Time
	row   [4]string
}

func newProfiler(path string, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		logger.Printf("profiler disabled: %v", err)
		return nil
	}
	p := &profiler{file: f, out: csv.NewWriter(f)}
	_ = p.out.Write([]string{"timestamp", "frame", "section", "delta_ms"})
	return p
}

func (p *profiler) beginFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.frame++
	p.start = now
	p.last = now
}

// markSection records the time since the previous mark under name.
func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := time.Now()
	p.write(now, name, now.Sub(p.last))
	p.last = now
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.write(now, "frame_total", now.Sub(p.start))
	p.out.Flush()
}

func (p *profiler) write(now time.Time, section string, d time.Duration) {
	p.row[0] = now.Format(time.RFC3339Nano)
	p.row[1] = strconv.Itoa(p.frame)
	p.row[2] = section
	p.row[3] = strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64)
	_ = p.out.Write(p.row[:])
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	p.out.Flush()
	if err := p.out.Error(); err != nil {
		p.file.Close()
		return fmt.Errorf("profiler: %w", err)
	}
	return p.file.Close()
}
