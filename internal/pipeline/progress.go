package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives page progress during a document run. Calls
// may come from several page workers at once.
type ProgressCallback interface {
	// OnStart is called once with the number of pages.
	OnStart(total int)

	// OnProgress is called after each finished page with the count of
	// pages done so far.
	OnProgress(done, total int)

	// OnComplete is called when the run ends.
	OnComplete()

	// OnError is called when OCR fails on a page.
	OnError(page int, err error)
}

// NoOpProgressCallback is the default when no reporting is wanted.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(int)         {}
func (NoOpProgressCallback) OnProgress(int, int) {}
func (NoOpProgressCallback) OnComplete()         {}
func (NoOpProgressCallback) OnError(int, error)  {}

// ConsoleProgressCallback draws a page progress bar on a terminal.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	lastUpdate     time.Time
	updateInterval time.Duration
	mutex          sync.Mutex
	startTime      time.Time
	showETA        bool
	showRate       bool
}

// NewConsoleProgressCallback creates a new console progress reporter.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          50,
		updateInterval: 100 * time.Millisecond,
		showETA:        true,
		showRate:       true,
	}
}

// WithWidth sets the progress bar width.
func (c *ConsoleProgressCallback) WithWidth(width int) *ConsoleProgressCallback {
	c.width = width
	return c
}

// WithUpdateInterval sets how frequently the progress bar updates.
func (c *ConsoleProgressCallback) WithUpdateInterval(interval time.Duration) *ConsoleProgressCallback {
	c.updateInterval = interval
	return c
}

// WithOptions configures display options.
func (c *ConsoleProgressCallback) WithOptions(showETA, showRate bool) *ConsoleProgressCallback {
	c.showETA = showETA
	c.showRate = showRate
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}

	_, _ = fmt.Fprintf(c.writer, "%s0/%d pages (0.0%%)\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(done, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && done < total {
		return
	}
	c.lastUpdate = now

	c.drawProgressBar(done, total, now)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(page int, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sOCR failed on page %d: %v\n", c.prefix, page, err)
}

func (c *ConsoleProgressCallback) drawProgressBar(done, total int, now time.Time) {
	if total == 0 {
		return
	}

	percent := float64(done) / float64(total) * 100.0
	filled := int(float64(c.width) * float64(done) / float64(total))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	status := fmt.Sprintf("\r%s[%s] %d/%d pages (%.1f%%)", c.prefix, bar, done, total, percent)

	elapsed := now.Sub(c.startTime)
	if (!c.showRate && !c.showETA) || elapsed <= 0 || done <= 0 {
		_, _ = fmt.Fprint(c.writer, status)
		return
	}
	perPage := elapsed / time.Duration(done)
	if c.showRate {
		status += fmt.Sprintf(" %v/page", perPage.Round(time.Millisecond))
	}
	if c.showETA && done < total {
		eta := perPage * time.Duration(total-done)
		status += fmt.Sprintf(" ETA: %v", eta.Round(time.Second))
	}

	_, _ = fmt.Fprint(c.writer, status)
}

// LogProgressCallback reports page progress through slog.
type LogProgressCallback struct {
	logger    *slog.Logger
	level     slog.Level
	interval  int // log every N pages
	mu        sync.Mutex
	lastLog   int
	startTime time.Time
}

// NewLogProgressCallback creates a log-based progress reporter.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{
		logger:   logger,
		level:    level,
		interval: 10,
	}
}

// WithInterval sets how often to log progress, in pages.
func (l *LogProgressCallback) WithInterval(interval int) *LogProgressCallback {
	if interval > 0 {
		l.interval = interval
	}
	return l
}

func (l *LogProgressCallback) OnStart(total int) {
	l.mu.Lock()
	l.startTime = time.Now()
	l.lastLog = 0
	l.mu.Unlock()
	l.logger.Log(context.Background(), l.level, "Extraction started", "pages", total)
}

func (l *LogProgressCallback) OnProgress(done, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if done-l.lastLog < l.interval && done != total {
		return
	}
	l.lastLog = done
	l.logger.Log(context.Background(), l.level, "Extraction progress",
		"done", done,
		"total", total,
		"percent", fmt.Sprintf("%.1f", float64(done)/float64(total)*100.0),
		"elapsed", time.Since(l.startTime).Round(time.Millisecond),
	)
}

func (l *LogProgressCallback) OnComplete() {
	l.mu.Lock()
	elapsed := time.Since(l.startTime)
	l.mu.Unlock()
	l.logger.Log(context.Background(), l.level, "Extraction finished", "elapsed", elapsed.Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(page int, err error) {
	l.logger.Log(context.Background(), slog.LevelError, "Page failed", "page", page, "error", err)
}

// MultiProgressCallback combines multiple progress callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback creates a progress callback that reports to multiple callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

// Add adds another progress callback.
func (m *MultiProgressCallback) Add(callback ProgressCallback) {
	m.callbacks = append(m.callbacks, callback)
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnProgress(done, total int) {
	for _, cb := range m.callbacks {
		cb.OnProgress(done, total)
	}
}

func (m *MultiProgressCallback) OnComplete() {
	for _, cb := range m.callbacks {
		cb.OnComplete()
	}
}

func (m *MultiProgressCallback) OnError(page int, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(page, err)
	}
}
