// Package terminal implements the Terminal sink: colorized per-target
// output to an io.Writer (normally os.Stdout), with an optional autosave
// tee to a rotating file, generalizing the teacher's ConsoleHandler +
// TextFormatter/JSONFormatter pair into one sink.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/archsyscall/klogstream/internal/model"
	"github.com/archsyscall/klogstream/internal/sink"
	"github.com/archsyscall/klogstream/internal/termcolor"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the Terminal sink.
type Config struct {
	Out    io.Writer // defaults to os.Stdout
	Format sink.Format
	Color  *bool // nil = auto-detect via termcolor.Enabled

	// Timestamps shows the record's RFC 3339 timestamp as a leading
	// "<ts> " prefix in text format. Ignored by json/raw.
	Timestamps bool

	// Autosave tees every rendered line to a rotating file when set.
	AutosavePath       string
	AutosaveMaxSizeMB  int
	AutosaveMaxBackups int
}

// Sink writes rendered records to a terminal (or any writer), colorized
// per-target, with an optional autosave tee.
type Sink struct {
	cfg      Config
	mu       sync.Mutex
	out      io.Writer
	autosave io.Writer
	colorOn  bool
	assigner *termcolor.Assigner
}

// New constructs a Terminal sink from cfg.
func New(cfg Config) *Sink {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = sink.FormatText
	}

	colorOn := false
	if cfg.Color != nil {
		colorOn = *cfg.Color
	} else if f, ok := cfg.Out.(*os.File); ok {
		colorOn = termcolor.Enabled(f)
	}

	s := &Sink{cfg: cfg, out: cfg.Out, colorOn: colorOn, assigner: termcolor.NewAssigner()}

	if cfg.AutosavePath != "" {
		maxSize := cfg.AutosaveMaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		maxBackups := cfg.AutosaveMaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		s.autosave = &lumberjack.Logger{
			Filename:   cfg.AutosavePath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
	}

	return s
}

// Name identifies the sink for fan-out diagnostics.
func (s *Sink) Name() string { return "terminal" }

// Deliver renders and writes one record.
func (s *Sink) Deliver(_ context.Context, rec model.LogRecord) error {
	prefix, reset := "", ""
	if s.colorOn && s.cfg.Format == sink.FormatText {
		prefix = s.assigner.ColorFor(rec.Target.Key())
		reset = termcolor.Reset
	}
	line := sink.Render(rec, s.cfg.Format, prefix, reset, s.cfg.Timestamps)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.out, line); err != nil {
		return err
	}
	if s.autosave != nil {
		plain := sink.Render(rec, s.cfg.Format, "", "", s.cfg.Timestamps)
		fmt.Fprintln(s.autosave, plain)
	}
	return nil
}

// Close flushes the autosave writer, if any.
func (s *Sink) Close() error {
	if closer, ok := s.autosave.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// DefaultAutosavePath builds the UTC-stamped autosave filename the
// original "wake" implementation uses (src/logging/wake_logger.rs),
// adapted to Go's time formatting: a compact RFC3339-derived stamp so
// filenames sort chronologically and stay shell-safe.
func DefaultAutosavePath(dir string) string {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	if dir == "" {
		dir = "."
	}
	return dir + "/wake_" + stamp + ".log"
}
