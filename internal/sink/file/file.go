// Package file implements the File sink: buffered append writes to a
// single file, flushed on shutdown, generalizing the
// examples/custom/main.go CustomLogHandler pattern from the teacher
// into a first-class sink sharing the Terminal sink's formatting.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/archsyscall/klogstream/internal/model"
	"github.com/archsyscall/klogstream/internal/sink"
)

// Config configures the File sink.
type Config struct {
	Path   string
	Format sink.Format

	// Timestamps shows the record's RFC 3339 timestamp as a leading
	// "<ts> " prefix in text format. Ignored by json/raw.
	Timestamps bool
}

// Sink appends rendered records to a file, buffering writes and
// flushing them on Close (the Supervisor calls Close during its
// drain phase).
type Sink struct {
	cfg  Config
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
}

// New opens (creating/appending) the configured file.
func New(cfg Config) (*Sink, error) {
	if cfg.Format == "" {
		cfg.Format = sink.FormatText
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file sink: failed to open %s: %w", cfg.Path, err)
	}
	return &Sink{cfg: cfg, f: f, w: bufio.NewWriter(f)}, nil
}

// Name identifies the sink for fan-out diagnostics.
func (s *Sink) Name() string { return "file:" + s.cfg.Path }

// Deliver writes one rendered record to the buffered writer.
func (s *Sink) Deliver(_ context.Context, rec model.LogRecord) error {
	line := sink.Render(rec, s.cfg.Format, "", "", s.cfg.Timestamps)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		return err
	}
	return nil
}

// Close flushes the buffer and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
