package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/archsyscall/klogstream/internal/model"
	"github.com/archsyscall/klogstream/internal/sink"
)

func TestSinkDeliverText(t *testing.T) {
	var buf bytes.Buffer
	off := false
	s := New(Config{Out: &buf, Format: sink.FormatText, Color: &off})

	rec := model.LogRecord{
		Target:    model.Target{Namespace: "default", PodName: "web-1", ContainerName: "app"},
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Message:   "hello world",
	}
	if err := s.Deliver(context.Background(), rec); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "hello world") || !strings.Contains(got, "web-1/app") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSinkDeliverTextExactLayout(t *testing.T) {
	var buf bytes.Buffer
	off := false
	s := New(Config{Out: &buf, Format: sink.FormatText, Color: &off})

	rec := model.LogRecord{
		Target:    model.Target{Namespace: "default", PodName: "pod", ContainerName: "cont"},
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Message:   "INFO a",
	}
	if err := s.Deliver(context.Background(), rec); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	want := "pod/cont INFO a\n"
	if got := buf.String(); got != want {
		t.Errorf("Timestamps off: got %q, want %q", got, want)
	}
}

func TestSinkDeliverTextWithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	off := false
	s := New(Config{Out: &buf, Format: sink.FormatText, Color: &off, Timestamps: true})

	rec := model.LogRecord{
		Target:    model.Target{Namespace: "default", PodName: "pod", ContainerName: "cont"},
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Message:   "INFO a",
	}
	if err := s.Deliver(context.Background(), rec); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	want := "2024-01-02T03:04:05Z pod/cont INFO a\n"
	if got := buf.String(); got != want {
		t.Errorf("Timestamps on: got %q, want %q", got, want)
	}
}

func TestSinkDeliverJSON(t *testing.T) {
	var buf bytes.Buffer
	s := New(Config{Out: &buf, Format: sink.FormatJSON})

	rec := model.LogRecord{
		Target:  model.Target{Namespace: "default", PodName: "web-1", ContainerName: "app"},
		Message: "hello",
	}
	if err := s.Deliver(context.Background(), rec); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Errorf("expected JSON message field, got %q", buf.String())
	}
}

func TestDefaultAutosavePath(t *testing.T) {
	p := DefaultAutosavePath("/tmp")
	if !strings.HasPrefix(p, "/tmp/wake_") || !strings.HasSuffix(p, ".log") {
		t.Errorf("unexpected autosave path: %q", p)
	}
}
