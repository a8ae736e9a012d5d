package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/archsyscall/klogstream/internal/model"
)

func TestSinkDeliverAndFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	rec := model.LogRecord{
		Target:  model.Target{Namespace: "default", PodName: "web-1", ContainerName: "app"},
		Message: "hello file sink",
	}
	if err := s.Deliver(context.Background(), rec); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.Contains(string(data), "hello file sink") {
		t.Errorf("expected file to contain delivered message, got %q", string(data))
	}
}

func TestSinkAppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s1, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	s1.Deliver(context.Background(), model.LogRecord{Message: "first"})
	s1.Close()

	s2, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	s2.Deliver(context.Background(), model.LogRecord{Message: "second"})
	s2.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("expected both writes appended, got %q", string(data))
	}
}
