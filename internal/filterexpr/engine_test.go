package filterexpr

import (
	"context"
	"testing"
	"time"

	"github.com/archsyscall/klogstream/internal/model"
)

func TestEngineFiltersRecords(t *testing.T) {
	expr, err := Parse("error")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan model.LogRecord, 4)
	engine := NewEngine(expr, 2, 4)
	go engine.Run(ctx, in)

	in <- model.LogRecord{Message: "an error occurred"}
	in <- model.LogRecord{Message: "all good"}
	close(in)

	var got []model.LogRecord
	timeout := time.After(time.Second)
	for {
		select {
		case rec, ok := <-engine.Out():
			if !ok {
				if len(got) != 1 {
					t.Fatalf("expected 1 matching record, got %d: %v", len(got), got)
				}
				if got[0].Message != "an error occurred" {
					t.Errorf("got %q, want %q", got[0].Message, "an error occurred")
				}
				return
			}
			got = append(got, rec)
		case <-timeout:
			t.Fatal("timed out waiting for engine output")
		}
	}
}

func TestEngineNilExprPassesEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan model.LogRecord, 2)
	engine := NewEngine(nil, 2, 2)
	go engine.Run(ctx, in)

	in <- model.LogRecord{Message: "one"}
	in <- model.LogRecord{Message: "two"}
	close(in)

	count := 0
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-engine.Out():
			if !ok {
				if count != 2 {
					t.Fatalf("expected 2 records passed through, got %d", count)
				}
				return
			}
			count++
		case <-timeout:
			t.Fatal("timed out")
		}
	}
}

func TestWorkerCount(t *testing.T) {
	if WorkerCount() < 2 {
		t.Errorf("WorkerCount() = %d, want >= 2", WorkerCount())
	}
}
