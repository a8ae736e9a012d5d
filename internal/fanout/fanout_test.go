package fanout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/archsyscall/klogstream/internal/model"
)

type fakeSink struct {
	name    string
	mu      sync.Mutex
	got     []model.LogRecord
	block   chan struct{}
	closed  bool
}

func newFakeSink(name string) *fakeSink { return &fakeSink{name: name} }

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Deliver(ctx context.Context, rec model.LogRecord) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, rec)
	return nil
}

func (f *fakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSink) records() []model.LogRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.LogRecord, len(f.got))
	copy(out, f.got)
	return out
}

func TestFanOutDeliversToAllSinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	a := newFakeSink("a")
	b := newFakeSink("b")
	f := New([]Route{
		{Sink: a, Policy: Blocking, QueueCap: 4},
		{Sink: b, Policy: Blocking, QueueCap: 4},
	}, nil)

	in := make(chan model.LogRecord, 4)
	go f.Run(ctx, in)

	in <- model.LogRecord{Message: "hello"}
	close(in)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	if len(a.records()) != 1 || len(b.records()) != 1 {
		t.Fatalf("expected both sinks to receive 1 record, got a=%d b=%d", len(a.records()), len(b.records()))
	}
}

func TestFanOutDropNewestIsolatesSlowSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := newFakeSink("slow")
	slow.block = make(chan struct{}) // never closes: sink never drains

	fast := newFakeSink("fast")

	f := New([]Route{
		{Sink: slow, Policy: DropNewest, QueueCap: 1},
		{Sink: fast, Policy: Blocking, QueueCap: 16},
	}, nil)

	in := make(chan model.LogRecord, 16)
	go f.Run(ctx, in)

	for i := 0; i < 10; i++ {
		in <- model.LogRecord{Message: "x"}
	}
	close(in)

	time.Sleep(100 * time.Millisecond)

	if len(fast.records()) != 10 {
		t.Fatalf("expected fast sink to receive all 10 records despite slow sink, got %d", len(fast.records()))
	}
	if f.Dropped("slow") == 0 {
		t.Errorf("expected some records dropped for the slow sink")
	}
}
