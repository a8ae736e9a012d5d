package filterexpr

import (
	"context"
	"runtime"
	"sync"

	"github.com/archsyscall/klogstream/internal/model"
)

// WorkerCount returns the Filter Engine's worker pool size,
// W = max(2, 2*NumCPU), sized for a CPU-bound evaluation workload that
// still wants headroom over physical cores for I/O stalls on the
// channel send downstream.
func WorkerCount() int {
	w := 2 * runtime.NumCPU()
	if w < 2 {
		return 2
	}
	return w
}

// Engine runs a compiled Expr over an input channel of LogRecords using
// a fixed worker pool, forwarding only records that match (or all
// records, when Expr is nil) to its output channel.
type Engine struct {
	expr    Expr
	workers int
	out     chan model.LogRecord
}

// NewEngine creates an Engine. expr may be nil to pass every record
// through unfiltered. workers <= 0 uses WorkerCount().
func NewEngine(expr Expr, workers int, outCapacity int) *Engine {
	if workers <= 0 {
		workers = WorkerCount()
	}
	if outCapacity <= 0 {
		outCapacity = 1024
	}
	return &Engine{expr: expr, workers: workers, out: make(chan model.LogRecord, outCapacity)}
}

// Out returns the channel of records that passed the filter.
func (e *Engine) Out() <-chan model.LogRecord { return e.out }

// Run starts the worker pool and returns at once. Each worker reads from
// in and forwards matching records until in is closed or ctx is
// canceled; Out() is closed after every worker has exited. Records are
// not kept in arrival order: with more than one worker, two records from
// the same source can reach Out() in either order.
func (e *Engine) Run(ctx context.Context, in <-chan model.LogRecord) {
	var wg sync.WaitGroup
	wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go func() {
			defer wg.Done()
			e.worker(ctx, in)
		}()
	}

	go func() {
		wg.Wait()
		close(e.out)
	}()
}

func (e *Engine) worker(ctx context.Context, in <-chan model.LogRecord) {
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return
			}
			if e.expr == nil || e.expr.Match(rec.Message) {
				select {
				case e.out <- rec:
				case <-ctx.Done():
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
