// Package fanout implements Sink Fan-out: one bounded queue per sink,
// fed from a single upstream record channel, with a per-sink policy of
// either blocking (apply backpressure upstream) or dropping the newest
// record when the queue is full, so one slow or stuck sink never stalls
// the others.
package fanout

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/archsyscall/klogstream/internal/model"
	"go.uber.org/zap"
)

// OverflowPolicy controls what a sink's queue does when full.
type OverflowPolicy int

const (
	// Blocking applies backpressure: the fan-out stalls until the sink
	// drains room. Used by Terminal and File sinks, where spec.md
	// requires not silently losing data written to disk or a terminal.
	Blocking OverflowPolicy = iota
	// DropNewest discards the incoming record and counts it, rather
	// than block. Used by the Web sink so a stalled HTTP endpoint never
	// backs up the rest of the pipeline.
	DropNewest
)

// Sink is anything Fan-out can deliver records to.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec model.LogRecord) error
	Close() error
}

// Route describes one sink's queue and overflow behavior.
type Route struct {
	Sink     Sink
	Policy   OverflowPolicy
	QueueCap int
}

// DefaultQueueCapacity is Qsink, the default per-sink bounded queue size.
const DefaultQueueCapacity = 1024

// FanOut delivers every record it receives to each registered Route
// independently, isolating a slow/failing sink from the others.
type FanOut struct {
	routes  []*routeState
	logger  *zap.SugaredLogger
	wg      sync.WaitGroup
	dropped map[string]*uint64
}

type routeState struct {
	route Route
	queue chan model.LogRecord
}

// New creates a FanOut over the given routes.
func New(routes []Route, logger *zap.SugaredLogger) *FanOut {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	f := &FanOut{logger: logger, dropped: map[string]*uint64{}}
	for _, r := range routes {
		queueCap := r.QueueCap
		if queueCap <= 0 {
			queueCap = DefaultQueueCapacity
		}
		var zero uint64
		f.dropped[r.Sink.Name()] = &zero
		f.routes = append(f.routes, &routeState{route: r, queue: make(chan model.LogRecord, queueCap)})
	}
	return f
}

// Dropped returns the count of records dropped for a given sink name
// under DropNewest policy, for observability.
func (f *FanOut) Dropped(sinkName string) uint64 {
	if ctr, ok := f.dropped[sinkName]; ok {
		return atomic.LoadUint64(ctr)
	}
	return 0
}

// Run starts one delivery goroutine per route and blocks receiving from
// in, dispatching each record to every route's queue per its policy,
// until in is closed or ctx is canceled. It waits for delivery
// goroutines to drain before returning.
func (f *FanOut) Run(ctx context.Context, in <-chan model.LogRecord) {
	for _, rs := range f.routes {
		f.wg.Add(1)
		go f.deliverLoop(ctx, rs)
	}

	defer func() {
		for _, rs := range f.routes {
			close(rs.queue)
		}
		f.wg.Wait()
	}()

	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return
			}
			f.dispatch(ctx, rec)
		case <-ctx.Done():
			return
		}
	}
}

func (f *FanOut) dispatch(ctx context.Context, rec model.LogRecord) {
	for _, rs := range f.routes {
		switch rs.route.Policy {
		case DropNewest:
			select {
			case rs.queue <- rec:
			default:
				atomic.AddUint64(f.dropped[rs.route.Sink.Name()], 1)
				f.logger.Debugw("dropped record, sink queue full", "sink", rs.route.Sink.Name())
			}
		default: // Blocking
			select {
			case rs.queue <- rec:
			case <-ctx.Done():
			}
		}
	}
}

func (f *FanOut) deliverLoop(ctx context.Context, rs *routeState) {
	defer f.wg.Done()
	defer func() {
		if err := rs.route.Sink.Close(); err != nil {
			f.logger.Warnw("error closing sink", "sink", rs.route.Sink.Name(), "error", err)
		}
	}()
	for {
		select {
		case rec, ok := <-rs.queue:
			if !ok {
				return
			}
			if err := rs.route.Sink.Deliver(ctx, rec); err != nil {
				f.logger.Warnw("sink delivery failed", "sink", rs.route.Sink.Name(), "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
