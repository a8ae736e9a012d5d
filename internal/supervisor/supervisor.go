// Package supervisor owns the end-to-end pipeline: Selector watch ->
// one Source Reader per target -> Stream Merger -> Filter Engine ->
// Sink Fan-out, and drives the Configuring -> Starting -> Running ->
// Draining -> Stopped lifecycle, generalizing the teacher's
// Streamer.Start/Stop (stopOnce/stopCh/wg.Wait) from "one handler" to
// "every pipeline component."
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/archsyscall/klogstream/internal/apierrors"
	"github.com/archsyscall/klogstream/internal/fanout"
	"github.com/archsyscall/klogstream/internal/filterexpr"
	"github.com/archsyscall/klogstream/internal/kube"
	"github.com/archsyscall/klogstream/internal/merge"
	"github.com/archsyscall/klogstream/internal/model"
	"github.com/archsyscall/klogstream/internal/reader"
	"github.com/archsyscall/klogstream/internal/selector"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"k8s.io/client-go/kubernetes"
)

// GracePeriod is how long Stop waits for in-flight deliveries to drain
// before the pipeline is torn down unconditionally.
const GracePeriod = 3 * time.Second

// Config assembles every pipeline component's configuration.
type Config struct {
	KubeClientProvider *kube.ClientProvider
	Selector           *selector.Selector
	// IncludeExpr and ExcludeExpr are independently configured trees;
	// the Filter Engine evaluates matches(IncludeExpr, r) &&
	// !matches(ExcludeExpr, r), per filterexpr.Combine. A nil
	// IncludeExpr accepts everything; a nil ExcludeExpr excludes
	// nothing.
	IncludeExpr filterexpr.Expr
	ExcludeExpr filterexpr.Expr
	Routes      []fanout.Route

	MergerCapacity      int
	FilterWorkers       int
	FilterOutCapacity   int
	ReaderChannelCap    int
	ReaderMaxMultilines int
	ReaderMatcher       reader.MultilineMatcher
	ReaderTailLines     *int64
	RetryPolicy         reader.RetryPolicy

	Logger *zap.SugaredLogger
}

// Supervisor owns one running pipeline instance.
type Supervisor struct {
	cfg       Config
	clientset kubernetes.Interface
	logger    *zap.SugaredLogger

	mu    sync.Mutex
	state State

	cancel  context.CancelFunc
	errCh   chan error
	doneCh  chan struct{}

	merger *merge.Merger
	fanout *fanout.FanOut

	readerMu sync.Mutex
	readers  map[string]context.CancelFunc
}

// New validates cfg and builds a Supervisor, starting in Configuring.
func New(cfg Config) (*Supervisor, error) {
	if cfg.KubeClientProvider == nil {
		return nil, apierrors.New(fmt.Errorf("kube client provider is required"), apierrors.KindConfiguration, true, "supervisor config")
	}
	if cfg.Selector == nil {
		return nil, apierrors.New(fmt.Errorf("selector is required"), apierrors.KindConfiguration, true, "supervisor config")
	}
	if err := cfg.Selector.Validate(); err != nil {
		return nil, apierrors.New(err, apierrors.KindConfiguration, true, "invalid selector")
	}
	if len(cfg.Routes) == 0 {
		return nil, apierrors.New(fmt.Errorf("at least one sink route is required"), apierrors.KindConfiguration, true, "supervisor config")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	return &Supervisor{
		cfg:     cfg,
		logger:  cfg.Logger,
		state:   Configuring,
		errCh:   make(chan error, 64),
		doneCh:  make(chan struct{}),
		readers: map[string]context.CancelFunc{},
	}, nil
}

// Errors returns the channel every component's errors are reported on.
func (s *Supervisor) Errors() <-chan error { return s.errCh }

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.logger.Infow("supervisor state transition", "state", st.String())
}

// Start resolves the Kubernetes clientset, wires Merger -> Filter Engine
// -> Fan-out, begins watching for targets, and transitions to Running.
// It returns once the pipeline is wired; the pipeline itself keeps
// running until ctx is canceled or Stop is called.
func (s *Supervisor) Start(ctx context.Context) error {
	s.setState(Starting)

	clientset, err := s.cfg.KubeClientProvider.GetClientset()
	if err != nil {
		s.setState(Stopped)
		return apierrors.New(err, apierrors.KindConfiguration, true, "failed to create kubernetes clientset")
	}
	s.clientset = clientset

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.merger = merge.New(s.cfg.MergerCapacity)
	engine := filterexpr.NewEngine(filterexpr.Combine(s.cfg.IncludeExpr, s.cfg.ExcludeExpr), s.cfg.FilterWorkers, s.cfg.FilterOutCapacity)
	s.fanout = fanout.New(s.cfg.Routes, s.logger)

	// The three fixed, lifetime-of-the-pipeline stages (Merger, Filter
	// Engine, Fan-out) share one errgroup so a stage that returns an
	// error tears down its siblings via the derived context (each stage
	// currently returns nil; panics are not recovered);
	// per-target Source Readers are started/stopped dynamically below
	// and don't fit the group's fixed-membership shape.
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { s.merger.Run(gctx); return nil })
	g.Go(func() error { engine.Run(gctx, s.merger.Out()); return nil })
	g.Go(func() error { s.fanout.Run(gctx, engine.Out()); return nil })

	events := make(chan selector.TargetEvent, 64)
	watchErrCh := make(chan error, 64)
	selector.Watch(runCtx, clientset, s.cfg.Selector, s.cfg.KubeClientProvider.ContextName, events, watchErrCh)

	go s.forwardErrors(runCtx, watchErrCh)
	go s.consumeEvents(runCtx, events)

	s.setState(Running)

	go func() {
		<-runCtx.Done()
		_ = g.Wait()
		close(s.doneCh)
	}()

	return nil
}

func (s *Supervisor) consumeEvents(ctx context.Context, events <-chan selector.TargetEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case selector.TargetAdded:
				s.addTarget(ctx, ev.Target)
			case selector.TargetRemoved:
				s.removeTarget(ctx, ev.Target)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Supervisor) addTarget(ctx context.Context, target model.Target) {
	key := target.Key()

	s.readerMu.Lock()
	if _, exists := s.readers[key]; exists {
		s.readerMu.Unlock()
		return
	}
	readerCtx, cancel := context.WithCancel(ctx)
	s.readers[key] = cancel
	s.readerMu.Unlock()

	r := reader.New(reader.Config{
		Clientset:     s.clientset,
		Target:        target,
		Since:         s.cfg.Selector.Since,
		TailLines:     s.cfg.ReaderTailLines,
		Matcher:       s.cfg.ReaderMatcher,
		MaxMultilines: s.cfg.ReaderMaxMultilines,
		RetryPolicy:   s.cfg.RetryPolicy,
		ChannelCap:    s.cfg.ReaderChannelCap,
		Logger:        s.logger,
	})

	go r.Run(readerCtx)
	s.merger.Add(ctx, key, r.Out())

	go func() {
		for {
			select {
			case err, ok := <-r.Errors():
				if !ok {
					return
				}
				select {
				case s.errCh <- err:
				default:
				}
			case <-readerCtx.Done():
				return
			}
		}
	}()

	s.logger.Infow("target added", "target", key)
}

func (s *Supervisor) removeTarget(ctx context.Context, target model.Target) {
	key := target.Key()

	s.readerMu.Lock()
	cancel, exists := s.readers[key]
	delete(s.readers, key)
	s.readerMu.Unlock()

	if !exists {
		return
	}
	cancel()
	s.merger.Remove(ctx, key)
	s.logger.Infow("target removed", "target", key)
}

func (s *Supervisor) forwardErrors(ctx context.Context, in <-chan error) {
	for {
		select {
		case err, ok := <-in:
			if !ok {
				return
			}
			select {
			case s.errCh <- err:
			default:
			}
		case <-ctx.Done():
			return
		}
	}
}

// Stop transitions to Draining, cancels the pipeline's context, waits
// up to GracePeriod for components to finish their current delivery,
// then force-stops and transitions to Stopped. Every stage shares the
// canceled context and returns as soon as it sees the cancellation,
// without waiting for its upstream channel to close, so stages stop
// together rather than in dependency order; records still queued in the
// Merger, Filter Engine or Fan-out at that moment may not be delivered.
// Each sink is closed, flushing its own buffer, when its Fan-out
// delivery goroutine exits.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.state == Stopped || s.state == Draining {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.setState(Draining)

	if s.cancel != nil {
		s.cancel()
	}

	select {
	case <-s.doneCh:
	case <-time.After(GracePeriod):
		s.logger.Warnw("supervisor grace period elapsed before clean shutdown")
	}

	s.setState(Stopped)
	close(s.errCh)
}
