package klogstream

import (
	"context"

	"github.com/archsyscall/klogstream/internal/apierrors"
	"github.com/archsyscall/klogstream/internal/fanout"
	"github.com/archsyscall/klogstream/internal/kube"
	"github.com/archsyscall/klogstream/internal/reader"
	"github.com/archsyscall/klogstream/internal/supervisor"
	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Streamer is the main interface for streaming logs
type Streamer interface {
	// Start begins streaming logs for matching pods
	Start(ctx context.Context) error
	// Stop stops all log streaming activity
	Stop()
}

// streamerImpl is the implementation of the Streamer interface, a thin
// wrapper over the internal Supervisor that owns the actual pipeline
// (Selector watch -> Source Reader -> Stream Merger -> Filter Engine ->
// Sink Fan-out).
type streamerImpl struct {
	internal *supervisor.Supervisor
	handler  LogHandler
}

// NewStreamer creates a new Streamer with the given options
var NewStreamer = func(options ...StreamOption) (Streamer, error) {
	config := NewStreamConfig()
	for _, option := range options {
		option(config)
	}

	if config.Filter == nil {
		return nil, ErrNoFilter
	}
	if config.Filter.ContainerState == "" {
		config.Filter.ContainerState = "all"
	}

	sel, err := toSelector(config.Filter)
	if err != nil {
		return nil, err
	}

	includeExpr, excludeExpr, err := compileFilterExpr(config)
	if err != nil {
		return nil, err
	}

	var routes []fanout.Route
	if config.Handler != nil {
		routes = append(routes, fanout.Route{
			Sink:     &handlerSink{handler: config.Handler, formatter: config.Formatter},
			Policy:   fanout.Blocking,
			QueueCap: defaultHandlerQueueCap,
		})
	}
	routes = append(routes, config.Sinks...)
	if len(routes) == 0 {
		return nil, ErrNoHandler
	}

	clientProvider := kube.NewClientProviderWithOptions(config.KubeOptions...)

	retryPolicy := reader.RetryPolicy{
		MaxRetries:      config.RetryPolicy.MaxRetries,
		InitialInterval: config.RetryPolicy.InitialInterval,
		MaxInterval:     config.RetryPolicy.MaxInterval,
		Multiplier:      config.RetryPolicy.Multiplier,
		Jitter:          reader.DefaultRetryPolicy.Jitter,
	}

	sup, err := supervisor.New(supervisor.Config{
		KubeClientProvider:  clientProvider,
		Selector:            sel,
		IncludeExpr:         includeExpr,
		ExcludeExpr:         excludeExpr,
		Routes:              routes,
		ReaderMatcher:       config.Matcher,
		ReaderTailLines:     config.ReaderTailLines,
		MergerCapacity:      config.MergerCapacity,
		FilterWorkers:       config.FilterWorkers,
		FilterOutCapacity:   config.FilterOutCapacity,
		ReaderChannelCap:    config.ReaderChannelCap,
		ReaderMaxMultilines: config.ReaderMaxMultilines,
		RetryPolicy:         retryPolicy,
		Logger:              config.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &streamerImpl{internal: sup, handler: config.Handler}, nil
}

// Start begins streaming logs for matching pods
func (s *streamerImpl) Start(ctx context.Context) error {
	if err := s.internal.Start(ctx); err != nil {
		return err
	}
	if s.handler != nil {
		go s.forwardErrors()
	}
	return nil
}

// forwardErrors relays every pipeline error (reconnects, permanent
// source failures, configuration problems surfaced after Start) to the
// Handler.OnError callback, wrapping it as the public LogStreamError.
func (s *streamerImpl) forwardErrors() {
	for err := range s.internal.Errors() {
		se, ok := err.(*apierrors.StreamError)
		if !ok {
			s.handler.OnError(err)
			continue
		}
		s.handler.OnError(&LogStreamError{
			Err:       se.Err,
			Permanent: se.Permanent,
			Reason:    se.Reason,
		})
	}
}

// Stop stops all log streaming activity
func (s *streamerImpl) Stop() {
	s.internal.Stop()
}

// Run is a convenience function that creates a streamer with the given options,
// starts it, and waits for context completion
func Run(ctx context.Context, options ...StreamOption) error {
	streamer, err := NewStreamer(options...)
	if err != nil {
		return err
	}

	if err := streamer.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	streamer.Stop()

	return nil
}

// StreamBuilder provides a fluent API for building and running a streamer
type StreamBuilder struct {
	options []StreamOption
}

// NewBuilder creates a new StreamBuilder
func NewBuilder() *StreamBuilder {
	return &StreamBuilder{}
}

// WithRestConfig adds a rest.Config option to the builder
func (b *StreamBuilder) WithRestConfig(config *rest.Config) *StreamBuilder {
	b.options = append(b.options, WithRestConfig(config))
	return b
}

// WithKubeconfigPath adds a kubeconfig path option to the builder
func (b *StreamBuilder) WithKubeconfigPath(path string) *StreamBuilder {
	b.options = append(b.options, WithKubeconfigPath(path))
	return b
}

// WithKubeContext adds a kubernetes context option to the builder
func (b *StreamBuilder) WithKubeContext(name string) *StreamBuilder {
	b.options = append(b.options, WithKubeContext(name))
	return b
}

// WithClientset adds a direct kubernetes clientset option to the builder
// This is especially useful for testing with fake.Clientset
func (b *StreamBuilder) WithClientset(clientset kubernetes.Interface) *StreamBuilder {
	b.options = append(b.options, WithClientset(clientset))
	return b
}

// WithNamespace adds a namespace to the log filter
func (b *StreamBuilder) WithNamespace(namespace string) *StreamBuilder {
	b.options = append(b.options, WithNamespace(namespace))
	return b
}

// WithPodRegex adds a pod name regex to the log filter
func (b *StreamBuilder) WithPodRegex(pattern string) *StreamBuilder {
	b.options = append(b.options, WithPodRegex(pattern))
	return b
}

// WithContainerRegex adds a container name regex to the log filter
func (b *StreamBuilder) WithContainerRegex(pattern string) *StreamBuilder {
	b.options = append(b.options, WithContainerRegex(pattern))
	return b
}

// WithLabel adds a label selector to the log filter
func (b *StreamBuilder) WithLabel(key, value string) *StreamBuilder {
	b.options = append(b.options, WithLabel(key, value))
	return b
}

// WithPodLabelSelector adds a label selector string to the log filter
// The format is the same as kubectl's label selector (e.g., "app=myapp,env=prod")
func (b *StreamBuilder) WithPodLabelSelector(selector string) *StreamBuilder {
	b.options = append(b.options, WithLabelSelector(selector))
	return b
}

// WithIncludeRegex adds an include regex to the log filter
func (b *StreamBuilder) WithIncludeRegex(pattern string) *StreamBuilder {
	b.options = append(b.options, WithIncludeRegex(pattern))
	return b
}

// WithFilterExpr sets a Filter Engine include expression string
func (b *StreamBuilder) WithFilterExpr(expr string) *StreamBuilder {
	b.options = append(b.options, WithFilterExpr(expr))
	return b
}

// WithExcludeFilterExpr sets a Filter Engine exclude expression string
func (b *StreamBuilder) WithExcludeFilterExpr(expr string) *StreamBuilder {
	b.options = append(b.options, WithExcludeFilterExpr(expr))
	return b
}

// WithOwner restricts selection to pods owned by a Kubernetes resource
func (b *StreamBuilder) WithOwner(kind, name string) *StreamBuilder {
	b.options = append(b.options, WithOwner(kind, name))
	return b
}

// WithSample caps selection to a uniform sample of matching pods
func (b *StreamBuilder) WithSample(size int, seed int64) *StreamBuilder {
	b.options = append(b.options, WithSample(size, seed))
	return b
}

// WithSinkRoute attaches an additional sink alongside the Handler
func (b *StreamBuilder) WithSinkRoute(route SinkRoute) *StreamBuilder {
	b.options = append(b.options, WithSinkRoute(route))
	return b
}

// WithTailLines caps each source's initial backfill to the last n lines
func (b *StreamBuilder) WithTailLines(n int64) *StreamBuilder {
	b.options = append(b.options, WithTailLines(n))
	return b
}

// WithFilter sets the log filter directly, replacing any filter fields
// set by prior WithNamespace/WithPodRegex/etc calls on this builder.
func (b *StreamBuilder) WithFilter(filter *LogFilter) *StreamBuilder {
	b.options = append(b.options, WithFilter(filter))
	return b
}

// WithLogger sets the structured logger the pipeline reports through.
func (b *StreamBuilder) WithLogger(logger *zap.SugaredLogger) *StreamBuilder {
	b.options = append(b.options, WithLogger(logger))
	return b
}

// WithFormatter sets the log formatter
func (b *StreamBuilder) WithFormatter(formatter LogFormatter) *StreamBuilder {
	b.options = append(b.options, WithFormatter(formatter))
	return b
}

// WithHandler sets the log handler
func (b *StreamBuilder) WithHandler(handler LogHandler) *StreamBuilder {
	b.options = append(b.options, WithHandler(handler))
	return b
}

// WithMatcher sets the multiline matcher
func (b *StreamBuilder) WithMatcher(matcher MultilineMatcher) *StreamBuilder {
	b.options = append(b.options, WithMatcher(matcher))
	return b
}

// Build creates a Streamer from the accumulated options
func (b *StreamBuilder) Build() (Streamer, error) {
	return NewStreamer(b.options...)
}

// Run creates a Streamer from the accumulated options, starts it, and waits for context completion
func (b *StreamBuilder) Run(ctx context.Context) error {
	return Run(ctx, b.options...)
}
