package klogstream

import (
	"github.com/archsyscall/klogstream/internal/fanout"
	"github.com/archsyscall/klogstream/internal/filterexpr"
	"github.com/archsyscall/klogstream/internal/kube"
	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// StreamOption is a function that configures a streamer
type StreamOption func(*StreamConfig)

// StreamConfig holds all the configuration for a streamer
type StreamConfig struct {
	// KubeOptions are the options for the kubernetes client
	KubeOptions []kube.Option
	// Filter is the log filter
	Filter *LogFilter
	// Formatter is the log formatter
	Formatter LogFormatter
	// Handler is the log handler
	Handler LogHandler
	// Matcher is the multiline matcher
	Matcher MultilineMatcher
	// RetryPolicy configures retry behavior
	RetryPolicy RetryPolicy
	// IncludeExprString is a Filter Engine include expression, ANDed
	// with Filter.IncludeRegex when both are set.
	IncludeExprString string
	// ExcludeExprString is a Filter Engine exclude expression: records
	// matching it are dropped regardless of IncludeExprString/IncludeRegex.
	ExcludeExprString string
	// Sinks are additional sink routes delivered to alongside Handler,
	// e.g. a Terminal, File or Web sink built directly against
	// internal/sink/*.
	Sinks []SinkRoute

	MergerCapacity      int
	FilterWorkers       int
	FilterOutCapacity   int
	ReaderChannelCap    int
	ReaderMaxMultilines int
	ReaderTailLines     *int64

	Logger *zap.SugaredLogger
}

// NewStreamConfig creates a new StreamConfig with default values
func NewStreamConfig() *StreamConfig {
	return &StreamConfig{
		KubeOptions: []kube.Option{kube.UseDefaultConfig()},
		RetryPolicy: DefaultRetryPolicy,
	}
}

// WithRestConfig sets the kubernetes client configuration
func WithRestConfig(config *rest.Config) StreamOption {
	return func(c *StreamConfig) {
		c.KubeOptions = append(c.KubeOptions, kube.WithRestConfig(config))
	}
}

// WithKubeconfigPath sets the path to the kubeconfig file
func WithKubeconfigPath(path string) StreamOption {
	return func(c *StreamConfig) {
		c.KubeOptions = append(c.KubeOptions, kube.WithKubeconfigPath(path))
	}
}

// WithKubeContext sets the kubernetes context to use
func WithKubeContext(name string) StreamOption {
	return func(c *StreamConfig) {
		c.KubeOptions = append(c.KubeOptions, kube.WithContextName(name))
	}
}

// WithClientset sets a direct kubernetes clientset to use. Accepting the
// kubernetes.Interface rather than the concrete *kubernetes.Clientset
// lets tests inject k8s.io/client-go/kubernetes/fake; a real *Clientset
// satisfies the interface too, so existing callers are unaffected.
func WithClientset(clientset kubernetes.Interface) StreamOption {
	return func(c *StreamConfig) {
		c.KubeOptions = append(c.KubeOptions, kube.WithClientset(clientset))
	}
}

// WithFilter sets the log filter
func WithFilter(filter *LogFilter) StreamOption {
	return func(c *StreamConfig) {
		c.Filter = filter
	}
}

// WithFormatter sets the log formatter
func WithFormatter(formatter LogFormatter) StreamOption {
	return func(c *StreamConfig) {
		c.Formatter = formatter
	}
}

// WithHandler sets the log handler
func WithHandler(handler LogHandler) StreamOption {
	return func(c *StreamConfig) {
		c.Handler = handler
	}
}

// WithMatcher sets the multiline matcher
func WithMatcher(matcher MultilineMatcher) StreamOption {
	return func(c *StreamConfig) {
		c.Matcher = matcher
	}
}

// WithRetryPolicy sets the retry policy
func WithRetryPolicy(policy RetryPolicy) StreamOption {
	return func(c *StreamConfig) {
		c.RetryPolicy = policy
	}
}

// WithFilterExpr sets a Filter Engine include expression string, e.g.
// `"ERROR" || panic:`. Invalid expressions are caught at Build/Start
// time, not here, so options can be applied in any order.
func WithFilterExpr(expr string) StreamOption {
	return func(c *StreamConfig) {
		c.IncludeExprString = expr
	}
}

// WithExcludeFilterExpr sets a Filter Engine exclude expression string.
// Records matching it are dropped even if they match the include
// expression, e.g. WithExcludeFilterExpr(`"DEBUG"`).
func WithExcludeFilterExpr(expr string) StreamOption {
	return func(c *StreamConfig) {
		c.ExcludeExprString = expr
	}
}

// WithSinkRoute attaches an additional sink (Terminal, File, Web, or a
// custom fanout.Sink) alongside the Handler.
func WithSinkRoute(route SinkRoute) StreamOption {
	return func(c *StreamConfig) {
		c.Sinks = append(c.Sinks, route)
	}
}

// WithLogger sets the structured logger the pipeline reports through.
func WithLogger(logger *zap.SugaredLogger) StreamOption {
	return func(c *StreamConfig) {
		c.Logger = logger
	}
}

// WithTailLines caps each source's initial backfill to the last n lines.
func WithTailLines(n int64) StreamOption {
	return func(c *StreamConfig) {
		c.ReaderTailLines = &n
	}
}

// compileFilterExpr builds the Filter Engine's independent include and
// exclude expressions. Include is the legacy IncludeRegex (if set)
// ANDed with IncludeExprString (if set), so both configuration styles
// compose; exclude is ExcludeExprString alone. The Supervisor combines
// them per filterexpr.Combine as matches(include) && !matches(exclude).
func compileFilterExpr(c *StreamConfig) (include, exclude filterexpr.Expr, err error) {
	var includes []filterexpr.Expr

	if c.Filter != nil && c.Filter.IncludeRegex != nil {
		re, err := filterexpr.NewRegex(c.Filter.IncludeRegex.String())
		if err != nil {
			return nil, nil, err
		}
		includes = append(includes, re)
	}

	if c.IncludeExprString != "" {
		e, err := filterexpr.Parse(c.IncludeExprString)
		if err != nil {
			return nil, nil, err
		}
		includes = append(includes, e)
	}

	switch len(includes) {
	case 0:
		include = nil
	case 1:
		include = includes[0]
	default:
		include = includes[0]
		for _, e := range includes[1:] {
			include = &filterexpr.And{Left: include, Right: e}
		}
	}

	if c.ExcludeExprString != "" {
		exclude, err = filterexpr.Parse(c.ExcludeExprString)
		if err != nil {
			return nil, nil, err
		}
	}

	return include, exclude, nil
}

// defaultHandlerQueueCap bounds the Handler-backed sink route built from
// legacy options, matching the Sink Fan-out's default queue capacity.
const defaultHandlerQueueCap = fanout.DefaultQueueCapacity
