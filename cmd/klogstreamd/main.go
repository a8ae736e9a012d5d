// Command klogstreamd is a thin driver wiring klogstream to stdout, in
// the spirit of a small example program: it is not a
// Cobra/Viper CLI, just enough flag parsing to point the pipeline at a
// namespace and, optionally, a web sink endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/archsyscall/klogstream/internal/fanout"
	"github.com/archsyscall/klogstream/internal/logging"
	"github.com/archsyscall/klogstream/internal/sink"
	"github.com/archsyscall/klogstream/internal/sink/terminal"
	"github.com/archsyscall/klogstream/internal/sink/web"
	"github.com/archsyscall/klogstream/pkg/klogstream"
)

func main() {
	var (
		namespace   = flag.String("namespace", "default", "namespace to tail")
		podRegex    = flag.String("pod-regex", ".*", "pod name regex")
		containerRx = flag.String("container-regex", ".*", "container name regex")
		since       = flag.Duration("since", 0, "only show logs newer than this duration")
		filterExpr  = flag.String("filter", "", "Filter Engine include expression, e.g. \"ERROR\" || panic:")
		excludeExpr = flag.String("exclude", "", "Filter Engine exclude expression, e.g. \"DEBUG\"")
		format      = flag.String("format", "text", "output format: text, json or raw")
		timestamps  = flag.Bool("timestamps", false, "show a leading RFC3339 timestamp in text format")
		webEndpoint = flag.String("web-endpoint", "", "if set, also deliver batched logs to this HTTP endpoint")
		kubeconfig  = flag.String("kubeconfig", "", "path to kubeconfig (defaults to in-cluster or ~/.kube/config)")
	)
	flag.Parse()

	logger := logging.New(logging.Config{Level: "info"})
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	filterBuilder := klogstream.NewLogFilterBuilder().
		Namespace(*namespace).
		PodRegex(*podRegex).
		ContainerRegex(*containerRx)
	if *since > 0 {
		filterBuilder = filterBuilder.Since(*since)
	}
	filter, err := filterBuilder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building filter: %v\n", err)
		os.Exit(1)
	}

	builder := klogstream.NewBuilder().
		WithFilter(filter).
		WithLogger(logger).
		WithSinkRoute(fanout.Route{
			Sink:     terminal.New(terminal.Config{Out: os.Stdout, Format: sink.Format(*format), Timestamps: *timestamps}),
			Policy:   fanout.Blocking,
			QueueCap: fanout.DefaultQueueCapacity,
		})

	if *filterExpr != "" {
		builder = builder.WithFilterExpr(*filterExpr)
	}
	if *excludeExpr != "" {
		builder = builder.WithExcludeFilterExpr(*excludeExpr)
	}
	if *kubeconfig != "" {
		builder = builder.WithKubeconfigPath(*kubeconfig)
	}
	if *webEndpoint != "" {
		webSink, err := web.New(ctx, web.Config{Endpoint: *webEndpoint, Logger: logger})
		if err != nil {
			fmt.Fprintf(os.Stderr, "web sink: %v\n", err)
			os.Exit(1)
		}
		builder = builder.WithSinkRoute(fanout.Route{
			Sink:     webSink,
			Policy:   fanout.DropNewest,
			QueueCap: fanout.DefaultQueueCapacity,
		})
	}

	streamer, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating streamer: %v\n", err)
		os.Exit(1)
	}

	if err := streamer.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error starting streamer: %v\n", err)
		os.Exit(1)
	}

	<-ctx.Done()
	streamer.Stop()
}
