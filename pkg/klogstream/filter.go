package klogstream

import (
	"regexp"
	"time"

	"github.com/archsyscall/klogstream/internal/selector"
	"k8s.io/apimachinery/pkg/labels"
)

// LogFilter defines filtering criteria for kubernetes logs
type LogFilter struct {
	// PodNameRegex filters pods by name regex
	PodNameRegex *regexp.Regexp
	// ContainerRegex filters containers by name regex
	ContainerRegex *regexp.Regexp
	// LabelSelector filters pods by their labels
	LabelSelector labels.Selector
	// IncludeRegex only includes log lines matching this regex. It is
	// compiled into a Filter Engine expression (ANDed with
	// StreamConfig.IncludeExprString, if both are set) rather than
	// applied at the selector level.
	IncludeRegex *regexp.Regexp
	// Since only includes logs newer than this time
	Since *time.Time
	// ContainerState filters by container state ("all", "running", "terminated", ...)
	ContainerState string
	// Namespaces is a list of namespaces to filter logs from
	Namespaces []string
	// Owners restricts pods to those transitively owned by one of these
	// Kubernetes resources, e.g. {"Deployment", "api"}.
	Owners []OwnerKind
	// SampleSize, when > 0, caps the number of matching pods streamed at
	// once to a uniform sample, taken in each namespace separately.
	SampleSize int
	// SampleSeed makes SampleSize's sampling deterministic when non-zero.
	SampleSeed int64
}

// OwnerKind names a Kubernetes owner resource to select pods by.
type OwnerKind struct {
	Kind string
	Name string
}

// NewLogFilterBuilder creates a new LogFilterBuilder
func NewLogFilterBuilder() *LogFilterBuilder {
	return &LogFilterBuilder{
		builder: selector.NewBuilder(),
	}
}

// LogFilterBuilder provides a fluent API for building LogFilter
type LogFilterBuilder struct {
	builder      *selector.Builder
	includeRegex *regexp.Regexp
}

// PodRegex sets the pod name regex pattern
func (b *LogFilterBuilder) PodRegex(pattern string) *LogFilterBuilder {
	b.builder.PodRegex(pattern)
	return b
}

// ContainerRegex sets the container name regex pattern
func (b *LogFilterBuilder) ContainerRegex(pattern string) *LogFilterBuilder {
	b.builder.ContainerRegex(pattern)
	return b
}

// Label adds a label selector
func (b *LogFilterBuilder) Label(key, value string) *LogFilterBuilder {
	b.builder.Label(key, value)
	return b
}

// Include sets the regex for log lines to include
func (b *LogFilterBuilder) Include(pattern string) *LogFilterBuilder {
	if pattern != "" {
		if re, err := regexp.Compile(pattern); err == nil {
			b.includeRegex = re
		}
	}
	return b
}

// Since sets the time to stream logs from
func (b *LogFilterBuilder) Since(duration time.Duration) *LogFilterBuilder {
	b.builder.Since(duration)
	return b
}

// ContainerState sets the container state filter
func (b *LogFilterBuilder) ContainerState(state string) *LogFilterBuilder {
	b.builder.ContainerState(state)
	return b
}

// Namespace adds a namespace to filter
func (b *LogFilterBuilder) Namespace(namespace string) *LogFilterBuilder {
	b.builder.Namespace(namespace)
	return b
}

// Owner adds an owner-kind requirement.
func (b *LogFilterBuilder) Owner(kind, name string) *LogFilterBuilder {
	b.builder.Owner(kind, name)
	return b
}

// Sample caps selection to size pods per namespace, with an optional deterministic seed.
func (b *LogFilterBuilder) Sample(size int, seed int64) *LogFilterBuilder {
	b.builder.Sample(size, seed)
	return b
}

// Build creates and validates the LogFilter
func (b *LogFilterBuilder) Build() (*LogFilter, error) {
	sel, err := b.builder.Build()
	if err != nil {
		return nil, err
	}

	var owners []OwnerKind
	for _, o := range sel.Owners {
		owners = append(owners, OwnerKind{Kind: o.Kind, Name: o.Name})
	}

	return &LogFilter{
		PodNameRegex:   sel.PodNameRegex,
		ContainerRegex: sel.ContainerRegex,
		LabelSelector:  sel.LabelSelector,
		IncludeRegex:   b.includeRegex,
		Since:          sel.Since,
		ContainerState: sel.ContainerState,
		Namespaces:     sel.Namespaces,
		Owners:         owners,
		SampleSize:     sel.SampleSize,
		SampleSeed:     sel.SampleSeed,
	}, nil
}

// toSelector converts a public LogFilter into the internal selector used
// to drive the pipeline, without re-parsing already-compiled regexes.
func toSelector(f *LogFilter) (*selector.Selector, error) {
	sel := selector.New()
	sel.PodNameRegex = f.PodNameRegex
	sel.ContainerRegex = f.ContainerRegex
	sel.LabelSelector = f.LabelSelector
	sel.Since = f.Since
	sel.Namespaces = f.Namespaces
	sel.SampleSize = f.SampleSize
	sel.SampleSeed = f.SampleSeed
	if f.ContainerState != "" {
		sel.ContainerState = f.ContainerState
	}
	for _, o := range f.Owners {
		sel.Owners = append(sel.Owners, selector.OwnerKind{Kind: o.Kind, Name: o.Name})
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return sel, nil
}
