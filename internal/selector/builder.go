package selector

import (
	"regexp"
	"time"

	"k8s.io/apimachinery/pkg/labels"
)

// Builder provides a fluent API for building a Selector, generalizing
// the teacher's LogFilterBuilder with owner-kind and sampling methods.
type Builder struct {
	sel *Selector
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{sel: New()}
}

// PodRegex sets the pod name regex pattern.
func (b *Builder) PodRegex(pattern string) *Builder {
	if pattern != "" {
		if re, err := regexp.Compile(pattern); err == nil {
			b.sel.PodNameRegex = re
		}
	}
	return b
}

// ContainerRegex sets the container name regex pattern.
func (b *Builder) ContainerRegex(pattern string) *Builder {
	if pattern != "" {
		if re, err := regexp.Compile(pattern); err == nil {
			b.sel.ContainerRegex = re
		}
	}
	return b
}

// Label adds a label selector requirement.
func (b *Builder) Label(key, value string) *Builder {
	if key != "" {
		b.sel.LabelSelector = labels.SelectorFromSet(labels.Set{key: value})
	}
	return b
}

// LabelSelector sets a raw label selector, parsed from its string form.
func (b *Builder) LabelSelector(selector string) *Builder {
	if selector != "" {
		if sel, err := labels.Parse(selector); err == nil {
			b.sel.LabelSelector = sel
		}
	}
	return b
}

// Owner adds an owner-kind requirement, e.g. Owner("Deployment", "api").
func (b *Builder) Owner(kind, name string) *Builder {
	if kind != "" && name != "" {
		b.sel.Owners = append(b.sel.Owners, OwnerKind{Kind: kind, Name: name})
	}
	return b
}

// Since sets the duration to select logs from.
func (b *Builder) Since(duration time.Duration) *Builder {
	if duration >= 0 {
		tm := time.Now().Add(-duration)
		b.sel.Since = &tm
	}
	return b
}

// ContainerState sets the container state filter.
func (b *Builder) ContainerState(state string) *Builder {
	if state != "" {
		b.sel.ContainerState = state
	}
	return b
}

// Namespace adds a namespace to select from.
func (b *Builder) Namespace(namespace string) *Builder {
	if namespace != "" {
		b.sel.Namespaces = append(b.sel.Namespaces, namespace)
	}
	return b
}

// Sample caps selection to size pods per namespace, with an optional deterministic seed.
func (b *Builder) Sample(size int, seed int64) *Builder {
	b.sel.SampleSize = size
	b.sel.SampleSeed = seed
	return b
}

// Build validates and returns the Selector.
func (b *Builder) Build() (*Selector, error) {
	if err := b.sel.Validate(); err != nil {
		return nil, err
	}
	return b.sel, nil
}
