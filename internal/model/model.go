// Package model holds the data types shared across every pipeline stage:
// Selector, Source Reader, Stream Merger, Filter Engine, Fan-out and Sinks.
package model

import "time"

// LogRecord is a single normalized log line attributed to one container of
// one pod, after Source Reader normalization (newlines/tabs replaced by
// spaces) and after multiline merging, which may have joined several raw
// lines into this one record.
type LogRecord struct {
	Target    Target
	Timestamp time.Time
	Message   string
	Raw       []byte
	// Generation is the Target's generation at the time this record was
	// produced, so a merger or sink can detect it crossed a reconnect.
	Generation uint64
}

// Target identifies one container stream the pipeline is tailing.
type Target struct {
	ClusterContext string
	Namespace      string
	PodName        string
	ContainerName  string
	// Generation increments every time the Source Reader for this target
	// re-establishes its log stream (new watch, reconnect after an error).
	Generation uint64
}

// Key returns a stable identifier for the target, used by the Supervisor
// as each target's bookkeeping key and by the Terminal sink to assign
// the target's color.
func (t Target) Key() string {
	return t.Namespace + "/" + t.PodName + "/" + t.ContainerName
}

// String renders the target as namespace/pod/container.
func (t Target) String() string {
	return t.Namespace + "/" + t.PodName + "/" + t.ContainerName
}

// Batch groups records destined for a sink that batches deliveries (only
// the Web sink does today), carrying the metadata sinks attach to the
// delivery as a unit rather than per-record.
type Batch struct {
	Records   []LogRecord
	BatchID   string
	Timestamp time.Time
}
