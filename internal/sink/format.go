// Package sink holds formatting shared by the Terminal and File sinks;
// each concrete sink lives in its own subpackage (terminal, file, web).
package sink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/archsyscall/klogstream/internal/model"
)

// Format names one of the three output shapes spec.md requires from the
// Terminal and File sinks.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatRaw  Format = "raw"
)

// JSONEntry is the per-line JSON shape, generalizing the teacher's
// formatter.JSONLogEntry. Timestamp is a pointer so a record with a zero
// Timestamp serializes as JSON null rather than the Go zero time. The
// Source Reader stamps a line that carries no timestamp with the time it
// was read, so records it produces never have a zero Timestamp.
type JSONEntry struct {
	Timestamp *string `json:"timestamp"`
	Namespace string  `json:"namespace"`
	PodName   string  `json:"pod_name"`
	Container string  `json:"container_name"`
	Message   string  `json:"message"`
}

// Render formats rec per format. colorPrefix, when non-empty, wraps the
// target prefix in text mode only (JSON/raw are never colorized).
// showTimestamp controls only the text format's leading "<ts> " prefix;
// JSON always carries a timestamp field (RFC 3339 or null) and raw never
// does.
func Render(rec model.LogRecord, format Format, colorPrefix, colorReset string, showTimestamp bool) string {
	switch format {
	case FormatJSON:
		var ts *string
		if !rec.Timestamp.IsZero() {
			s := rec.Timestamp.Format(time.RFC3339)
			ts = &s
		}
		entry := JSONEntry{
			Timestamp: ts,
			Namespace: rec.Target.Namespace,
			PodName:   rec.Target.PodName,
			Container: rec.Target.ContainerName,
			Message:   rec.Message,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return rec.Message
		}
		return string(data)
	case FormatRaw:
		return rec.Message
	default: // FormatText: "[ts? ]pod/container message"
		target := fmt.Sprintf("%s/%s", rec.Target.PodName, rec.Target.ContainerName)
		if colorPrefix != "" {
			target = colorPrefix + target + colorReset
		}
		if showTimestamp && !rec.Timestamp.IsZero() {
			return rec.Timestamp.Format(time.RFC3339) + " " + target + " " + rec.Message
		}
		return target + " " + rec.Message
	}
}
