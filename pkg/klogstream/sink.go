package klogstream

import (
	"context"

	"github.com/archsyscall/klogstream/internal/fanout"
	"github.com/archsyscall/klogstream/internal/model"
)

// handlerSink adapts a LogHandler/LogFormatter pair - the teacher's
// original fan-out unit - into a fanout.Sink, so the public callback API
// plugs straight into the Sink Fan-out stage alongside the Terminal,
// File and Web sinks.
type handlerSink struct {
	handler   LogHandler
	formatter LogFormatter
}

func (h *handlerSink) Name() string { return "handler" }

func (h *handlerSink) Deliver(_ context.Context, rec model.LogRecord) error {
	msg := LogMessage{
		Namespace:     rec.Target.Namespace,
		PodName:       rec.Target.PodName,
		ContainerName: rec.Target.ContainerName,
		Timestamp:     rec.Timestamp,
		Message:       rec.Message,
		Raw:           rec.Raw,
	}
	if h.formatter != nil {
		msg.Message = h.formatter.Format(msg)
	}
	h.handler.OnLog(msg)
	return nil
}

func (h *handlerSink) Close() error {
	h.handler.OnEnd()
	return nil
}

// SinkRoute names one additional sink and its fan-out policy for
// StreamConfig.Sinks, re-exporting the internal fan-out route so
// advanced callers can attach a Terminal/File/Web sink directly instead
// of going through a LogHandler.
type SinkRoute = fanout.Route

// OverflowPolicy controls what a sink's queue does when it is full.
type OverflowPolicy = fanout.OverflowPolicy

const (
	// OverflowBlocking applies backpressure upstream rather than drop.
	OverflowBlocking = fanout.Blocking
	// OverflowDropNewest discards the incoming record and counts it.
	OverflowDropNewest = fanout.DropNewest
)
