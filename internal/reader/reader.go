// Package reader implements the Source Reader: one goroutine per
// container target that opens (and, on failure, re-opens with backoff)
// a Kubernetes pod log stream, splits it into lines, optionally merges
// multiline entries, normalizes each record, and pushes it onto a
// bounded per-target channel for the Stream Merger to consume.
package reader

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/archsyscall/klogstream/internal/apierrors"
	"github.com/archsyscall/klogstream/internal/model"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// MultilineMatcher decides whether a log line continues the previous
// one, so the reader can buffer it into one LogRecord instead of many.
type MultilineMatcher interface {
	ShouldMerge(previous, next string) bool
}

// RetryPolicy configures the reader's reconnect backoff.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Jitter is a fraction (0..1) of the computed backoff randomly added
	// or subtracted, so many readers reconnecting at once don't all
	// retry in lockstep.
	Jitter float64
}

// DefaultRetryPolicy mirrors the teacher's defaults, with jitter added.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     30 * time.Second,
	Multiplier:      2,
	Jitter:          0.2,
}

// DefaultMaxMultilines bounds how many lines a single multiline buffer
// can accumulate before being force-flushed.
const DefaultMaxMultilines = 500

// DefaultChannelCapacity is Csrc, the bounded per-target output channel
// capacity specified for the Source Reader.
const DefaultChannelCapacity = 256

// Config configures one Reader instance.
type Config struct {
	Clientset      kubernetes.Interface
	Target         model.Target
	Since          *time.Time
	TailLines      *int64
	Matcher        MultilineMatcher
	MaxMultilines  int
	RetryPolicy    RetryPolicy
	ChannelCap     int
	IncludeFilter  func(string) bool // optional fast pre-filter applied to each line
	Logger         *zap.SugaredLogger
}

// Reader streams one container's logs, reconnecting as needed.
type Reader struct {
	cfg        Config
	out        chan model.LogRecord
	errCh      chan error
	generation uint64
}

// New creates a Reader. Call Run to start it; records arrive on Out(),
// errors on Errors().
func New(cfg Config) *Reader {
	if cfg.MaxMultilines <= 0 {
		cfg.MaxMultilines = DefaultMaxMultilines
	}
	if cfg.ChannelCap <= 0 {
		cfg.ChannelCap = DefaultChannelCapacity
	}
	if cfg.RetryPolicy == (RetryPolicy{}) {
		cfg.RetryPolicy = DefaultRetryPolicy
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Reader{
		cfg:   cfg,
		out:   make(chan model.LogRecord, cfg.ChannelCap),
		errCh: make(chan error, 8),
	}
}

// Out returns the channel the reader publishes normalized records to.
func (r *Reader) Out() <-chan model.LogRecord { return r.out }

// Errors returns the channel the reader reports StreamErrors on.
func (r *Reader) Errors() <-chan error { return r.errCh }

// Run opens the log stream and reopens it with backoff after a
// transient error, until ctx is canceled, the pod is deleted, an error
// is permanent or reconnect retries are exhausted. A stream that ends
// without an error is not reopened: Run returns. It closes Out() when it
// returns.
func (r *Reader) Run(ctx context.Context) {
	defer close(r.out)

	retry := 0
	backoff := r.cfg.RetryPolicy.InitialInterval

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		opts := &corev1.PodLogOptions{
			Container:  r.cfg.Target.ContainerName,
			Follow:     true,
			Timestamps: true,
		}
		if r.cfg.Since != nil {
			t := metav1.NewTime(*r.cfg.Since)
			opts.SinceTime = &t
		}
		if r.cfg.TailLines != nil {
			opts.TailLines = r.cfg.TailLines
		}

		req := r.cfg.Clientset.CoreV1().Pods(r.cfg.Target.Namespace).GetLogs(r.cfg.Target.PodName, opts)
		stream, err := req.Stream(ctx)
		if err != nil {
			if apierrors.IsPodDeletedError(err) {
				return
			}
			permanent := apierrors.IsPermanent(err)
			r.reportErr(ctx, apierrors.New(err, apierrors.KindSourceRead, permanent,
				fmt.Sprintf("failed to open log stream for %s", r.cfg.Target.Key())))
			if permanent {
				return
			}
			retry++
			if retry > r.cfg.RetryPolicy.MaxRetries {
				r.reportErr(ctx, apierrors.New(fmt.Errorf("exceeded maximum reconnect attempts"), apierrors.KindSourceRead, true,
					fmt.Sprintf("reconnect retries exhausted for %s", r.cfg.Target.Key())))
				return
			}
			if !r.sleepBackoff(ctx, &backoff) {
				return
			}
			continue
		}

		retry = 0
		backoff = r.cfg.RetryPolicy.InitialInterval
		r.generation++
		r.cfg.Target.Generation = r.generation

		err = r.process(ctx, stream)
		stream.Close()

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err == nil {
			return
		}
		if apierrors.IsPodDeletedError(err) {
			return
		}

		permanent := false
		if se, ok := err.(*apierrors.StreamError); ok {
			permanent = se.Permanent
		}
		r.reportErr(ctx, err)
		if permanent {
			return
		}
		if !r.sleepBackoff(ctx, &backoff) {
			return
		}
	}
}

func (r *Reader) reportErr(ctx context.Context, err error) {
	r.cfg.Logger.Warnw("reader error", "target", r.cfg.Target.Key(), "error", err)
	select {
	case r.errCh <- err:
	case <-ctx.Done():
	default:
		// Error channel full: drop rather than block the reconnect loop.
	}
}

func (r *Reader) sleepBackoff(ctx context.Context, backoff *time.Duration) bool {
	delay := *backoff
	if r.cfg.RetryPolicy.Jitter > 0 {
		jitter := float64(delay) * r.cfg.RetryPolicy.Jitter
		delay += time.Duration((rand.Float64()*2 - 1) * jitter)
		if delay < 0 {
			delay = *backoff
		}
	}
	select {
	case <-time.After(delay):
		next := time.Duration(float64(*backoff) * r.cfg.RetryPolicy.Multiplier)
		if next > r.cfg.RetryPolicy.MaxInterval {
			next = r.cfg.RetryPolicy.MaxInterval
		}
		*backoff = next
		return true
	case <-ctx.Done():
		return false
	}
}

// process reads lines from stream, optionally merges multiline entries,
// and emits normalized LogRecords on r.out, blocking (applying
// backpressure) when the channel is full.
func (r *Reader) process(ctx context.Context, stream io.ReadCloser) error {
	sc := newScanner(stream)

	var buffer []string
	var rawBuffer [][]byte
	var lastLine string
	var firstTimestamp time.Time

	emit := func(message string, raw []byte, ts time.Time) {
		rec := model.LogRecord{
			Target:     r.cfg.Target,
			Timestamp:  ts,
			Message:    Normalize(message),
			Raw:        raw,
			Generation: r.generation,
		}
		select {
		case r.out <- rec:
		case <-ctx.Done():
		}
	}

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		message := buffer[0]
		for i := 1; i < len(buffer); i++ {
			message += "\n" + buffer[i]
		}
		var raw []byte
		for i, rb := range rawBuffer {
			if i > 0 {
				raw = append(raw, '\n')
			}
			raw = append(raw, rb...)
		}
		emit(message, raw, firstTimestamp)
		buffer = nil
		rawBuffer = nil
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ts, line := splitTimestamp(sc.Text())

		if r.cfg.IncludeFilter != nil && !r.cfg.IncludeFilter(line) {
			continue
		}

		if r.cfg.Matcher == nil {
			emit(line, sc.Bytes(), ts)
			continue
		}

		if len(buffer) == 0 {
			buffer = append(buffer, line)
			rawBuffer = append(rawBuffer, sc.Bytes())
			lastLine = line
			firstTimestamp = ts
			continue
		}

		if r.cfg.Matcher.ShouldMerge(lastLine, line) {
			buffer = append(buffer, line)
			rawBuffer = append(rawBuffer, sc.Bytes())
			lastLine = line
			if len(buffer) >= r.cfg.MaxMultilines {
				flush()
			}
		} else {
			flush()
			buffer = append(buffer, line)
			rawBuffer = append(rawBuffer, sc.Bytes())
			lastLine = line
			firstTimestamp = ts
		}
	}
	flush()

	if err := sc.Err(); err != nil {
		if apierrors.IsPodDeletedError(err) {
			return nil
		}
		permanent := apierrors.IsPermanent(err)
		return apierrors.New(err, apierrors.KindSourceRead, permanent, "log stream read error")
	}
	return nil
}

// splitTimestamp strips the RFC3339 timestamp prefix PodLogOptions.
// Timestamps=true adds ("2024-01-02T15:04:05.000000000Z message"),
// returning the parsed time and the remaining message. Falls back to
// time.Now when the prefix is missing or malformed.
func splitTimestamp(line string) (time.Time, string) {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			if ts, err := time.Parse(time.RFC3339Nano, line[:i]); err == nil {
				return ts, line[i+1:]
			}
			break
		}
	}
	return time.Now(), line
}
