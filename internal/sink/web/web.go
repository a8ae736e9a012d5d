// Package web implements the Web sink: batches records and POSTs them
// as JSON to an HTTP endpoint, retrying transient failures with a
// linear backoff and dropping permanent ones, grounded end-to-end on
// the original "wake" implementation's WebOutputHandler
// (original_source/src/output/web.rs).
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/archsyscall/klogstream/internal/apierrors"
	"github.com/archsyscall/klogstream/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config configures the Web sink.
type Config struct {
	Endpoint      string
	Headers       map[string]string
	BatchSize     int
	FlushInterval time.Duration
	RequestTimeout time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	ClusterContext string
	Client        *http.Client
	Logger         *zap.SugaredLogger
}

const (
	defaultBatchSize      = 50
	defaultFlushInterval  = 5 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryDelay     = time.Second
)

// wireEntry is one log line in the POST body, matching the original
// WebLogEntry wire shape (original_source/src/output/web.rs) exactly:
// source is always the literal "kubernetes" and metadata is always
// present, even if empty.
type wireEntry struct {
	Timestamp string            `json:"timestamp"`
	Namespace string            `json:"namespace"`
	PodName   string            `json:"pod_name"`
	Container string            `json:"container_name"`
	Message   string            `json:"message"`
	Level     *string           `json:"level"`
	Source    string            `json:"source"`
	Cluster   string            `json:"cluster,omitempty"`
	Metadata  map[string]string `json:"metadata"`
}

type batchInfo struct {
	Size      int    `json:"size"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

type wireBatch struct {
	Entries   []wireEntry `json:"entries"`
	BatchInfo batchInfo   `json:"batch_info"`
}

// Sink batches records and flushes them to Endpoint.
type Sink struct {
	cfg    Config
	client *http.Client
	logger *zap.SugaredLogger

	mu      sync.Mutex
	current []model.LogRecord
	timer   *time.Timer
	stopped bool
}

// New constructs a Web sink and performs the spec-required startup
// probe: a GET against Endpoint to confirm it's reachable before the
// pipeline starts relying on it. Endpoint must be http(s); a failed
// or non-2xx probe is a fatal startup error, not a warning - an
// unreachable collector must be caught before the pipeline commits to
// it, not discovered on the first dropped batch.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return nil, apierrors.New(fmt.Errorf("web sink endpoint must begin with http:// or https://, got %q", cfg.Endpoint),
			apierrors.KindConfiguration, true, "web sink endpoint")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	s := &Sink{cfg: cfg, client: cfg.Client, logger: cfg.Logger}
	if err := s.probe(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) probe(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return apierrors.New(err, apierrors.KindStartupProbe, true, "web sink probe: build request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return apierrors.New(err, apierrors.KindStartupProbe, true, "web sink probe: unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierrors.New(fmt.Errorf("unexpected status %d", resp.StatusCode),
			apierrors.KindStartupProbe, true, "web sink probe: non-2xx")
	}
	return nil
}

// Name identifies the sink for fan-out diagnostics.
func (s *Sink) Name() string { return "web:" + s.cfg.Endpoint }

// Deliver adds rec to the current batch, flushing immediately if the
// batch reaches BatchSize.
func (s *Sink) Deliver(ctx context.Context, rec model.LogRecord) error {
	s.mu.Lock()
	s.current = append(s.current, rec)
	full := len(s.current) >= s.cfg.BatchSize
	var toFlush []model.LogRecord
	if full {
		toFlush = s.current
		s.current = nil
	}
	s.mu.Unlock()

	if toFlush != nil {
		s.sendBatchWithRetry(ctx, toFlush)
	}
	return nil
}

// Close flushes any partial batch and stops the sink.
func (s *Sink) Close() error {
	s.mu.Lock()
	toFlush := s.current
	s.current = nil
	s.stopped = true
	s.mu.Unlock()

	if len(toFlush) > 0 {
		s.sendBatchWithRetry(context.Background(), toFlush)
	}
	return nil
}

// sendBatchWithRetry implements the original's send_batch_with_retry:
// linear backoff (delay * attempt) across RetryAttempts tries. A
// permanent (4xx other than 429) failure logs and drops the batch
// rather than retrying, matching the original's
// "clear the batch whether it succeeded or failed" policy so a bad
// endpoint can't grow memory without bound.
func (s *Sink) sendBatchWithRetry(ctx context.Context, records []model.LogRecord) {
	batch := s.toWireBatch(records)
	// batchID never travels in the JSON body (the original "wake" wire
	// shape has no such field); it's purely a request-correlation
	// header for tracing a batch across retries in logs.
	batchID := uuid.NewString()

	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		statusCode, err := s.sendBatchOnce(ctx, batch, batchID)
		if err == nil {
			return
		}
		lastErr = err

		if statusCode > 0 && apierrors.IsHTTPStatusPermanent(statusCode) {
			s.logger.Warnw("web sink dropping batch after permanent error", "endpoint", s.cfg.Endpoint, "batch_id", batchID, "status", statusCode, "error", err)
			return
		}

		if attempt < s.cfg.RetryAttempts {
			delay := time.Duration(attempt) * s.cfg.RetryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
	}
	s.logger.Warnw("web sink exhausted retries, dropping batch", "endpoint", s.cfg.Endpoint, "batch_id", batchID, "error", lastErr)
}

func (s *Sink) sendBatchOnce(ctx context.Context, batch wireBatch, batchID string) (int, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("web sink: marshal batch: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("web sink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Batch-Id", batchID)
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, fmt.Errorf("web sink: unexpected status %d", resp.StatusCode)
}

func (s *Sink) toWireBatch(records []model.LogRecord) wireBatch {
	entries := make([]wireEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, wireEntry{
			Timestamp: r.Timestamp.Format(time.RFC3339),
			Namespace: r.Target.Namespace,
			PodName:   r.Target.PodName,
			Container: r.Target.ContainerName,
			Message:   r.Message,
			Level:     extractLogLevel(r.Message),
			Source:    "kubernetes",
			Cluster:   s.cfg.ClusterContext,
			Metadata:  map[string]string{},
		})
	}
	return wireBatch{
		Entries: entries,
		BatchInfo: batchInfo{
			Size:      len(entries),
			Timestamp: time.Now().Format(time.RFC3339),
			Source:    "wake",
		},
	}
}

// extractLogLevel is the original's heuristic (extract_log_level): scan
// the message for the highest-priority level token present, preferring
// ERROR > WARN > INFO > DEBUG > TRACE. Returns nil (wire null) when
// nothing matches, same as the original returning None.
func extractLogLevel(message string) *string {
	upper := strings.ToUpper(message)
	level := func(s string) *string { return &s }
	switch {
	case strings.Contains(upper, "ERROR") || strings.Contains(upper, "ERR"):
		return level("ERROR")
	case strings.Contains(upper, "WARN") || strings.Contains(upper, "WARNING"):
		return level("WARN")
	case strings.Contains(upper, "INFO"):
		return level("INFO")
	case strings.Contains(upper, "DEBUG"):
		return level("DEBUG")
	case strings.Contains(upper, "TRACE"):
		return level("TRACE")
	default:
		return nil
	}
}
