// Package merge implements the Stream Merger: an N-to-1 multiplexer over
// the per-target channels the Source Readers produce, with dynamic
// membership (Add/Remove) driven by the Selector's watch events, and a
// single bounded output channel for the Filter Engine to consume.
package merge

import (
	"context"
	"sync"

	"github.com/archsyscall/klogstream/internal/model"
)

// DefaultCapacity is Cmrg, the bounded merged-output channel capacity.
const DefaultCapacity = 1024

// command is the internal message the Merger's run loop processes to
// keep membership changes serialized with respect to draining a
// removed source.
type command struct {
	add    bool
	key    string
	source <-chan model.LogRecord
	done   chan struct{}
}

// Merger fans multiple per-target record channels into one.
type Merger struct {
	out      chan model.LogRecord
	commands chan command
	wg       sync.WaitGroup
}

// New creates a Merger with the given output channel capacity (Cmrg).
func New(capacity int) *Merger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Merger{
		out:      make(chan model.LogRecord, capacity),
		commands: make(chan command),
	}
}

// Out returns the merged output channel.
func (m *Merger) Out() <-chan model.LogRecord { return m.out }

// Run drives the membership-management loop until ctx is canceled, then
// waits for every still-running source pump to exit and closes Out().
func (m *Merger) Run(ctx context.Context) {
	active := map[string]context.CancelFunc{}
	defer func() {
		for _, cancel := range active {
			cancel()
		}
		m.wg.Wait()
		close(m.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-m.commands:
			if cmd.add {
				if _, exists := active[cmd.key]; exists {
					close(cmd.done)
					continue
				}
				pumpCtx, cancel := context.WithCancel(ctx)
				active[cmd.key] = cancel
				m.wg.Add(1)
				go m.pump(pumpCtx, cmd.source)
				close(cmd.done)
			} else {
				if cancel, exists := active[cmd.key]; exists {
					cancel()
					delete(active, cmd.key)
				}
				close(cmd.done)
			}
		}
	}
}

// Add registers source under key so its records flow into Out(). A
// second Add for the same key before Remove is a no-op.
func (m *Merger) Add(ctx context.Context, key string, source <-chan model.LogRecord) {
	done := make(chan struct{})
	select {
	case m.commands <- command{add: true, key: key, source: source, done: done}:
		<-done
	case <-ctx.Done():
	}
}

// Remove stops forwarding records from key's source. The underlying
// source channel is expected to be closed or abandoned by its producer;
// Remove only stops the merger's own pump goroutine for it.
func (m *Merger) Remove(ctx context.Context, key string) {
	done := make(chan struct{})
	select {
	case m.commands <- command{add: false, key: key, done: done}:
		<-done
	case <-ctx.Done():
	}
}

func (m *Merger) pump(ctx context.Context, source <-chan model.LogRecord) {
	defer m.wg.Done()
	for {
		select {
		case rec, ok := <-source:
			if !ok {
				return
			}
			select {
			case m.out <- rec:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
