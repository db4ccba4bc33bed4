package secureauth

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher hands events to the sink from a dedicated goroutine so
// flow latency stays independent of sink latency. A nil dispatcher (audit
// disabled) accepts every call as a no-op.
//
// Shutdown closes the event channel under the write lock; Emit holds the
// read lock while sending, so a send can never race the close. The worker
// drains the channel to completion before Close returns.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool

	mu     sync.RWMutex
	ch     chan AuditEvent
	closed bool

	drained chan struct{}
	dropped atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer < 1 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		ch:         make(chan AuditEvent, buffer),
		drained:    make(chan struct{}),
	}
	go d.deliver()
	return d
}

func (d *auditDispatcher) deliver() {
	for event := range d.ch {
		d.sink.Emit(context.Background(), event)
	}
	close(d.drained)
}

func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.ch <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	}
}

// Close stops accepting events and blocks until everything buffered has
// reached the sink. Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.drained
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()
	<-d.drained
}

// Dropped reports how many events were discarded because the buffer was
// full while DropIfFull was set.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
