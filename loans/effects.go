package loans

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type effectKind int

const (
	effectAudit effectKind = iota
	effectDeleteSignature
)

type effect struct {
	kind  effectKind
	audit AuditEntry
	url   string
}

// Dispatcher runs post-commit housekeeping on a small worker pool. Enqueueing
// never blocks: when the queue is full the effect is logged and dropped.
// Failures are logged and not retried.
type Dispatcher struct {
	recorder AuditRecorder
	files    SignatureStore
	logger   *slog.Logger
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan effect
	wg     sync.WaitGroup
}

func NewDispatcher(recorder AuditRecorder, files SignatureStore, logger *slog.Logger, queueSize int) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Dispatcher{
		recorder: recorder,
		files:    files,
		logger:   logger,
		timeout:  5 * time.Second,
		queue:    make(chan effect, queueSize),
	}
}

// Start launches n workers draining the queue until Close.
func (d *Dispatcher) Start(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
}

func (d *Dispatcher) Audit(e AuditEntry) {
	d.enqueue(effect{kind: effectAudit, audit: e})
}

func (d *Dispatcher) DeleteSignature(url string) {
	if url == "" {
		return
	}
	d.enqueue(effect{kind: effectDeleteSignature, url: url})
}

func (d *Dispatcher) enqueue(e effect) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("effect dropped after shutdown", "kind", e.kind, "record", e.audit.RecordID, "url", e.url)
		return
	}
	select {
	case d.queue <- e:
	default:
		d.logger.Warn("effect queue full, dropping", "kind", e.kind, "record", e.audit.RecordID, "url", e.url)
	}
}

// Close stops accepting effects and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) workerLoop(id int) {
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		switch e.kind {
		case effectAudit:
			if err := d.recorder.Record(ctx, e.audit); err != nil {
				d.logger.Warn("audit record failed",
					"worker", id, "action", e.audit.Action, "table", e.audit.Table,
					"record", e.audit.RecordID, "err", err)
			}
		case effectDeleteSignature:
			if err := d.files.Delete(ctx, e.url); err != nil {
				d.logger.Warn("signature delete failed", "worker", id, "url", e.url, "err", err)
			}
		}
		cancel()
	}
}
