// Package syncer propagates catalog mutations into the search index in the
// background. Callers fire and forget: a sync request never blocks the write
// path and a sync failure never reaches the client that caused it.
package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain/resource"
	"github.com/kailas-cloud/catalogd/internal/metrics"
)

// Loader fetches the current index projection of a resource from storage.
type Loader interface {
	Document(ctx context.Context, id string) (resource.Document, error)
}

// Index is the write side of the search index.
type Index interface {
	Enabled() bool
	Upsert(ctx context.Context, doc resource.Document) error
	Delete(ctx context.Context, id string) error
}

type opKind int

const (
	opUpsert opKind = iota
	opDelete
)

type job struct {
	kind opKind
	id   string
}

// Syncer owns a single worker goroutine draining a bounded job queue.
// When the queue is full the job is dropped with a warning; the periodic
// full reindex is the repair path for anything lost that way.
type Syncer struct {
	loader  Loader
	index   Index
	logger  *zap.Logger
	timeout time.Duration

	jobs chan job
	done chan struct{}
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

// New starts the worker. queueSize below 1 falls back to a sane default.
func New(loader Loader, index Index, logger *zap.Logger, queueSize int) *Syncer {
	if queueSize < 1 {
		queueSize = 256
	}
	s := &Syncer{
		loader:  loader,
		index:   index,
		logger:  logger,
		timeout: 10 * time.Second,
		jobs:    make(chan job, queueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Sync schedules an upsert of the resource's index document. Never blocks.
func (s *Syncer) Sync(id string) {
	s.enqueue(job{kind: opUpsert, id: id})
}

// Remove schedules deletion of the resource's index document. Never blocks.
func (s *Syncer) Remove(id string) {
	s.enqueue(job{kind: opDelete, id: id})
}

func (s *Syncer) enqueue(j job) {
	if !s.index.Enabled() {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("index sync requested after close, dropping job",
			zap.String("resource_id", j.id))
		return
	}
	select {
	case s.jobs <- j:
	default:
		metrics.IndexSyncDroppedTotal.Inc()
		s.logger.Warn("index sync queue full, dropping job",
			zap.String("resource_id", j.id))
	}
}

// Close stops accepting jobs, drains what is already queued, and waits for
// the worker to exit. Sync and Remove after Close are dropped, not panics.
func (s *Syncer) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.jobs)
		<-s.done
	})
}

func (s *Syncer) run() {
	defer close(s.done)
	for j := range s.jobs {
		s.process(j)
	}
}

func (s *Syncer) process(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var err error
	op := "upsert"
	switch j.kind {
	case opDelete:
		op = "delete"
		err = s.index.Delete(ctx, j.id)
	default:
		var doc resource.Document
		doc, err = s.loader.Document(ctx, j.id)
		if err == nil {
			err = s.index.Upsert(ctx, doc)
		}
	}
	if err != nil {
		metrics.IndexSyncTotal.WithLabelValues(op, "error").Inc()
		s.logger.Warn("index sync failed",
			zap.String("resource_id", j.id),
			zap.Error(err))
		return
	}
	metrics.IndexSyncTotal.WithLabelValues(op, "ok").Inc()
}
