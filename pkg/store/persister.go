package store

import (
	"context"
	"sync"
	"time"

	"github.com/warpdl/warpscreen/pkg/logger"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// DefaultWriteTimeout bounds a single background write.
const DefaultWriteTimeout = 10 * time.Second

// Persister writes documents to a Store in the background. Save never
// blocks: it records the document as pending and wakes the writer. When
// several saves arrive while a write is in flight only the latest one is
// written. Write failures are logged and dropped; the in-memory document
// stays authoritative and the next save retries implicitly.
type Persister struct {
	s       *Store
	log     logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *schedule.Document
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewPersister starts a background writer for s.
func NewPersister(s *Store, l logger.Logger) *Persister {
	if l == nil {
		l = logger.NewNopLogger()
	}
	p := &Persister{
		s:       s,
		log:     l,
		timeout: DefaultWriteTimeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Save schedules doc to be written. doc is copied, so the caller may keep
// mutating it. Saves after Close are ignored.
func (p *Persister) Save(doc *schedule.Document) {
	c := doc.Clone()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = c
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending document and stops the writer. It waits at most
// until ctx is done.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.wake)
	}
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) run() {
	defer close(p.done)
	for range p.wake {
		p.flush()
	}
	p.flush()
}

func (p *Persister) flush() {
	p.mu.Lock()
	doc := p.pending
	p.pending = nil
	p.mu.Unlock()
	if doc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.s.Save(ctx, doc); err != nil {
		p.log.Error("Failed to persist screen document: %v", err)
	}
}
