// Package scheduler provides a concurrency-safe, unbounded FIFO queue of
// pages pending a crawl fetch. GetNext never blocks: it reports an empty
// queue rather than waiting for one.
package scheduler

import (
	"errors"
	"sync"

	"github.com/crawlcore/webcrawler/internal/engine"
)

// ErrNilPage is returned by Add when page or page.URI is nil.
var ErrNilPage = errors.New("scheduler: page or page.URI must not be nil")

// Scheduler is a FIFO queue of engine.PageToCrawl. It performs no
// duplicate suppression; that is the DecisionMaker's job against the
// crawl context's seen-set. Safe for concurrent Add from many workers
// while a single engine goroutine drains it with GetNext.
type Scheduler struct {
	mu    sync.Mutex
	items []engine.PageToCrawl
}

// New constructs an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add enqueues page at the tail of the queue.
func (s *Scheduler) Add(page engine.PageToCrawl) error {
	if page.URI == nil {
		return ErrNilPage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, page)
	return nil
}

// GetNext dequeues and returns the oldest still-queued page. ok is false
// when the queue is empty.
func (s *Scheduler) GetNext() (page engine.PageToCrawl, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return engine.PageToCrawl{}, false
	}
	page = s.items[0]
	s.items[0] = engine.PageToCrawl{}
	s.items = s.items[1:]
	return page, true
}

// Count returns the number of currently queued pages.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
