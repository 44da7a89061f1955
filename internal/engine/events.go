package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// EventKind identifies which of the four lifecycle events fired.
type EventKind string

// The four events an embedder may observe: a page is disallowed before
// ever being fetched, started and completed once admitted, and its links
// disallowed after the body is read.
const (
	EventPageCrawlStarting        EventKind = "PageCrawlStarting"
	EventPageCrawlCompleted       EventKind = "PageCrawlCompleted"
	EventPageCrawlDisallowed      EventKind = "PageCrawlDisallowed"
	EventPageLinksCrawlDisallowed EventKind = "PageLinksCrawlDisallowed"
)

// Event is a single lifecycle notification. Page is always set;
// CrawledPage is only set for PageCrawlCompleted and
// PageLinksCrawlDisallowed (fired after a fetch attempt); Reason is only
// set for the two Disallowed kinds. LinksDiscovered counts the outbound
// links enqueued from this page and is only set on PageCrawlCompleted.
type Event struct {
	Kind            EventKind
	RunID           string
	TS              time.Time
	Page            PageToCrawl
	CrawledPage     *CrawledPage
	Reason          string
	LinksDiscovered int
}

// Sink consumes batches of events. Implementations must not block
// indefinitely; the Hub applies a per-call timeout.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// HubConfig controls how the Hub buffers and flushes events to its sinks.
type HubConfig struct {
	BufferSize     int
	MaxBatchEvents int
	MaxBatchWait   time.Duration
	SinkTimeout    time.Duration
	BaseContext    context.Context
	Logger         *zap.Logger
}

const (
	defaultBufferSize     = 4096
	defaultMaxBatchEvents = 1000
	defaultMaxBatchWait   = 500 * time.Millisecond
	defaultSinkTimeout    = 10 * time.Second
	dropLogInterval       = 5 * time.Second
)

// Hub fans out lifecycle events to registered sinks asynchronously
// (fire-and-forget from the caller's point of view): Emit never blocks the
// worker that calls it, and a sink failure is logged, never propagated
// back into the crawl control flow. Events accumulate in a plain,
// mutex-guarded slice; a background goroutine flushes that slice to every
// sink either on a fixed tick or as soon as it fills past MaxBatchEvents.
type Hub struct {
	cfg    HubConfig
	sinks  []Sink
	logger *zap.Logger

	mu  sync.Mutex
	buf []Event

	wake   chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	dropCount   atomic.Int64
	lastDropLog atomic.Int64
	closed      atomic.Bool
	closeOnce   sync.Once
	closeCtx    context.Context
}

// NewHub starts the background flush goroutine and returns a ready Hub.
func NewHub(cfg HubConfig, sinks ...Sink) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.MaxBatchEvents <= 0 {
		cfg.MaxBatchEvents = defaultMaxBatchEvents
	}
	if cfg.MaxBatchWait <= 0 {
		cfg.MaxBatchWait = defaultMaxBatchWait
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = defaultSinkTimeout
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		cfg:    cfg,
		sinks:  append([]Sink(nil), sinks...),
		logger: logger,
		buf:    make([]Event, 0, cfg.MaxBatchEvents),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go h.loop()
	return h
}

// Emit appends evt to the pending buffer. It never blocks: once the
// buffer reaches BufferSize, further events are dropped and counted, with
// a rate-limited warning logged rather than one line per drop.
func (h *Hub) Emit(evt Event) {
	if h == nil || h.closed.Load() {
		return
	}
	h.mu.Lock()
	if len(h.buf) >= h.cfg.BufferSize {
		h.mu.Unlock()
		h.recordDrop()
		return
	}
	h.buf = append(h.buf, evt)
	full := len(h.buf) >= h.cfg.MaxBatchEvents
	h.mu.Unlock()

	if full {
		h.nudge()
	}
}

func (h *Hub) nudge() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *Hub) recordDrop() {
	total := h.dropCount.Add(1)
	now := time.Now().UnixNano()
	last := h.lastDropLog.Load()
	if now-last < dropLogInterval.Nanoseconds() {
		return
	}
	if h.lastDropLog.CompareAndSwap(last, now) {
		h.logger.Warn("crawl events dropped due to backpressure", zap.Int64("dropped", h.dropCount.Swap(0)))
		_ = total
	}
}

// Close stops accepting new events, flushes whatever remains, closes every
// sink, and blocks until the background goroutine has exited.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.closeCtx = ctx
		close(h.stopCh)
	})
	select {
	case <-h.doneCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event hub close wait: %w", ctx.Err())
	}
}

func (h *Hub) loop() {
	defer close(h.doneCh)
	ticker := time.NewTicker(h.cfg.MaxBatchWait)
	defer ticker.Stop()
	for {
		select {
		case <-h.wake:
			h.drain()
		case <-ticker.C:
			h.drain()
		case <-h.stopCh:
			h.drain()
			h.closeSinks()
			return
		}
	}
}

// drain swaps out the pending buffer under lock and flushes the swapped
// copy outside the lock, so Emit is never blocked by a slow sink.
func (h *Hub) drain() {
	h.mu.Lock()
	if len(h.buf) == 0 {
		h.mu.Unlock()
		return
	}
	batch := h.buf
	h.buf = make([]Event, 0, h.cfg.MaxBatchEvents)
	h.mu.Unlock()
	h.flush(batch)
}

func (h *Hub) flush(batch []Event) {
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		func() {
			ctx, cancel := context.WithTimeout(h.cfg.BaseContext, h.cfg.SinkTimeout)
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					h.logger.Error("event sink panicked", zap.Any("panic", r))
				}
			}()
			if err := sink.Consume(ctx, batch); err != nil {
				h.logger.Warn("event sink consume failed", zap.Error(err))
			}
		}()
	}
}

func (h *Hub) closeSinks() {
	ctx := h.closeCtx
	if ctx == nil {
		ctx = context.Background()
	}
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			h.logger.Warn("event sink close failed", zap.Error(err))
		}
	}
}
