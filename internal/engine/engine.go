package engine

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/crawlcore/webcrawler/internal/id"
)

// ErrNoSeedURI is returned by Crawl when seedURI is empty.
var ErrNoSeedURI = errors.New("engine: seed URI must not be empty")

// Scheduler is the FIFO queue contract the engine depends on. The engine
// is polymorphic over this capability set; alternative orderings slot in
// without engine changes.
type Scheduler interface {
	Add(page PageToCrawl) error
	GetNext() (PageToCrawl, bool)
	Count() int
}

// PageRequester executes the HTTP GET and applies predicate to decide
// whether to download the body.
type PageRequester interface {
	MakeRequest(ctx context.Context, page PageToCrawl, predicate func(*CrawledPage) CrawlDecision) CrawledPage
}

// WorkerPool runs submitted tasks with bounded concurrency.
type WorkerPool interface {
	DoWork(task func()) error
	HasRunningWork() bool
	Shutdown()
}

// LinkExtractor is the out-of-core collaborator that turns a crawled
// page's body into outbound links. Must be pure; the engine supplies the
// base URI for relative resolution.
type LinkExtractor interface {
	GetLinks(baseURI *url.URL, htmlText string) ([]*url.URL, error)
}

// idleBackoff is the fixed sleep applied when the scheduler is
// momentarily empty but the pool still has work in flight.
const idleBackoff = 2500 * time.Millisecond

// Engine is the control loop wiring DecisionMaker, Scheduler,
// PageRequester, WorkerPool, and the event Hub together.
type Engine struct {
	decisions *DecisionMaker
	scheduler Scheduler
	requester PageRequester
	pool      WorkerPool
	extractor LinkExtractor
	hub       *Hub
	logger    *zap.Logger
	idGen     *id.Generator
	now       func() time.Time
}

// New constructs an Engine from its six collaborators.
func New(decisions *DecisionMaker, scheduler Scheduler, requester PageRequester, pool WorkerPool, extractor LinkExtractor, hub *Hub, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		decisions: decisions,
		scheduler: scheduler,
		requester: requester,
		pool:      pool,
		extractor: extractor,
		hub:       hub,
		logger:    logger,
		idGen:     id.NewGenerator(),
		now:       time.Now,
	}
}

// Crawl runs the control loop to completion: seed enqueue, dequeue and
// dispatch, per-page pipeline, and termination once the scheduler is
// empty and the pool has no running work.
func (e *Engine) Crawl(ctx context.Context, seedURI string, cfg CrawlConfiguration) (CrawlResult, error) {
	if seedURI == "" {
		return CrawlResult{}, ErrNoSeedURI
	}
	root, err := url.Parse(seedURI)
	if err != nil {
		return CrawlResult{}, err
	}

	runID, err := e.idGen.NewID()
	if err != nil {
		runID = ""
	}

	start := e.now()
	crawlCtx := NewCrawlContext(root, cfg, start)

	seed := PageToCrawl{
		URI:        root,
		RootURI:    root,
		ParentURI:  root,
		IsInternal: true,
	}
	if err := e.scheduler.Add(seed); err != nil {
		return CrawlResult{}, err
	}

	for {
		if ctx.Err() != nil {
			break
		}
		if e.scheduler.Count() > 0 {
			page, ok := e.scheduler.GetNext()
			if !ok {
				continue
			}
			p := page
			if err := e.pool.DoWork(func() { e.process(ctx, p, crawlCtx, runID) }); err != nil {
				e.logger.Error("worker pool rejected task", zap.Error(err))
				break
			}
			continue
		}
		if !e.pool.HasRunningWork() {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(idleBackoff):
		}
	}

	e.pool.Shutdown()

	return CrawlResult{
		RootURI: root.String(),
		Elapsed: e.now().Sub(start),
	}, nil
}

// process runs the per-page pipeline for a single dequeued page: admission
// gate, fetch, link gate and link extraction, completion event, then
// either the links-disallowed event or the enqueue of discovered links.
func (e *Engine) process(ctx context.Context, page PageToCrawl, crawlCtx *CrawlContext, runID string) {
	decision := e.decisions.ShouldCrawlPage(&page, crawlCtx)
	if !decision.Allowed {
		e.emitDisallowed(runID, page, decision.Reason)
		return
	}

	host := ""
	if page.URI != nil {
		host = page.URI.Host
	}
	if !crawlCtx.TryAdmit(page.URI.String(), host) {
		// Lost the insert-if-absent race: another worker admitted this URI
		// first. Downgrade to disallowed, per the concurrency model.
		e.emitDisallowed(runID, page, "Link already crawled")
		return
	}

	e.emit(Event{Kind: EventPageCrawlStarting, RunID: runID, TS: e.now(), Page: page})

	crawled := e.requester.MakeRequest(ctx, page, func(partial *CrawledPage) CrawlDecision {
		return e.decisions.ShouldDownloadPageContent(partial, crawlCtx)
	})
	crawled.RootURI = page.RootURI
	crawled.ParentURI = page.ParentURI
	crawled.IsRetry = page.IsRetry
	crawled.IsInternal = page.IsInternal

	linksDecision := e.decisions.ShouldCrawlPageLinks(&crawled, crawlCtx)
	if !linksDecision.Allowed {
		e.emit(Event{Kind: EventPageCrawlCompleted, RunID: runID, TS: e.now(), Page: page, CrawledPage: &crawled})
		e.emit(Event{Kind: EventPageLinksCrawlDisallowed, RunID: runID, TS: e.now(), Page: page, CrawledPage: &crawled, Reason: linksDecision.Reason})
		return
	}

	links := e.discoverLinks(page, crawled.Content)
	e.emit(Event{Kind: EventPageCrawlCompleted, RunID: runID, TS: e.now(), Page: page, CrawledPage: &crawled, LinksDiscovered: len(links)})

	for _, link := range links {
		next := PageToCrawl{
			URI:        link,
			RootURI:    page.RootURI,
			ParentURI:  page.URI,
			IsInternal: link.Host == page.RootURI.Host,
		}
		if err := e.scheduler.Add(next); err != nil {
			e.logger.Debug("failed to enqueue discovered link", zap.String("uri", link.String()), zap.Error(err))
		}
	}
}

// discoverLinks extracts outbound links from a fetched page's body. It
// returns nil (not an error) when no extractor is configured or
// extraction fails, logging the latter at debug level.
func (e *Engine) discoverLinks(page PageToCrawl, content string) []*url.URL {
	if e.extractor == nil {
		return nil
	}
	links, err := e.extractor.GetLinks(page.URI, content)
	if err != nil {
		e.logger.Debug("link extraction failed", zap.String("uri", page.URI.String()), zap.Error(err))
		return nil
	}
	return links
}

func (e *Engine) emitDisallowed(runID string, page PageToCrawl, reason string) {
	e.emit(Event{Kind: EventPageCrawlDisallowed, RunID: runID, TS: e.now(), Page: page, Reason: reason})
}

func (e *Engine) emit(evt Event) {
	if e.hub == nil {
		return
	}
	e.hub.Emit(evt)
}
