// Package engine implements the crawl control loop: the decision gates,
// the shared crawl context, and the per-page pipeline that ties the
// scheduler, page requester, and worker pool together.
package engine

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// PageToCrawl is a unit of work: a URI discovered somewhere in the crawl,
// waiting to be admitted and fetched.
type PageToCrawl struct {
	URI        *url.URL
	RootURI    *url.URL
	ParentURI  *url.URL
	IsInternal bool
	IsRetry    bool
}

// CrawledPage extends a PageToCrawl with the outcome of a fetch attempt.
type CrawledPage struct {
	PageToCrawl

	Body             []byte
	Content          string
	StatusCode       int
	Headers          http.Header
	HasHTTPResponse  bool
	TransportErr     error
	PageSizeInBytes  int
}

// CrawlConfiguration holds the recognized crawl options. Zero values for
// MaxPagesToCrawl and MaxPagesToCrawlPerDomain mean "cap of zero" (deny
// everything); a zero CrawlTimeoutSeconds means "unlimited". This asymmetry
// is load-bearing — see DecisionMaker.
type CrawlConfiguration struct {
	MaxPagesToCrawl                    int
	MaxPagesToCrawlPerDomain            int
	CrawlTimeoutSeconds                 int
	MaxConcurrentThreads                int
	IsExternalPageCrawlingEnabled       bool
	IsExternalPageLinksCrawlingEnabled  bool
	UserAgentString                     string
}

// CrawlContext is the per-crawl shared state observed (read-only, except
// for the seen-set and per-domain counters) by the DecisionMaker.
type CrawlContext struct {
	RootURI    *url.URL
	Config     CrawlConfiguration
	StartTime  time.Time

	mu          sync.Mutex
	seen        map[string]struct{}
	perDomain   map[string]int
	pagesAdmitted int
}

// NewCrawlContext builds a fresh CrawlContext for a crawl rooted at root.
func NewCrawlContext(root *url.URL, cfg CrawlConfiguration, startTime time.Time) *CrawlContext {
	return &CrawlContext{
		RootURI:   root,
		Config:    cfg,
		StartTime: startTime,
		seen:      make(map[string]struct{}),
		perDomain: make(map[string]int),
	}
}

// HasSeen reports whether uri has already been admitted, without mutating
// the seen-set. Used by the pure DecisionMaker gates.
func (c *CrawlContext) HasSeen(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[uri]
	return ok
}

// PagesAdmitted returns the total number of pages admitted so far.
func (c *CrawlContext) PagesAdmitted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagesAdmitted
}

// PerDomainCount returns the number of pages admitted so far for host.
func (c *CrawlContext) PerDomainCount(host string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perDomain[host]
}

// TryAdmit performs the atomic "insert-if-absent" required by the
// admission race in the concurrency model: it inserts uri into the
// seen-set and, only if the insertion succeeded, increments the global
// and per-domain counters in the same critical section. It returns false
// if uri was already present, in which case no counters are touched.
func (c *CrawlContext) TryAdmit(uri, host string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[uri]; ok {
		return false
	}
	c.seen[uri] = struct{}{}
	c.pagesAdmitted++
	c.perDomain[host]++
	return true
}

// Elapsed returns the wall-clock duration since the crawl started.
func (c *CrawlContext) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.StartTime)
}

// CrawlDecision is the result of a DecisionMaker gate.
type CrawlDecision struct {
	Allowed bool
	Reason  string
}

func allow() CrawlDecision { return CrawlDecision{Allowed: true} }

func deny(reason string) CrawlDecision { return CrawlDecision{Allowed: false, Reason: reason} }

// CrawlResult is returned by CrawlEngine.Crawl.
type CrawlResult struct {
	RootURI string
	Elapsed time.Duration
}
