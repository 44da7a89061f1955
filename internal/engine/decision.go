package engine

import (
	"fmt"
	"strings"
	"time"
)

// DecisionMaker evaluates the three admission/continuation gates. Every
// method is pure: no I/O, no mutation of ctx, inputs fully determine the
// output reason string.
type DecisionMaker struct {
	now func() time.Time
}

// NewDecisionMaker builds a DecisionMaker. now defaults to time.Now.
func NewDecisionMaker(now func() time.Time) *DecisionMaker {
	if now == nil {
		now = time.Now
	}
	return &DecisionMaker{now: now}
}

// ShouldCrawlPage evaluates the admission gate for page in the order
// specified by the decision table: the first failing rule wins.
func (d *DecisionMaker) ShouldCrawlPage(page *PageToCrawl, ctx *CrawlContext) CrawlDecision {
	if page == nil {
		return deny("Null page to crawl")
	}
	if ctx == nil {
		return deny("Null crawl context")
	}
	if page.URI == nil {
		return deny("Null page to crawl")
	}
	scheme := strings.ToLower(page.URI.Scheme)
	if scheme != "http" && scheme != "https" {
		return deny("Scheme does not begin with http")
	}

	uri := page.URI.String()
	if ctx.HasSeen(uri) {
		return deny("Link already crawled")
	}

	// MaxPagesToCrawl==0 is a cap of zero (deny everything), not "unlimited" —
	// this is the opposite sentinel from CrawlTimeoutSeconds below.
	if ctx.Config.MaxPagesToCrawl == 0 || ctx.PagesAdmitted() >= ctx.Config.MaxPagesToCrawl {
		return deny(fmt.Sprintf("MaxPagesToCrawl limit of [%d] has been reached", ctx.Config.MaxPagesToCrawl))
	}

	if ctx.Config.CrawlTimeoutSeconds > 0 {
		if ctx.Elapsed(d.now()) >= time.Duration(ctx.Config.CrawlTimeoutSeconds)*time.Second {
			return deny(fmt.Sprintf("Crawl timeout of [%d] seconds has been reached", ctx.Config.CrawlTimeoutSeconds))
		}
	}

	if !page.IsInternal && !ctx.Config.IsExternalPageCrawlingEnabled {
		return deny("Link is external")
	}

	host := page.URI.Host
	if ctx.Config.MaxPagesToCrawlPerDomain == 0 || ctx.PerDomainCount(host) >= ctx.Config.MaxPagesToCrawlPerDomain {
		return deny(fmt.Sprintf("MaxPagesToCrawlPerDomain limit of [%d] has been reached for domain [%s]", ctx.Config.MaxPagesToCrawlPerDomain, host))
	}

	return allow()
}

// ShouldDownloadPageContent evaluates whether the response body should be
// read, given headers only. Called by the PageRequester before the body is
// drained.
func (d *DecisionMaker) ShouldDownloadPageContent(crawled *CrawledPage, ctx *CrawlContext) CrawlDecision {
	if crawled == nil {
		return deny("Null crawled page")
	}
	if ctx == nil {
		return deny("Null crawl context")
	}
	if !crawled.HasHTTPResponse {
		return deny("Null HttpWebResponse")
	}
	if crawled.StatusCode != 200 {
		return deny("HttpStatusCode is not 200")
	}
	contentType := crawled.Headers.Get("Content-Type")
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if !strings.HasPrefix(contentType, "text/html") {
		return deny("Content type is not any of the following: text/html")
	}
	return allow()
}

// ShouldCrawlPageLinks evaluates whether to extract and enqueue links found
// in crawled. Called after the body has been read.
func (d *DecisionMaker) ShouldCrawlPageLinks(crawled *CrawledPage, ctx *CrawlContext) CrawlDecision {
	if crawled == nil {
		return deny("Null crawled page")
	}
	if ctx == nil {
		return deny("Null crawl context")
	}
	if strings.TrimSpace(crawled.Content) == "" && len(strings.TrimSpace(string(crawled.Body))) == 0 {
		return deny("Page has no content")
	}
	if !crawled.IsInternal && !ctx.Config.IsExternalPageLinksCrawlingEnabled {
		return deny("Link is external")
	}
	return allow()
}
