// Package pagerequest implements the PageRequester: an HTTP GET whose body
// is read only if a caller-supplied predicate, evaluated against the
// response headers, allows it. Built on raw net/http rather than a
// callback-based scraping library, since the body must stay unread until
// the predicate has inspected the headers.
package pagerequest

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/crawlcore/webcrawler/internal/engine"
)

// Predicate is evaluated against response headers, before the body is
// read, to decide whether the body should be downloaded.
type Predicate func(partial *engine.CrawledPage) engine.CrawlDecision

// Requester issues HTTP GETs with a configured User-Agent.
type Requester struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// New constructs a Requester. client defaults to http.DefaultClient if nil.
func New(client *http.Client, userAgent string, logger *zap.Logger) *Requester {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{client: client, userAgent: userAgent, logger: logger}
}

// MakeRequest issues a GET to page.URI. On transport failure it returns a
// CrawledPage carrying the error and no response. On receipt of headers it
// builds a partial CrawledPage and calls predicate; the body is drained
// only if predicate allows it. The response is closed on every exit path.
func (r *Requester) MakeRequest(ctx context.Context, page engine.PageToCrawl, predicate func(*engine.CrawledPage) engine.CrawlDecision) engine.CrawledPage {
	result := engine.CrawledPage{PageToCrawl: page}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URI.String(), nil)
	if err != nil {
		result.TransportErr = err
		return result
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		result.TransportErr = err
		r.logger.Debug("page request transport failure", zap.String("uri", page.URI.String()), zap.Error(err))
		return result
	}
	defer resp.Body.Close()

	result.HasHTTPResponse = true
	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header

	decision := predicate(&result)
	if !decision.Allowed {
		r.logger.Debug("page content download disallowed", zap.String("uri", page.URI.String()), zap.String("reason", decision.Reason))
		return result
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.TransportErr = err
		r.logger.Debug("page body read failure", zap.String("uri", page.URI.String()), zap.Error(err))
		return result
	}
	result.Body = body
	result.Content = string(body)
	result.PageSizeInBytes = len(body)
	return result
}
