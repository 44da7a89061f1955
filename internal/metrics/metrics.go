// Package metrics exposes Prometheus collectors for the crawl engine,
// consuming the engine's lifecycle event stream to track admission,
// fetch, and link-discovery counts.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crawlcore/webcrawler/internal/engine"
)

var _ engine.Sink = (*Sink)(nil)

// Sink records crawl lifecycle events as Prometheus collectors. It
// implements engine.Sink.
type Sink struct {
	pagesAdmitted  *prometheus.CounterVec
	pagesDisallowed *prometheus.CounterVec
	pagesFetched   *prometheus.CounterVec
	fetchBytes     prometheus.Counter
	linksDiscovered prometheus.Counter
}

// NewSink registers the collectors against reg. reg defaults to
// prometheus.DefaultRegisterer when nil.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &Sink{
		pagesAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_pages_admitted_total",
			Help: "Pages that passed the crawl-page gate and were fetched.",
		}, []string{"host"}),
		pagesDisallowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_pages_disallowed_total",
			Help: "Pages or page-links denied, partitioned by decision reason.",
		}, []string{"reason"}),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "Completed fetch attempts, partitioned by HTTP status code.",
		}, []string{"status"}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawler_fetch_bytes_total",
			Help: "Total bytes read from fetched page bodies.",
		}),
		linksDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawler_links_discovered_total",
			Help: "Outbound links discovered and enqueued.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.pagesAdmitted, s.pagesDisallowed, s.pagesFetched, s.fetchBytes, s.linksDiscovered,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates collectors from a batch of engine events.
func (s *Sink) Consume(_ context.Context, batch []engine.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *Sink) consumeEvent(evt engine.Event) {
	switch evt.Kind {
	case engine.EventPageCrawlStarting:
		host := ""
		if evt.Page.URI != nil {
			host = evt.Page.URI.Host
		}
		s.pagesAdmitted.WithLabelValues(host).Inc()
	case engine.EventPageCrawlDisallowed, engine.EventPageLinksCrawlDisallowed:
		s.pagesDisallowed.WithLabelValues(evt.Reason).Inc()
	case engine.EventPageCrawlCompleted:
		if evt.CrawledPage == nil {
			return
		}
		status := "none"
		if evt.CrawledPage.HasHTTPResponse {
			status = fmt.Sprintf("%d", evt.CrawledPage.StatusCode)
		}
		s.pagesFetched.WithLabelValues(status).Inc()
		if evt.CrawledPage.PageSizeInBytes > 0 {
			s.fetchBytes.Add(float64(evt.CrawledPage.PageSizeInBytes))
		}
		if evt.LinksDiscovered > 0 {
			s.linksDiscovered.Add(float64(evt.LinksDiscovered))
		}
	}
}

// Close implements engine.Sink; it performs no action.
func (s *Sink) Close(context.Context) error {
	return nil
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
