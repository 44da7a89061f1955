package metrics

import (
	"context"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/crawlcore/webcrawler/internal/engine"
)

func TestSinkConsumeRecordsLifecycleEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewSink(reg)
	require.NoError(t, err)

	pageURI, err := url.Parse("http://example.com/a")
	require.NoError(t, err)

	completed := &engine.CrawledPage{
		PageToCrawl:     engine.PageToCrawl{URI: pageURI},
		HasHTTPResponse: true,
		StatusCode:      200,
		PageSizeInBytes: 128,
	}

	batch := []engine.Event{
		{Kind: engine.EventPageCrawlStarting, Page: engine.PageToCrawl{URI: pageURI}},
		{Kind: engine.EventPageCrawlCompleted, Page: engine.PageToCrawl{URI: pageURI}, CrawledPage: completed},
		{Kind: engine.EventPageCrawlDisallowed, Reason: "Link already crawled"},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, float64(1), testutil.ToFloat64(sink.pagesAdmitted.WithLabelValues("example.com")))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.pagesFetched.WithLabelValues("200")))
	require.Equal(t, float64(128), testutil.ToFloat64(sink.fetchBytes))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.pagesDisallowed.WithLabelValues("Link already crawled")))

	require.NoError(t, sink.Close(context.Background()))
}

func TestSinkConsumeRecordsLinksDiscovered(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewSink(reg)
	require.NoError(t, err)

	pageURI, err := url.Parse("http://example.com/a")
	require.NoError(t, err)

	batch := []engine.Event{
		{Kind: engine.EventPageCrawlCompleted, Page: engine.PageToCrawl{URI: pageURI}, CrawledPage: &engine.CrawledPage{HasHTTPResponse: true, StatusCode: 200}, LinksDiscovered: 3},
		{Kind: engine.EventPageCrawlCompleted, Page: engine.PageToCrawl{URI: pageURI}, CrawledPage: &engine.CrawledPage{HasHTTPResponse: true, StatusCode: 200}, LinksDiscovered: 0},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, float64(3), testutil.ToFloat64(sink.linksDiscovered))
}
