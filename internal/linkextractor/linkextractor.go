// Package linkextractor provides a default, pluggable implementation of
// the engine's LinkExtractor collaborator. The engine treats this as just
// one possible implementation of that interface, not a required one.
package linkextractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor parses `<a href>` targets out of an HTML document and
// resolves them against a base URI.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// GetLinks returns the absolute URIs referenced by anchor tags in
// htmlText, resolved against baseURI. Malformed or empty hrefs, and
// non-http(s) schemes such as mailto:/javascript:, are skipped rather
// than erroring. Fragments are stripped and duplicate targets are
// returned once.
func (e *Extractor) GetLinks(baseURI *url.URL, htmlText string) ([]*url.URL, error) {
	if strings.TrimSpace(htmlText) == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []*url.URL
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := parsed
		if baseURI != nil {
			resolved = baseURI.ResolveReference(parsed)
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""
		key := resolved.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, resolved)
	})
	return links, nil
}
