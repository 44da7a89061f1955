package linkextractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLinksResolvesAndDedupes(t *testing.T) {
	base, err := url.Parse("http://example.com/dir/page.html")
	require.NoError(t, err)

	html := `
		<html><body>
			<a href="/absolute">abs</a>
			<a href="relative.html">rel</a>
			<a href="relative.html">dup</a>
			<a href="http://example.com/dir/relative.html#section">frag</a>
			<a href="mailto:someone@example.com">mail</a>
			<a href="javascript:void(0)">js</a>
			<a>missing href</a>
		</body></html>`

	e := New()
	links, err := e.GetLinks(base, html)
	require.NoError(t, err)

	var got []string
	for _, l := range links {
		got = append(got, l.String())
	}
	require.ElementsMatch(t, []string{
		"http://example.com/absolute",
		"http://example.com/dir/relative.html",
	}, got)
}

func TestGetLinksEmptyBody(t *testing.T) {
	e := New()
	links, err := e.GetLinks(nil, "   ")
	require.NoError(t, err)
	require.Nil(t, links)
}
