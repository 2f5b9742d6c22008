package webscraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
	<title>Fallback Title</title>
	<meta property="og:title" content="The Article">
</head>
<body>
	<nav><p>  </p></nav>
	<article>
		<h1>The Article</h1>
		<p>First paragraph.</p>
		<p>Second <b>bold</b> paragraph.</p>
		<p><script>alert(1)</script>Third paragraph.</p>
	</article>
</body>
</html>`

func TestScraper_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	title, body, err := New().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "The Article", title)
	require.Equal(t, "First paragraph.\n\nSecond bold paragraph.\n\nThird paragraph.", body)
}

func TestScraper_TitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Only Title</title></head><body><p>text</p></body></html>`))
	}))
	defer srv.Close()

	title, body, err := New().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Only Title", title)
	require.Equal(t, "text", body)
}

func TestScraper_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>no paragraphs here</div></body></html>`))
	}))
	defer srv.Close()

	_, _, err := New().Scrape(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrNoContent)
}

func TestScraper_OversizedPageIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>first</p>`))
		// padding past the size cap, then a paragraph that must not survive
		_, _ = w.Write([]byte(strings.Repeat("<!-- x -->", 100)))
		_, _ = w.Write([]byte(`<p>late paragraph</p></body></html>`))
	}))
	defer srv.Close()

	s := New()
	s.maxBody = 256

	_, body, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "first", body)
}

func TestScraper_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := New().Scrape(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestScraper_InvalidLink(t *testing.T) {
	for _, link := range []string{"", "not a url", "ftp://example.com"} {
		_, _, err := New().Scrape(context.Background(), link)
		require.ErrorIs(t, err, ErrInvalidLink)
	}
}
