package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotePage = `
<html><body>
<div class="q-wrapper">
  <div class="quote-a"><a href="/alpha-quote">Wisdom begins in wonder.</a></div>
  <div class="author-p bylines">by Socrates</div>
</div>
<div class="q-wrapper">
  <a class="quote-a" href="/beta-quote">Know thyself.</a>
  <p class="author-p"><a>Plato</a></p>
</div>
<div class="q-wrapper">
  <div class="quote-a">Unattributed words.</div>
</div>
</body></html>`

func newTestScraper(baseURL string) *Scraper {
	return New(
		WithBaseURL(baseURL),
		WithPageDelay(0),
		WithMaxPages(5),
	)
}

func TestSlugFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain slug", "https://quotefancy.com/socrates-quotes", "socrates-quotes"},
		{"nested path", "https://quotefancy.com/socrates-quotes/page/2", "socrates-quotes"},
		{"trailing slash", "https://quotefancy.com/plato/", "plato"},
		{"no path", "https://quotefancy.com", ""},
		{"whitespace", "  https://quotefancy.com/mark-twain  ", "mark-twain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SlugFromURL(tt.in))
		})
	}
}

func TestScrapeSlugParsesContainers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/socrates/page/1" {
			_, _ = w.Write([]byte(quotePage))
			return
		}
		// Page 2 has no containers; the scan stops there.
		_, _ = w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	rows := newTestScraper(srv.URL).ScrapeSlug(context.Background(), "socrates")
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Serial)
	assert.Equal(t, "Wisdom begins in wonder.", rows[0].Quote)
	assert.Equal(t, "/alpha-quote", rows[0].Link)
	assert.Equal(t, "Socrates", rows[0].Author)

	assert.Equal(t, 2, rows[1].Serial)
	assert.Equal(t, "Know thyself.", rows[1].Quote)
	assert.Equal(t, "Plato", rows[1].Author)

	// No author markup falls back to Anonymous.
	assert.Equal(t, "Anonymous", rows[2].Author)
}

func TestScrapeSlugSerialsContinueAcrossPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/x/page/1", "/x/page/2":
			_, _ = w.Write([]byte(quotePage))
		default:
			_, _ = w.Write([]byte("<html></html>"))
		}
	}))
	defer srv.Close()

	rows := newTestScraper(srv.URL).ScrapeSlug(context.Background(), "x")
	require.Len(t, rows, 6)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Serial)
	}
}

func TestScrapeSlugRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/y/page/1" {
			_, _ = w.Write([]byte("<html></html>"))
			return
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(quotePage))
	}))
	defer srv.Close()

	rows := newTestScraper(srv.URL).ScrapeSlug(context.Background(), "y")
	assert.Len(t, rows, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScrapeSlugStopsOnHardFailure(t *testing.T) {
	t.Parallel()

	var pagesServed atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/z/page/1":
			pagesServed.Add(1)
			_, _ = w.Write([]byte(quotePage))
		case "/z/page/2":
			pagesServed.Add(1)
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected request after hard failure: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	// Page 1 succeeds, page 2 404s without retries, scan ends with the rows
	// collected so far.
	rows := newTestScraper(srv.URL).ScrapeSlug(context.Background(), "z")
	assert.Len(t, rows, 3)
	assert.Equal(t, int32(2), pagesServed.Load())
}

func TestScrapeSlugHonorsPageBound(t *testing.T) {
	t.Parallel()

	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pages.Add(1)
		_, _ = w.Write([]byte(quotePage))
	}))
	defer srv.Close()

	s := New(WithBaseURL(srv.URL), WithPageDelay(0), WithMaxPages(2))
	rows := s.ScrapeSlug(context.Background(), "s")
	assert.Len(t, rows, 6)
	assert.Equal(t, int32(2), pages.Load())
}

func TestScrapeSlugGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rows := newTestScraper(srv.URL).ScrapeSlug(context.Background(), "w")
	assert.Empty(t, rows)
	assert.Equal(t, int32(3), calls.Load(), "three attempts for page 1, then stop")
}

func TestScraperDefaults(t *testing.T) {
	t.Parallel()

	s := New()
	assert.Equal(t, defaultBaseURL, s.baseURL)
	assert.Equal(t, defaultMaxPages, s.maxPages)
	assert.NotNil(t, s.client)
	assert.NotNil(t, s.limiter)
}
