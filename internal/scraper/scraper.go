// Package scraper walks the paginated quote site and collects quote, link,
// and author tuples. A failed page never escapes this package; it simply
// ends the current source's scan.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/suvichaar/quotepipe/internal/model"
)

const (
	defaultBaseURL   = "https://quotefancy.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/90.0.4430.93 Safari/537.36"
	defaultTimeout  = 10 * time.Second
	defaultMaxPages = 10
)

// fallbackAuthor is used when a quote container carries no author markup.
const fallbackAuthor = "Anonymous"

// Scraper fetches quote pages with a fixed inter-page delay and bounded
// retries on transient server errors.
type Scraper struct {
	client    *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
	maxPages  int
	retries   uint
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the quote site base URL (for testing).
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithMaxPages bounds the number of pages fetched per slug.
func WithMaxPages(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithPageDelay sets the fixed delay between page fetches. Zero disables the
// limiter.
func WithPageDelay(d time.Duration) Option {
	return func(s *Scraper) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithUserAgent overrides the request User-Agent.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.userAgent = ua }
}

// New creates a Scraper with the site defaults: 10s timeout, 1s page delay,
// 10 pages per slug, 3 fetch attempts.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:    &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		maxPages:  defaultMaxPages,
		retries:   3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlugFromURL extracts the source slug: the first path segment of the URL.
func SlugFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return ""
	}
	return strings.SplitN(path, "/", 2)[0]
}

// ScrapeSlug walks the slug's pages in order and returns every quote found.
// Serial numbers are 1-based and continue across pages. The scan ends at the
// page bound, the first page without quote containers, or the first fetch
// failure; failures are logged and contained, so the caller always gets the
// rows collected so far.
func (s *Scraper) ScrapeSlug(ctx context.Context, slug string) []model.QuoteRow {
	var rows []model.QuoteRow
	serial := 1

	for page := 1; page <= s.maxPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return rows
		}

		pageURL := fmt.Sprintf("%s/%s/page/%d", s.baseURL, slug, page)
		body, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			zap.L().Warn("scraper: page fetch failed, ending scan",
				zap.String("slug", slug),
				zap.Int("page", page),
				zap.Error(&model.TransportError{URL: pageURL, Err: err}),
			)
			return rows
		}

		pageRows := parseQuotes(body, &serial)
		if len(pageRows) == 0 {
			return rows
		}
		rows = append(rows, pageRows...)
	}
	return rows
}

// fetchPage GETs one page, retrying transient server errors (500, 502, 503,
// 504) with exponential backoff. Any other failure is returned immediately.
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
			if err != nil {
				return retry.Unrecoverable(eris.Wrap(err, "scraper: create request"))
			}
			req.Header.Set("User-Agent", s.userAgent)
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			resp, err := s.client.Do(req)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			defer func() { _ = resp.Body.Close() }()

			if transientStatus(resp.StatusCode) {
				return eris.Errorf("scraper: status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(eris.Errorf("scraper: status %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return retry.Unrecoverable(eris.Wrap(err, "scraper: read body"))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.retries),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	return body, err
}

func transientStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseQuotes extracts quote rows from one page of HTML. Each q-wrapper
// container yields one row; serial is advanced for every row emitted.
func parseQuotes(body []byte, serial *int) []model.QuoteRow {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var rows []model.QuoteRow
	doc.Find("div.q-wrapper").Each(func(_ int, container *goquery.Selection) {
		quoteDiv := container.Find("div.quote-a").First()

		var quoteText, quoteLink string
		if quoteDiv.Length() > 0 {
			quoteText = strings.TrimSpace(quoteDiv.Text())
			quoteLink, _ = quoteDiv.Find("a").First().Attr("href")
		} else {
			anchor := container.Find("a.quote-a").First()
			quoteText = strings.TrimSpace(anchor.Text())
			quoteLink, _ = anchor.Attr("href")
		}

		author := fallbackAuthor
		if bylines := container.Find("div.author-p.bylines").First(); bylines.Length() > 0 {
			author = strings.TrimSpace(strings.Replace(bylines.Text(), "by ", "", 1))
		} else if link := container.Find("p.author-p a").First(); link.Length() > 0 {
			author = strings.TrimSpace(link.Text())
		}

		rows = append(rows, model.QuoteRow{
			Serial: *serial,
			Quote:  quoteText,
			Link:   quoteLink,
			Author: author,
		})
		*serial++
	})
	return rows
}
