// Package reference fetches web pages and reduces them to a short plain-text
// excerpt that can seed a prompt.
package reference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cixtor/readability"
	"github.com/gocolly/colly/v2"
)

const (
	// MaxChars bounds each excerpt.
	MaxChars = 1000

	DefaultTimeout = 5 * time.Second

	userAgent = "Mozilla/5.0 (compatible; quill/1.0; +https://github.com/sant0-9/quill)"
)

// Reference is one fetched (or failed) URL.
type Reference struct {
	URL  string
	Text string
	Err  error
}

// OK reports whether the page was fetched.
func (r Reference) OK() bool { return r.Err == nil }

// Extractor fetches reference pages one at a time.
type Extractor struct {
	timeout  time.Duration
	maxChars int
}

func NewExtractor(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{
		timeout:  timeout,
		maxChars: MaxChars,
	}
}

// Placeholder is the text used in place of a page that could not be fetched.
func Placeholder(rawURL string) string {
	return fmt.Sprintf("[Could not fetch content from %s]", rawURL)
}

// Fetch downloads rawURL and returns the joined paragraph text, truncated to
// MaxChars. Failures are returned as *FetchError.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		return "", &FetchError{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", classify(rawURL, 0, err)
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(e.timeout)
	c.WithTransport(&contextTransport{ctx: ctx, base: http.DefaultTransport})

	var (
		paragraphs []string
		body       []byte
		status     int
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnHTML("p", func(h *colly.HTMLElement) {
		if text := strings.Join(strings.Fields(h.Text), " "); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
	})

	if err := c.Visit(rawURL); err != nil {
		return "", classify(rawURL, status, err)
	}

	text := strings.Join(paragraphs, " ")
	if text == "" && len(body) > 0 {
		// Pages without <p> markup still usually have an article body.
		article, err := readability.New().Parse(bytes.NewReader(body), rawURL)
		if err != nil {
			return "", &FetchError{Kind: KindParse, URL: rawURL, Err: err}
		}
		text = strings.Join(strings.Fields(article.TextContent), " ")
	}

	return Truncate(text, e.maxChars), nil
}

// ExtractAll fetches each distinct, non-blank URL in order. Failed pages keep
// the placeholder text and carry the error.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string) []Reference {
	var refs []Reference
	seen := make(map[string]bool)

	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		refs = append(refs, e.extract(ctx, u))
	}

	return refs
}

// extract never fails: any fetch error is logged and replaced by Placeholder.
func (e *Extractor) extract(ctx context.Context, u string) Reference {
	start := time.Now()
	text, err := e.Fetch(ctx, u)
	if err != nil {
		log.Printf("[WARN] reference %s skipped: %v", u, err)
		return Reference{URL: u, Text: Placeholder(u), Err: err}
	}
	log.Printf("[DEBUG] reference %s: %d chars in %s", u, utf8.RuneCountInString(text), time.Since(start).Round(time.Millisecond))
	return Reference{URL: u, Text: text}
}

// contextTransport binds every request colly makes to ctx, so canceling a
// run aborts an in-flight fetch instead of waiting out the timeout.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

// The request keeps its own context so the collector's timeout still applies.
func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	context.AfterFunc(t.ctx, cancel)
	return t.base.RoundTrip(req.WithContext(ctx))
}

// Truncate returns the first max characters of s.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// ParseURLs splits free text on commas and whitespace.
func ParseURLs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	var urls []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("empty URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
