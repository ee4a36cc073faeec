// Package extract fetches a homepage and reduces it to plain text for the
// analysis prompt. It is a stateless, single-shot collaborator: one GET, one
// parse, no retries.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultTimeout = 10 * time.Second

// Client fetches homepages over HTTP.
type Client struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

// NewClient returns a client with defaults applied.
func NewClient() *Client {
	return &Client{Timeout: defaultTimeout}
}

// HomepageText fetches url and returns the page's visible text with
// whitespace collapsed. Any transport failure or non-2xx status is an
// error; empty content is never substituted for a failed fetch.
func (c *Client) HomepageText(ctx context.Context, url string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}

	return PageText(doc), nil
}

// PageText extracts visible text from a parsed document. Script, style, and
// noscript nodes carry no prose and are dropped before flattening.
func PageText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	root := doc.Find("body")
	text := root.Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " ")
}
