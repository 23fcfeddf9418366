// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package page fetches web pages and extracts their semantic content:
// metadata, Open Graph and Twitter Card properties, JSON-LD, microdata,
// and plain text.
package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/semantic-browser/internal/httputil"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

const (
	defaultMaxBodyBytes = 10 << 20 // 10 MiB
	defaultMaxRedirects = 10
	defaultUserAgent    = "semantic-browser/0.1"
)

// Fetcher downloads pages over plain HTTP. It tracks redirects, caps the
// body size, and retries transient failures.
type Fetcher struct {
	Client *http.Client
	cfg    types.FetchConfig
}

// NewFetcher builds a Fetcher from config, filling in defaults.
func NewFetcher(cfg types.FetchConfig) *Fetcher {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		},
	}

	return &Fetcher{Client: client, cfg: cfg}
}

// Fetch downloads the page at rawURL and returns it with timing and
// redirect information. Only http and https URLs are accepted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*types.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q: only http and https are fetched", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, f.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}

	// Read one byte past the cap to distinguish "exactly at cap" from "over".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("page %s exceeds size cap of %d bytes", rawURL, f.cfg.MaxBodyBytes)
	}

	elapsed := time.Since(start)

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	html := string(body)
	if err := ValidateHTML(html, f.cfg.MaxBodyBytes); err != nil {
		return nil, fmt.Errorf("page %s: %w", rawURL, err)
	}

	return &types.Page{
		URL:           rawURL,
		FinalURL:      finalURL,
		StatusCode:    resp.StatusCode,
		HTML:          html,
		ContentLength: len(body),
		FetchTime:     elapsed,
		FetchedAt:     start.Add(elapsed),
	}, nil
}

// ValidateHTML rejects inputs that should never reach the extractor:
// oversized documents and bodies containing NUL bytes.
func ValidateHTML(html string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	if int64(len(html)) > maxBytes {
		return fmt.Errorf("HTML input of %d bytes exceeds cap of %d", len(html), maxBytes)
	}
	if strings.ContainsRune(html, '\x00') {
		return fmt.Errorf("HTML input contains NUL bytes")
	}
	return nil
}

// Slug derives a filesystem-safe page identifier from a URL, used to name
/// raw and extracted files. "https://example.com/a/b" becomes
// "example.com-a-b".
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return sanitizeSlug(rawURL)
	}
	s := u.Host
	if p := strings.Trim(u.Path, "/"); p != "" {
		s += "-" + strings.ReplaceAll(p, "/", "-")
	}
	return sanitizeSlug(s)
}

func sanitizeSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
