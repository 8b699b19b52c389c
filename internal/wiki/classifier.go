// Package wiki turns Wikipedia article URLs into cleaned article text.
package wiki

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// articleURLPattern matches a per-language-code Wikipedia article path
// with a single non-empty article segment.
var articleURLPattern = regexp.MustCompile(`^https?://[a-z]{2}\.wikipedia\.org/wiki/[^/]+$`)

// reservedNamespaces are page namespaces that never hold a single
// article (special pages, talk pages, categories, ...).
var reservedNamespaces = []string{
	"special:", "talk:", "user:", "category:", "file:", "template:",
	"help:", "portal:", "wikipedia:", "mediawiki:",
}

// IsValidArticleURL reports whether raw references a single, specific
// Wikipedia article. Pure function, no I/O.
func IsValidArticleURL(raw string) bool {
	if raw == "" {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	// Article URLs never carry a query string or fragment.
	if strings.ContainsAny(raw, "?#") {
		return false
	}

	if !articleURLPattern.MatchString(raw) {
		return false
	}

	wikiPath := strings.ToLower(parsed.Path)
	for _, ns := range reservedNamespaces {
		if strings.Contains(wikiPath, ns) {
			return false
		}
	}

	if !strings.Contains(parsed.Path, "/wiki/") || strings.HasSuffix(parsed.Path, "/wiki/") {
		return false
	}

	return true
}

// Prober issues lightweight HEAD existence probes against article URLs.
type Prober struct {
	client    *http.Client
	userAgent string
}

// NewProber builds a Prober with the given probe timeout and the fixed
// identifying User-Agent used for all Wikipedia traffic.
func NewProber(timeout time.Duration, userAgent string) *Prober {
	return &Prober{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// CheckAccessible verifies that an article URL is reachable without a
// full fetch. Callers are expected to have validated the URL format
// with IsValidArticleURL already. A positive result does not guarantee
// the subsequent GET succeeds. The returned string describes the failure.
func (p *Prober) CheckAccessible(ctx context.Context, rawURL string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, "Invalid Wikipedia URL format"
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return false, "Request timeout - Wikipedia may be unavailable"
		}
		return false, "Connection error - check internet connection"
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, "Wikipedia article not found"
	}
	if resp.StatusCode >= 400 {
		return false, "HTTP error: " + resp.Status
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") {
		return false, "Invalid content type - not an HTML page"
	}

	return true, "URL is accessible"
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	for e := err; e != nil; e = unwrap(e) {
		if t, ok := e.(timeouter); ok && t.Timeout() {
			return true
		}
	}
	return false
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}
