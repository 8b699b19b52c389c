package wiki

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/retry"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// titleSelectors are tried in order before falling back to <title>.
var titleSelectors = []string{
	"h1.firstHeading",
	"h1#firstHeading",
	".mw-page-title-main",
	"h1",
}

// unwantedSelectors is the structural denylist removed from the content
// container before text extraction.
var unwantedSelectors = []string{
	// References and citations
	"sup.reference", ".reference", ".references", "ol.references",
	// Navigation and metadata
	".navbox", ".navigation-box", ".infobox", ".metadata", ".dablink", ".hatnote",
	// Tables (most are not content)
	"table.wikitable", "table.infobox", "table.navbox",
	// Media and captions
	".thumbcaption", ".gallery",
	// Navigation elements
	".toc", "#toc", ".mw-editsection",
	// Footer and administrative
	".catlinks", ".printfooter", ".mw-footer",
	// Scripts and styles
	"script", "style", "noscript",
	// Coordinates and geo data
	".geo", ".coordinates",
	// Sidebar content
	".sidebar", ".vertical-navbox",
	// Disambiguation
	".dmbox", ".ambox",
}

// messageBoxClasses catches message boxes whose class lists slip past
// the selector denylist.
var messageBoxClasses = map[string]bool{
	"mbox": true, "ambox": true, "tmbox": true, "imbox": true, "ombox": true, "fmbox": true,
}

// missingArticleMarkers are phrases Wikipedia renders on pages that
// exist as URLs but not as articles.
var missingArticleMarkers = []string{
	"Wikipedia does not have an article",
	"The page you requested does not exist",
	"This page does not exist",
}

var (
	citationPattern   = regexp.MustCompile(`\[[^\]]*\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	titleSuffixPattern = regexp.MustCompile(`\s*-\s*Wikipedia.*$`)

	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Coordinates:[^.\n]*`),
		regexp.MustCompile(`(?i)This article needs additional citations[^.\n]*`),
		regexp.MustCompile(`(?i)Please help improve this article[^.\n]*`),
		regexp.MustCompile(`(?i)This article may require cleanup[^.\n]*`),
		regexp.MustCompile(`(?i)The examples and perspective in this article[^.\n]*`),
	}
)

// transientError marks transport failures worth another fetch attempt.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Extractor fetches Wikipedia pages and strips them down to title and
// cleaned body text.
type Extractor struct {
	client    *http.Client
	prober    *Prober
	fetch     *retry.Driver
	cfg       config.ScraperConfig
	sanitizer *bluemonday.Policy
	logger    *zap.Logger

	// validateURL is swapped out in tests to point the extractor at
	// local fixture servers.
	validateURL func(string) bool
}

// NewExtractor builds an Extractor from the scraper configuration.
func NewExtractor(cfg config.ScraperConfig, logger *zap.Logger) *Extractor {
	fetch := retry.NewDriver(cfg.MaxRetries, retry.NoBackoff)
	fetch.Retryable = func(err error) bool {
		var t *transientError
		return errors.As(err, &t)
	}
	return &Extractor{
		client:    &http.Client{Timeout: cfg.Timeout},
		prober:    NewProber(cfg.ProbeTimeout, cfg.UserAgent),
		fetch:     fetch,
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,

		validateURL: IsValidArticleURL,
	}
}

// Prober exposes the extractor's HEAD probe for callers that want the
// lightweight accessibility pre-check on its own.
func (e *Extractor) Prober() *Prober {
	return e.prober
}

// Extract implements domain.ArticleExtractor.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*domain.ScrapedArticle, error) {
	if !e.validateURL(rawURL) {
		return nil, domain.NewInvalidURLError(rawURL)
	}

	if ok, reason := e.prober.CheckAccessible(ctx, rawURL); !ok {
		return nil, classifyProbeFailure(rawURL, reason)
	}

	e.logger.Info("Scraping Wikipedia article", zap.String("url", rawURL))

	body, err := e.fetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewParseError("Failed to parse HTML content", err)
	}

	rawText := string(body)
	for _, marker := range missingArticleMarkers {
		if strings.Contains(rawText, marker) {
			return nil, domain.NewNotFoundError("Wikipedia article not found")
		}
	}

	if doc.Find("div.disambig").Length() > 0 ||
		doc.Find("div#disambigbox").Length() > 0 ||
		strings.Contains(rawText, "may refer to:") {
		return nil, domain.NewDisambiguationError(rawURL)
	}

	title := e.extractTitle(doc)
	content := e.extractContent(doc, rawText)

	if strings.TrimSpace(title) == "" {
		return nil, domain.NewParseError("Failed to extract article title", nil)
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.NewParseError("Failed to extract article content", nil)
	}

	contentLen := len(strings.TrimSpace(content))
	if contentLen < e.cfg.MinContentChars {
		return nil, domain.NewContentTooShortError(contentLen)
	}
	if contentLen < 1000 {
		e.logger.Warn("Article appears to be a stub",
			zap.String("title", title),
			zap.Int("content_length", contentLen))
	}

	e.logger.Info("Successfully scraped article",
		zap.String("title", title),
		zap.Int("content_length", contentLen))

	return &domain.ScrapedArticle{
		Title:     title,
		Content:   content,
		SourceURL: rawURL,
	}, nil
}

// fetchPage performs the bounded GET with transport-level retries.
// Timeouts and connection errors are retried immediately; HTTP status
// failures are terminal.
func (e *Extractor) fetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	attempts, err := e.fetch.Do(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 0 {
			e.logger.Warn("Retrying Wikipedia fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return domain.NewInvalidURLError(rawURL)
		}
		req.Header.Set("User-Agent", e.cfg.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := e.client.Do(req)
		if err != nil {
			return &transientError{err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.NewNotFoundError("Wikipedia article not found (404 error)")
		}
		if resp.StatusCode >= 400 {
			return domain.NewNetworkError(fmt.Sprintf("HTTP error: %s", resp.Status), nil)
		}

		contentType := strings.ToLower(resp.Header.Get("Content-Type"))
		if !strings.Contains(contentType, "text/html") {
			return domain.NewParseError(fmt.Sprintf("Invalid content type: %s (expected HTML)", contentType), nil)
		}

		// Read at most one byte past the cap so oversized payloads are
		// rejected without buffering the rest.
		limited := io.LimitReader(resp.Body, e.cfg.MaxContentBytes+1)
		data, err := io.ReadAll(limited)
		if err != nil {
			return &transientError{err}
		}
		if int64(len(data)) > e.cfg.MaxContentBytes {
			return domain.NewContentTooLargeError(e.cfg.MaxContentBytes)
		}

		body = data
		return nil
	})

	if err != nil {
		var t *transientError
		if errors.As(err, &t) {
			return nil, domain.NewNetworkError(
				fmt.Sprintf("Network error while accessing Wikipedia after %d attempts", attempts), t.err)
		}
		return nil, err
	}
	return body, nil
}

// extractTitle tries the heading selectors in order, then the <title>
// tag with the " - Wikipedia" suffix stripped, then the literal
// "Unknown Article". The fallback is logged so masked extraction
// failures stay visible.
func (e *Extractor) extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return titleSuffixPattern.ReplaceAllString(title, "")
	}

	e.logger.Warn("No title element found, falling back to placeholder")
	return "Unknown Article"
}

// extractContent locates the main content container, removes the
// denylisted elements and returns the cleaned concatenated text.
func (e *Extractor) extractContent(doc *goquery.Document, rawHTML string) string {
	container := doc.Find("#mw-content-text").First()
	if container.Length() == 0 {
		container = doc.Find(".mw-parser-output").First()
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		// No traversable container at all; strip tags from the raw
		// document as a last resort.
		return cleanText(e.sanitizer.Sanitize(rawHTML))
	}

	for _, selector := range unwantedSelectors {
		container.Find(selector).Remove()
	}

	container.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		classAttr, _ := s.Attr("class")
		for _, cls := range strings.Fields(classAttr) {
			if messageBoxClasses[cls] {
				s.Remove()
				return
			}
		}
	})

	return cleanText(container.Text())
}

// cleanText normalizes extracted article text: citation markers out,
// whitespace collapsed, known boilerplate sentences removed.
func cleanText(text string) string {
	text = citationPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	for _, pattern := range boilerplatePatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// classifyProbeFailure maps a probe failure reason onto the error
// taxonomy surfaced to callers.
func classifyProbeFailure(rawURL, reason string) *domain.DomainError {
	switch {
	case strings.Contains(reason, "not found"):
		return domain.NewNotFoundError("Wikipedia article not found")
	case strings.Contains(reason, "Invalid content type"):
		return domain.NewParseError(reason, nil)
	case strings.Contains(reason, "Invalid Wikipedia URL"):
		return domain.NewInvalidURLError(rawURL)
	default:
		return domain.NewNetworkError(fmt.Sprintf("URL validation failed: %s", reason), nil)
	}
}
