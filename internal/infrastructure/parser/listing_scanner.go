package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DraftReviewer/internal/config"
	"DraftReviewer/internal/source"
)

const defaultPrefix = "Draft:"

// ListingScanner reads a rendered wiki page (a backlog or report listing) and
// collects the titles of the drafts it links to.
type ListingScanner struct {
	client    *http.Client
	userAgent string
}

var _ source.Strategy = (*ListingScanner)(nil)

// NewListingScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewListingScanner(client *http.Client, userAgent string) *ListingScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = "DraftReviewer/1.0"
	}
	return &ListingScanner{client: client, userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (l *ListingScanner) Name() string {
	return config.SourceListing
}

// List fetches req.URL and returns linked titles starting with req.Prefix
// (Draft: by default), in page order and without duplicates.
func (l *ListingScanner) List(ctx context.Context, req source.Request) ([]string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("no listing url provided for source %s", req.SourceName)
	}

	doc, err := l.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", req.SourceName, err)
	}

	prefix := req.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return extractTitles(doc, prefix, req.Limit), nil
}

func (l *ListingScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractTitles(doc *goquery.Document, prefix string, limit int) []string {
	var (
		titles []string
		seen   = map[string]struct{}{}
	)

	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		title := linkTitle(a)
		if !strings.HasPrefix(title, prefix) {
			return true
		}
		if _, ok := seen[title]; ok {
			return true
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
		return limit <= 0 || len(titles) < limit
	})

	return titles
}

// linkTitle prefers the anchor's title attribute and falls back to the last
// path segment of /wiki/ links.
func linkTitle(a *goquery.Selection) string {
	if a.HasClass("new") {
		return ""
	}
	if title, ok := a.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}

	href, _ := a.Attr("href")
	idx := strings.Index(href, "/wiki/")
	if idx < 0 {
		return ""
	}
	segment := href[idx+len("/wiki/"):]
	if cut := strings.IndexAny(segment, "?#"); cut >= 0 {
		segment = segment[:cut]
	}
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(decoded, "_", " ")
}
