// Package extract turns fetched news pages into structured Article records.
// It discovers candidate article URLs on a listing page and extracts
// title, body, author, and publish date from individual pages using the
// tiered selector tables in internal/selectors.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/harvestlab/newsharvest/internal/article"
	"github.com/harvestlab/newsharvest/internal/selectors"
)

// Error classes for a harvest run. Per-URL errors (ErrFetch,
// ErrInsufficientContent, ErrMalformedPage) are recoverable: the orchestrator
// logs, counts, and skips them. ErrHomepageFetch is fatal to a run because
// without discovery there are no candidates.
var (
	ErrFetch               = errors.New("fetch failed")
	ErrHomepageFetch       = errors.New("homepage fetch failed")
	ErrInsufficientContent = errors.New("insufficient content")
	ErrMalformedPage       = errors.New("malformed page")
)

// DefaultMinWords is the minimum viable body length; pages below it are not
// emitted as articles.
const DefaultMinWords = 25

// Fetcher is the HTTP collaborator. internal/fetch satisfies it through a
// small adapter in internal/harvest.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor discovers and extracts articles from one news site.
type Extractor struct {
	Fetcher Fetcher
	// MinWords overrides DefaultMinWords when > 0.
	MinWords int
	// Now stubs the capture timestamp in tests. Nil means time.Now.
	Now func() time.Time
}

func (e *Extractor) minWords() int {
	if e.MinWords > 0 {
		return e.MinWords
	}
	return DefaultMinWords
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ExtractArticle fetches one page and builds an Article from it. Content
// shorter than the minimum word count means the page is not a usable
// article; partial records are never emitted.
func (e *Extractor) ExtractArticle(ctx context.Context, pageURL string) (article.Article, error) {
	body, err := e.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return article.Article{}, fmt.Errorf("%w: %s: %v", ErrFetch, pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return article.Article{}, fmt.Errorf("%w: %s: %v", ErrMalformedPage, pageURL, err)
	}

	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Hostname()
	}
	r := selectors.Resolver{Category: selectors.CategoryFor(host)}

	content, ok := r.Resolve(doc, selectors.FieldContent)
	if !ok {
		return article.Article{}, fmt.Errorf("%w: %s: no content matched", ErrInsufficientContent, pageURL)
	}
	words := len(strings.Fields(content))
	if words < e.minWords() {
		return article.Article{}, fmt.Errorf("%w: %s: %d words", ErrInsufficientContent, pageURL, words)
	}

	a := article.Article{
		URL:       pageURL,
		Content:   content,
		Source:    SourceName(host),
		WordCount: words,
		ScrapedAt: e.now(),
	}
	if title, ok := r.Resolve(doc, selectors.FieldTitle); ok {
		a.Title = title
	}
	if author, ok := r.Resolve(doc, selectors.FieldAuthor); ok {
		a.Author = author
	}
	if raw, ok := r.Resolve(doc, selectors.FieldDate); ok {
		a.PublishDate = parsePublishDate(raw)
	}
	return a, nil
}

// dateLayouts are tried in order against extracted date strings. Values that
// match none are dropped rather than guessed at.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

func parsePublishDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
