package extract_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestlab/newsharvest/internal/extract"
)

// mapFetcher serves pages from memory and records requested URLs.
type mapFetcher struct {
	pages    map[string]string
	requests []string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.requests = append(f.requests, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return []byte(page), nil
}

func articleHTML(title, author, date string, paragraphs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>", title)
	}
	if author != "" {
		fmt.Fprintf(&b, `<div class="byline">%s</div>`, author)
	}
	if date != "" {
		fmt.Fprintf(&b, `<time datetime="%s">published</time>`, date)
	}
	b.WriteString("<article>")
	for _, p := range paragraphs {
		fmt.Fprintf(&b, "<p>%s</p>", p)
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func longParagraph(n int) string {
	return strings.TrimSpace(strings.Repeat("the committee reviewed the proposal in detail ", n))
}

func TestExtractArticle_FullRecord(t *testing.T) {
	url := "https://example.com/news/budget-vote"
	f := &mapFetcher{pages: map[string]string{
		url: articleHTML("Parliament Passes Budget", "By Jane Doe", "2024-06-05T09:30:00Z",
			longParagraph(4), longParagraph(3)),
	}}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	e := &extract.Extractor{Fetcher: f, Now: func() time.Time { return now }}

	a, err := e.ExtractArticle(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, url, a.URL)
	assert.Equal(t, "Parliament Passes Budget", a.Title)
	assert.Equal(t, "By Jane Doe", a.Author)
	assert.Equal(t, "Example", a.Source)
	require.NotNil(t, a.PublishDate)
	assert.Equal(t, 2024, a.PublishDate.Year())
	assert.Equal(t, len(strings.Fields(a.Content)), a.WordCount)
	assert.True(t, a.ScrapedAt.Equal(now))
	assert.NotContains(t, a.Content, "\n\n")
}

func TestExtractArticle_FetchError(t *testing.T) {
	f := &mapFetcher{pages: map[string]string{}}
	e := &extract.Extractor{Fetcher: f}

	_, err := e.ExtractArticle(context.Background(), "https://example.com/news/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrFetch)
}

func TestExtractArticle_InsufficientContent(t *testing.T) {
	url := "https://example.com/news/stub"
	f := &mapFetcher{pages: map[string]string{
		url: articleHTML("A Stub", "", "", "Only a brief line of placeholder text here."),
	}}
	e := &extract.Extractor{Fetcher: f}

	_, err := e.ExtractArticle(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrInsufficientContent)
}

func TestExtractArticle_NoTitleStillEmitted(t *testing.T) {
	url := "https://example.com/news/untitled"
	f := &mapFetcher{pages: map[string]string{
		url: articleHTML("", "", "", longParagraph(5)),
	}}
	e := &extract.Extractor{Fetcher: f}

	a, err := e.ExtractArticle(context.Background(), url)
	require.NoError(t, err)
	assert.Empty(t, a.Title)
	assert.NotEmpty(t, a.Content)
}

func TestExtractArticle_UnparseableDateDropped(t *testing.T) {
	url := "https://example.com/news/odd-date"
	f := &mapFetcher{pages: map[string]string{
		url: articleHTML("Odd Date", "", "sometime last week", longParagraph(5)),
	}}
	e := &extract.Extractor{Fetcher: f}

	a, err := e.ExtractArticle(context.Background(), url)
	require.NoError(t, err)
	assert.Nil(t, a.PublishDate)
}

func TestDiscoverURLs_FiltersAndPreservesOrder(t *testing.T) {
	home := "https://example.com/"
	f := &mapFetcher{pages: map[string]string{
		home: `<html><body>
			<a href="/news/second-story">2</a>
			<a href="/news/first-story?utm_source=front">1</a>
			<a href="/news/second-story#comments">dup</a>
			<a href="/news/">section index</a>
			<a href="/video/clip-of-the-day">video</a>
			<a href="/tag/politics/roundup">tag page</a>
			<a href="https://other-site.com/news/offsite-story">offsite</a>
			<a href="javascript:void(0)">js</a>
			<a href="/about/team">about</a>
			<a href="/2024/06/dated-story">dated</a>
		</body></html>`,
	}}
	e := &extract.Extractor{Fetcher: f}

	urls, err := e.DiscoverURLs(context.Background(), home, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/news/second-story",
		"https://example.com/news/first-story",
		"https://example.com/2024/06/dated-story",
	}, urls)
}

func TestDiscoverURLs_TruncatesToMaxCount(t *testing.T) {
	home := "https://example.com/"
	var links strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&links, `<a href="/news/story-%d">s</a>`, i)
	}
	f := &mapFetcher{pages: map[string]string{
		home: "<html><body>" + links.String() + "</body></html>",
	}}
	e := &extract.Extractor{Fetcher: f}

	urls, err := e.DiscoverURLs(context.Background(), home, 3)
	require.NoError(t, err)
	require.Len(t, urls, 3)
	assert.Equal(t, "https://example.com/news/story-0", urls[0])
}

func TestDiscoverURLs_HomepageFetchFailure(t *testing.T) {
	f := &mapFetcher{pages: map[string]string{}}
	e := &extract.Extractor{Fetcher: f}

	_, err := e.DiscoverURLs(context.Background(), "https://down.example.com/", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrHomepageFetch)
}

func TestIsArticlePath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/news/local-election-results", true},
		{"/politics/senate-vote", true},
		{"/2024/06/dated-story", true},
		{"/news/", false},
		{"/news/live/updates", false},
		{"/category/news/something", false},
		{"/opinion/columns", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extract.IsArticlePath(tc.path), "path %q", tc.path)
	}
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "BBC", extract.SourceName("www.bbc.co.uk"))
	assert.Equal(t, "TechCrunch", extract.SourceName("techcrunch.com"))
	assert.Equal(t, "Arstechnica", extract.SourceName("arstechnica.com"))
	assert.Equal(t, "Example", extract.SourceName("www.example.com"))
}
