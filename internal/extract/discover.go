package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// articlePathPatterns match URL paths that typically lead to news articles:
// section prefixes and date-like segments.
var articlePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/news/`),
	regexp.MustCompile(`/article/`),
	regexp.MustCompile(`/\d{4}/\d{2}/`),
	regexp.MustCompile(`/world/`),
	regexp.MustCompile(`/politics/`),
	regexp.MustCompile(`/technology/`),
	regexp.MustCompile(`/business/`),
	regexp.MustCompile(`/health/`),
	regexp.MustCompile(`/science/`),
	regexp.MustCompile(`/environment/`),
	regexp.MustCompile(`/sports/`),
}

// excludePathPatterns match paths that pass the article patterns but are not
// article pages: live blogs, media galleries, index and utility pages.
var excludePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/live/`),
	regexp.MustCompile(`/weather/`),
	regexp.MustCompile(`/search`),
	regexp.MustCompile(`/video/`),
	regexp.MustCompile(`/gallery/`),
	regexp.MustCompile(`/podcast/`),
	regexp.MustCompile(`/newsletter/`),
	regexp.MustCompile(`/subscribe/`),
	regexp.MustCompile(`/contact/`),
	regexp.MustCompile(`/about/`),
	regexp.MustCompile(`/tag/`),
	regexp.MustCompile(`/category/`),
}

// trackingParams are stripped during URL canonicalization so the same
// article linked with different campaign tags dedupes to one entry.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid",
}

// DiscoverURLs fetches a homepage or listing page and returns up to maxCount
// candidate article URLs in document order, first occurrence kept. Document
// order favors the most prominent, above-the-fold links.
func (e *Extractor) DiscoverURLs(ctx context.Context, homepageURL string, maxCount int) ([]string, error) {
	body, err := e.Fetcher.Fetch(ctx, homepageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHomepageFetch, homepageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHomepageFetch, homepageURL, err)
	}
	base, err := url.Parse(homepageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrHomepageFetch, homepageURL, err)
	}

	seen := map[string]struct{}{}
	var found []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		u := base.ResolveReference(ref)
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		if !sameSite(u.Hostname(), base.Hostname()) {
			return
		}
		if !IsArticlePath(u.Path) {
			return
		}
		canonicalize(u)
		key := u.String()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		found = append(found, key)
	})

	if maxCount > 0 && len(found) > maxCount {
		found = found[:maxCount]
	}
	return found, nil
}

// IsArticlePath reports whether a URL path looks like a news article: it
// matches an article pattern, matches no exclusion, and is at least two
// segments deep (a bare section index like /news/ is a listing, not an
// article).
func IsArticlePath(path string) bool {
	matched := false
	for _, p := range articlePathPatterns {
		if p.MatchString(path) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, p := range excludePathPatterns {
		if p.MatchString(path) {
			return false
		}
	}
	return pathDepth(path) >= 2
}

func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// sameSite treats subdomains of the listing page's registrable host as the
// same site, so www.example.com links to news.example.com survive.
func sameSite(host, baseHost string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	baseHost = strings.ToLower(strings.TrimPrefix(baseHost, "www."))
	if host == baseHost {
		return true
	}
	return strings.HasSuffix(host, "."+baseHost) || strings.HasSuffix(baseHost, "."+host)
}

func canonicalize(u *url.URL) {
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
}
