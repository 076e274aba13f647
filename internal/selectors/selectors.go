// Package selectors locates article fields in parsed pages using ordered CSS
// selector strategies. Each field carries three tiers: site-specific
// selectors first, shared news-site patterns second, and generic HTML
// semantics last. The order is a fixed priority, which keeps extraction
// predictable when a page matches several tiers.
package selectors

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harvestlab/newsharvest/internal/normalize"
)

// Field identifies which article field a strategy extracts.
type Field int

const (
	FieldTitle Field = iota
	FieldContent
	FieldAuthor
	FieldDate
)

// Strategy is one rule for locating a field's value.
type Strategy struct {
	// Selector is a CSS selector evaluated against the document.
	Selector string
	// Attr names an attribute to read instead of element text, e.g.
	// "datetime" on <time> elements.
	Attr string
}

const (
	// minTitleChars rejects selector hits that are too short to be a
	// headline or byline.
	minTitleChars = 3
	// minContentChars is the minimum combined paragraph length for a
	// content strategy to win.
	minContentChars = 50
	// minParagraphChars drops boilerplate fragments such as
	// "Share this article" from extracted bodies.
	minParagraphChars = 20
	// maxAuthorChars rejects byline hits that captured surrounding copy.
	maxAuthorChars = 100
)

type fieldTable map[Field][]Strategy

// siteTables holds the primary tier, keyed by site category.
var siteTables = map[string]fieldTable{
	"bbc": {
		FieldTitle:   {{Selector: `h1[data-testid="headline"]`}},
		FieldContent: {{Selector: `[data-component="text-block"] p`}},
		FieldAuthor:  {{Selector: `[data-component="byline"]`}},
		FieldDate:    {{Selector: `[data-testid="timestamp"]`, Attr: "datetime"}, {Selector: `[data-testid="timestamp"]`}},
	},
}

// familyTable is the shared tier: class names common across news CMSes.
var familyTable = fieldTable{
	FieldTitle: {
		{Selector: "h1.story-headline"},
		{Selector: "h1.article-title"},
		{Selector: ".headline h1"},
		{Selector: ".article-header h1"},
	},
	FieldContent: {
		{Selector: ".story-body p"},
		{Selector: ".article-content p"},
		{Selector: ".post-content p"},
		{Selector: ".content p"},
	},
	FieldAuthor: {
		{Selector: ".byline"},
		{Selector: ".author"},
		{Selector: ".article-author"},
		{Selector: `[rel="author"]`},
		{Selector: ".writer"},
		{Selector: ".journalist"},
		{Selector: ".correspondent"},
	},
	FieldDate: {
		{Selector: ".date"},
		{Selector: ".published"},
		{Selector: ".article-date"},
		{Selector: ".publish-date"},
		{Selector: ".timestamp"},
	},
}

// genericTable is the last-resort tier: plain HTML semantics.
var genericTable = fieldTable{
	FieldTitle: {
		{Selector: "h1"},
	},
	FieldContent: {
		{Selector: "article p"},
		{Selector: "main p"},
		{Selector: "p"},
	},
	FieldAuthor: {
		{Selector: `meta[name="author"]`, Attr: "content"},
	},
	FieldDate: {
		{Selector: "time[datetime]", Attr: "datetime"},
		{Selector: "time"},
	},
}

// CategoryFor maps a hostname to a site category with a primary selector
// tier. Unknown hosts get only the shared and generic tiers.
func CategoryFor(host string) string {
	host = strings.ToLower(host)
	if strings.Contains(host, "bbc.") {
		return "bbc"
	}
	return ""
}

// Resolver resolves article fields for one site category.
type Resolver struct {
	Category string
}

// Strategies returns the ordered strategy list for a field: primary tier for
// the resolver's category, then the shared tier, then the generic tier.
func (r Resolver) Strategies(f Field) []Strategy {
	var out []Strategy
	if site, ok := siteTables[r.Category]; ok {
		out = append(out, site[f]...)
	}
	out = append(out, familyTable[f]...)
	out = append(out, genericTable[f]...)
	return out
}

// Resolve tries each strategy in order and returns the first normalized,
// non-empty value that passes the field's minimum-length heuristic. The
// second return is false when every strategy is exhausted; that is a normal
// outcome, not an error.
func (r Resolver) Resolve(doc *goquery.Document, f Field) (string, bool) {
	for _, s := range r.Strategies(f) {
		var val string
		var ok bool
		if f == FieldContent {
			val, ok = resolveContent(doc, s)
		} else {
			val, ok = resolveSingle(doc, s, f)
		}
		if ok {
			return val, true
		}
	}
	return "", false
}

func resolveSingle(doc *goquery.Document, s Strategy, f Field) (string, bool) {
	sel := doc.Find(s.Selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	var raw string
	if s.Attr != "" {
		raw, _ = sel.Attr(s.Attr)
	} else {
		raw = sel.Text()
	}
	val := normalize.Clean(raw)
	if len(val) < minTitleChars {
		return "", false
	}
	if f == FieldAuthor && len(val) > maxAuthorChars {
		return "", false
	}
	return val, true
}

// resolveContent collects every paragraph matched by the strategy, not just
// the first, dropping fragments shorter than minParagraphChars. Paragraphs
// are joined with single newlines.
func resolveContent(doc *goquery.Document, s Strategy) (string, bool) {
	var paragraphs []string
	total := 0
	doc.Find(s.Selector).Each(func(_ int, sel *goquery.Selection) {
		p := normalize.Clean(sel.Text())
		if len(p) < minParagraphChars {
			return
		}
		paragraphs = append(paragraphs, p)
		total += len(p)
	})
	if len(paragraphs) == 0 || total < minContentChars {
		return "", false
	}
	return strings.Join(paragraphs, "\n"), true
}
