package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// knownSources maps domain fragments to display names for outlets whose
// brand casing is not derivable from the domain.
var knownSources = []struct {
	fragment string
	name     string
}{
	{"bbc", "BBC"},
	{"reuters", "Reuters"},
	{"guardian", "Guardian"},
	{"techcrunch", "TechCrunch"},
	{"cnn", "CNN"},
	{"npr", "NPR"},
}

var titleCaser = cases.Title(language.English)

// SourceName derives a display label for a site from its hostname. Unknown
// domains fall back to the Title-cased first label, e.g.
// "arstechnica.com" -> "Arstechnica".
func SourceName(host string) string {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, s := range knownSources {
		if strings.Contains(host, s.fragment) {
			return s.name
		}
	}
	label := host
	if i := strings.Index(host, "."); i > 0 {
		label = host[:i]
	}
	if label == "" {
		return ""
	}
	return titleCaser.String(label)
}
