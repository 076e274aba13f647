// Package quality assigns each article a 0-1 score from structural and
// lexical features. Scoring is pure and total: any well-formed article gets
// a defined score, including degenerate ones.
package quality

import (
	"strings"
	"unicode"

	"github.com/harvestlab/newsharvest/internal/article"
)

// Weights distributes the five sub-scores. Each sub-score is normalized to
// [0,1] before weighting.
type Weights struct {
	Title     float64
	Length    float64
	Structure float64
	Language  float64
	Metadata  float64
}

// DefaultWeights favors body length and title quality, the two strongest
// signals of a real article versus a teaser or index fragment.
var DefaultWeights = Weights{
	Title:     0.25,
	Length:    0.35,
	Structure: 0.20,
	Language:  0.10,
	Metadata:  0.10,
}

// substantialWords is the saturation point of the length curve; words beyond
// it add nothing.
const substantialWords = 500

// Scorer computes quality scores. The zero value uses DefaultWeights.
type Scorer struct {
	Weights Weights
}

func (s Scorer) weights() Weights {
	w := s.Weights
	if w.Title == 0 && w.Length == 0 && w.Structure == 0 && w.Language == 0 && w.Metadata == 0 {
		return DefaultWeights
	}
	return w
}

// Score returns the weighted quality score clamped to [0,1].
func (s Scorer) Score(a article.Article) float64 {
	w := s.weights()
	score := w.Title*titleScore(a.Title) +
		w.Length*lengthScore(a.WordCount) +
		w.Structure*structureScore(a.Content) +
		w.Language*languageScore(a.Content) +
		w.Metadata*metadataScore(a)
	return clamp01(score)
}

// titleScore rewards headlines in a plausible length range with normal
// capitalization. ALL-CAPS titles read as spam and floor the sub-score.
func titleScore(title string) float64 {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0
	}
	if isAllCaps(title) {
		return 0.1
	}
	var score float64
	switch n := len(title); {
	case n >= 20 && n <= 120:
		score = 1.0
	case n >= 10:
		score = 0.6
	default:
		score = 0.3
	}
	if first := []rune(title)[0]; unicode.IsLetter(first) && !unicode.IsUpper(first) {
		score *= 0.8
	}
	return score
}

// lengthScore maps word count through a saturating curve: linear up to
// substantialWords, flat beyond it.
func lengthScore(wordCount int) float64 {
	if wordCount <= 0 {
		return 0
	}
	r := float64(wordCount) / substantialWords
	if r > 1 {
		r = 1
	}
	return r
}

// structureScore blends sentence count, paragraph count, and punctuation
// variety.
func structureScore(content string) float64 {
	if content == "" {
		return 0
	}
	sentences := strings.Count(content, ".") + strings.Count(content, "!") + strings.Count(content, "?")
	sentencePart := float64(sentences) / 10
	if sentencePart > 1 {
		sentencePart = 1
	}
	paragraphs := strings.Count(content, "\n") + 1
	paragraphPart := float64(paragraphs) / 3
	if paragraphPart > 1 {
		paragraphPart = 1
	}
	variety := 0
	for _, p := range []string{",", ";", ":", "?", "!"} {
		if strings.Contains(content, p) {
			variety++
		}
	}
	varietyPart := float64(variety) / 2
	if varietyPart > 1 {
		varietyPart = 1
	}
	return (sentencePart + paragraphPart + varietyPart) / 3
}

// languageScore penalizes shouty text and rewards sentence-terminated prose.
func languageScore(content string) float64 {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0
	}
	letters, uppers := 0, 0
	for _, r := range content {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	capsRatio := float64(uppers) / float64(letters)
	var capsPart float64
	switch {
	case capsRatio <= 0.05:
		capsPart = 1.0
	case capsRatio <= 0.10:
		capsPart = 0.5
	}
	terminalPart := 0.0
	if strings.ContainsRune(".!?\"", rune(content[len(content)-1])) {
		terminalPart = 1.0
	}
	return 0.7*capsPart + 0.3*terminalPart
}

// metadataScore splits its weight evenly between author and publish date
// presence.
func metadataScore(a article.Article) float64 {
	score := 0.0
	if strings.TrimSpace(a.Author) != "" {
		score += 0.5
	}
	if a.PublishDate != nil {
		score += 0.5
	}
	return score
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
