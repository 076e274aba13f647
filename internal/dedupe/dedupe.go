// Package dedupe collapses exact content duplicates in a harvested
// collection. Identity is a digest over normalized content only — title and
// URL are deliberately excluded so the same story republished under a
// different URL or headline still collapses to one entry.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/harvestlab/newsharvest/internal/article"
)

// Fingerprint returns a SHA-256 hex digest over the article's content,
// lower-cased with whitespace runs collapsed so the digest survives
// cosmetic formatting differences between mirrors.
func Fingerprint(a article.Article) string {
	canonical := strings.ToLower(strings.Join(strings.Fields(a.Content), " "))
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Dedupe filters the collection, keeping the first-encountered article for
// each fingerprint and preserving input order. First-seen wins
// unconditionally; quality scores play no part in the tie-break.
func Dedupe(in []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(in))
	out := make([]article.Article, 0, len(in))
	for _, a := range in {
		key := a.ContentHash
		if key == "" {
			key = Fingerprint(a)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
