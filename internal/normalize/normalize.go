// Package normalize repairs text extracted from misencoded pages. News sites
// frequently serve UTF-8 bytes that were decoded once as Latin-1, turning
// punctuation into mojibake like "â€™". Clean rewrites those sequences back
// to their intended characters and collapses whitespace.
package normalize

import "strings"

// encodingFixes maps mis-decoded UTF-8 byte sequences to their intended
// characters. Order matters twice over: longer patterns come before their own
// substrings (e.g. "Â®" before "Â"), and sequences whose replacement appears
// inside another pattern ("â‚¬" yields "€", which occurs in every "â€¦"-style
// sequence) run first so doubly-corrupted text resolves in fewer passes.
var encodingFixes = []struct {
	bad  string
	good string
}{
	{"â‚¬", "€"},  // euro sign
	{"â„¢", "™"},  // trademark
	{"â€™", "'"},  // right single quotation mark
	{"â€˜", "'"},  // left single quotation mark
	{"â€œ", "\""}, // left double quotation mark
	{"â€", "\""}, // right double quotation mark
	{"â€”", "—"},  // em dash
	{"â€“", "–"},  // en dash
	{"â€¦", "..."}, // horizontal ellipsis
	{"â€š", ","},  // single low-9 quotation mark
	{"â€ž", "\""}, // double low-9 quotation mark
	{"â€¹", "<"},  // single left angle quotation mark
	{"â€º", ">"},  // single right angle quotation mark
	{"â€²", "'"},  // prime
	{"â€³", "\""}, // double prime
	{"Â®", "®"},   // registered trademark
	{"Â©", "©"},   // copyright
	{"Â£", "£"},   // pound sign
	{"Â ", " "}, // mis-decoded non-breaking space
	{"Â", ""},     // stray non-breaking-space artifact
}

// Clean repairs encoding artifacts in raw and collapses whitespace runs to
// single spaces, trimming the ends. It is deterministic, total, and
// idempotent: text with no artifacts passes through with only whitespace
// normalization, and cleaning already-clean text changes nothing.
func Clean(raw string) string {
	if raw == "" {
		return raw
	}
	// The table runs to a fixpoint: stripping a stray "Â" can splice a
	// mojibake sequence back together after the longer patterns have been
	// tried, so one pass is not enough. Every replacement shortens the
	// string, so the loop terminates.
	s := raw
	for {
		prev := s
		for _, fix := range encodingFixes {
			s = strings.ReplaceAll(s, fix.bad, fix.good)
		}
		if s == prev {
			break
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
