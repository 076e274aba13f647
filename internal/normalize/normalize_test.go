package normalize

import "testing"

func TestClean_RepairsCommonMojibake(t *testing.T) {
	in := "Donâ€™t stop now â€” the market wonâ€™t wait"
	want := "Don't stop now — the market won't wait"
	if got := Clean(in); got != want {
		t.Fatalf("Clean(%q) = %q, want %q", in, got, want)
	}
}

func TestClean_Table(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"smart quotes", "â€œquotedâ€ text", `"quoted" text`},
		{"en dash", "pages 3â€“9", "pages 3–9"},
		{"ellipsis", "to be continuedâ€¦", "to be continued..."},
		{"trademark", "WidgetCoâ„¢ announced", "WidgetCo™ announced"},
		{"currency", "â‚¬50 or Â£40", "€50 or £40"},
		{"copyright", "Â© 2024 WidgetCo", "© 2024 WidgetCo"},
		{"nbsp artifact", "oddÂ spacing", "odd spacing"},
		{"double mojibake euro then quote", "donââ‚¬â„¢t", "don't"},
		{"artifact splices quote back together", "donâÂ€™t", "don't"},
		{"clean text untouched", "already fine", "already fine"},
		{"whitespace collapse", "  too \t many\n\nspaces  ", "too many spaces"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Donâ€™t stop â€” itâ€™s â€œfineâ€",
		"plain ascii text.",
		"â‚¬100 Â£50 Â©â„¢",
		"  whitespace\t\tonly   ",
		"mixed Â artifacts â€¦ and â€“ dashes",
		// Stripping the stray artifact reassembles a quote sequence that
		// the longer patterns already passed over.
		"donâÂ€™t",
		"âÂ€œquotedâÂ€ text",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
