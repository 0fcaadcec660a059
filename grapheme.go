package dawg

import (
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// graphemes splits s into extended grapheme clusters (UAX-29). A
// combining mark stays attached to its base character, so "AYÒ" and
// "AYÓ" segment into different sequences even though they share the
// letters A, Y and O.
func graphemes(s string) []string {
	if s == "" {
		return nil
	}

	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

// commonPrefixLen returns the number of leading graphemes a and b
// share.
func commonPrefixLen(a, b []string) int {
	n := min(len(a), len(b))
	common := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			break
		}
		common++
	}
	return common
}

// upperCaser returns a caser for case-insensitive edge matching. A
// cases.Caser carries internal state, so each traversal takes its own.
func upperCaser() cases.Caser {
	return cases.Upper(language.Und)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
