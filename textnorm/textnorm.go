package textnorm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// bracketed matches the shortest square-bracket span, e.g. "[1]" or "[editar]".
var bracketed = regexp.MustCompile(`\[[^\]]*\]`)

// nonBreaking lists the no-break space variants emitted by MediaWiki.
var nonBreaking = strings.NewReplacer(
	"\u00a0", " ",
	"\u202f", " ",
	"\u2007", " ",
)

// stripMarks decomposes with compatibility mappings, drops combining marks
// and recomposes whatever is left. Chained transformers carry buffers, so a
// new one is built per call.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Coerce returns the textual form of v. Strings are returned unchanged, nil
// becomes "" and everything else goes through fmt.Sprint.
func Coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// Clean returns the display form of v.
func Clean(v any) (out string) {
	s := Coerce(v)
	defer func() {
		if recover() != nil {
			out = s
		}
	}()
	return clean(s)
}

func clean(s string) string {
	if s == "" {
		return ""
	}
	s = bracketed.ReplaceAllString(s, "")
	s = nonBreaking.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the search form of v. Fold is idempotent.
func Fold(v any) (out string) {
	s := Clean(v)
	defer func() {
		if recover() != nil {
			out = strings.ToLower(s)
		}
	}()

	stripped, _, err := transform.String(stripMarks(), s)
	if err != nil {
		stripped = s
	}
	return clean(strings.ToLower(stripped))
}

// Equal reports whether a and b have the same search form.
func Equal(a, b any) bool {
	return Fold(a) == Fold(b)
}
