package issuebody

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// noResponse is what GitHub issue forms render for an optional field left blank.
const noResponse = "_no response_"

// NormalizeQuestion returns the key form of a question line: leading '#'
// markers stripped, NFKC-normalized, lowercased, inner whitespace collapsed.
func NormalizeQuestion(line string) string {
	s := strings.TrimLeft(strings.TrimFunc(line, isSpace), "#")
	s = cases.Lower(language.Und).String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAnswer trims and lowercases an answer line. The issue form
// placeholder for a skipped field normalizes to "".
func NormalizeAnswer(line string) string {
	s := cases.Lower(language.Und).String(norm.NFKC.String(line))
	s = strings.TrimFunc(s, isSpace)
	if s == noResponse {
		return ""
	}
	return s
}

// MatchQuestion reports whether question occurs inside key once both are
// reduced to matching form (case-folded, punctuation and symbols dropped,
// whitespace collapsed). A question that is a prefix of key matches too.
//
// A single-word question such as "Risk" is a bare label and only matches a
// key that is exactly that word, so prose like "low risk" is not a question.
func MatchQuestion(key, question string) bool {
	q := matchForm(question)
	if q == "" {
		return false
	}
	k := matchForm(key)
	if !strings.Contains(q, " ") {
		return k == q
	}
	return strings.Contains(k, q)
}

// MatchAny reports whether key matches any of the questions.
func MatchAny(key string, questions []string) bool {
	for _, q := range questions {
		if MatchQuestion(key, q) {
			return true
		}
	}
	return false
}

func matchForm(s string) string {
	s = cases.Fold().String(norm.NFKC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
