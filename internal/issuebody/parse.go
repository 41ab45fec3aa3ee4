package issuebody

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

// Markdown heading with text: ### What is the risk?
var headerPattern = regexp.MustCompile(`^#{1,6}\s+\S`)

// Answers is an ordered question -> answer mapping parsed from an issue body.
// Keys are normalized with NormalizeQuestion, values with NormalizeAnswer.
type Answers struct {
	keys       []string
	values     map[string]string
	unanswered []string
}

func newAnswers() *Answers {
	return &Answers{values: make(map[string]string)}
}

// add records a pair. The first occurrence of a question wins.
func (a *Answers) add(question, answer string) {
	if _, ok := a.values[question]; ok {
		return
	}
	a.keys = append(a.keys, question)
	a.values[question] = answer
}

// Get looks up the answer for an exact question. The question is normalized
// before lookup.
func (a *Answers) Get(question string) (string, bool) {
	v, ok := a.values[NormalizeQuestion(question)]
	return v, ok
}

// Keys returns the questions in document order.
func (a *Answers) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of recorded questions.
func (a *Answers) Len() int { return len(a.keys) }

// Map returns a copy of the pairs without ordering.
func (a *Answers) Map() map[string]string {
	out := make(map[string]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Unanswered lists questions that had no answer line before the next
// question or the end of the body.
func (a *Answers) Unanswered() []string {
	out := make([]string, len(a.unanswered))
	copy(out, a.unanswered)
	return out
}

// MarshalJSON encodes the pairs as a JSON object in document order.
func (a *Answers) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Parse scans raw line by line for question lines and takes the next
// non-blank line after each as its answer.
//
// A question line is a markdown heading, or any line whose text contains one
// of the known questions (see MatchQuestion). If the next non-blank line is a
// heading, or the body ends first, the question is recorded with an empty
// answer. Any other line is taken as the answer, even one that mentions a
// known question.
func Parse(raw string, known []string) *Answers {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	a := newAnswers()

	for i := 0; i < len(lines); {
		if !isQuestionLine(lines[i], known) {
			i++
			continue
		}
		q := NormalizeQuestion(lines[i])

		j := i + 1
		for j < len(lines) && isBlank(lines[j]) {
			j++
		}

		switch {
		case j >= len(lines), isHeaderLine(lines[j]):
			a.add(q, "")
			a.unanswered = append(a.unanswered, q)
			i = j
		default:
			a.add(q, NormalizeAnswer(lines[j]))
			i = j + 1
		}
	}
	return a
}

func isQuestionLine(line string, known []string) bool {
	trimmed := strings.TrimFunc(line, isSpace)
	text := strings.TrimFunc(strings.TrimLeft(trimmed, "#"), isSpace)
	if text == "" {
		return false
	}
	if headerPattern.MatchString(trimmed) {
		return true
	}
	return MatchAny(text, known)
}

func isHeaderLine(line string) bool {
	return headerPattern.MatchString(strings.TrimFunc(line, isSpace))
}

func isBlank(line string) bool {
	return strings.TrimFunc(line, isSpace) == ""
}

// isSpace extends unicode.IsSpace with the zero-width characters that web
// forms leave behind.
func isSpace(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}
