package issuebody

// Extract returns the answer recorded for the first question, in document
// order, that matches any of the given question variants. ok is false when no
// question matches; a matching question with a blank answer returns ("", true).
func Extract(a *Answers, questions ...string) (answer string, ok bool) {
	if a == nil {
		return "", false
	}
	for _, k := range a.keys {
		if MatchAny(k, questions) {
			return a.values[k], true
		}
	}
	return "", false
}
