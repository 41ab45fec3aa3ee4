package github

import (
	"fmt"
	"regexp"
	"strconv"
)

// IssueRef identifies an issue by repository and number.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var (
	// owner/repo#123
	shortRefPattern = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
	// https://github.com/owner/repo/issues/123 or .../pull/123
	urlRefPattern = regexp.MustCompile(`^https?://[^/]+/([\w.-]+)/([\w.-]+)/(?:issues|pull)/(\d+)(?:[/?#].*)?$`)
)

// ParseIssueRef accepts "owner/repo#N" or an issue or pull request URL.
func ParseIssueRef(s string) (IssueRef, error) {
	m := shortRefPattern.FindStringSubmatch(s)
	if m == nil {
		m = urlRefPattern.FindStringSubmatch(s)
	}
	if m == nil {
		return IssueRef{}, fmt.Errorf("invalid issue reference %q: want owner/repo#N or an issue URL", s)
	}
	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return IssueRef{}, fmt.Errorf("invalid issue number in %q", s)
	}
	return IssueRef{Owner: m[1], Repo: m[2], Number: n}, nil
}
