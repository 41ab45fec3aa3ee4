package github

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/go-github/v56/github"
)

// EventPathEnv names the variable GitHub Actions sets to the webhook payload
// that triggered the workflow.
const EventPathEnv = "GITHUB_EVENT_PATH"

// LoadEvent reads an issues (or issue_comment) webhook payload and returns
// the issue it carries. The body is taken from the payload as delivered.
func LoadEvent(path string) (*Issue, IssueRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, IssueRef{}, fmt.Errorf("github.LoadEvent: %w", err)
	}

	var ev github.IssuesEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, IssueRef{}, fmt.Errorf("github.LoadEvent: parse %s: %w", path, err)
	}
	if ev.Issue == nil {
		return nil, IssueRef{}, fmt.Errorf("github.LoadEvent: %s: payload has no issue", path)
	}
	repo := ev.GetRepo()
	if repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, IssueRef{}, fmt.Errorf("github.LoadEvent: %s: payload has no repository", path)
	}

	ref := IssueRef{
		Owner:  repo.GetOwner().GetLogin(),
		Repo:   repo.GetName(),
		Number: ev.Issue.GetNumber(),
	}
	return &Issue{
		NodeID: ev.Issue.GetNodeID(),
		Number: ev.Issue.GetNumber(),
		Title:  ev.Issue.GetTitle(),
		Body:   ev.Issue.GetBody(),
		URL:    ev.Issue.GetHTMLURL(),
	}, ref, nil
}
