package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/issuescore/internal/board"
	"github.com/dshills/issuescore/internal/config"
	"github.com/dshills/issuescore/internal/credential"
	"github.com/dshills/issuescore/internal/github"
)

type fakeClient struct {
	board.Mock
	issue    *github.Issue
	fetchErr error
	fetched  []string

	title     string
	fields    []github.Field
	fieldsErr error

	gotToken string
	gotCfg   *config.Config
}

func (f *fakeClient) FetchIssue(_ context.Context, ref github.IssueRef) (*github.Issue, error) {
	f.fetched = append(f.fetched, ref.String())
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.issue, nil
}

func (f *fakeClient) ListFields(context.Context) (string, []github.Field, error) {
	return f.title, f.fields, f.fieldsErr
}

func appWith(fc *fakeClient) *app {
	a := newApp()
	a.newClient = func(cfg *config.Config, token string) (issueBoard, error) {
		fc.gotCfg = cfg
		fc.gotToken = token
		return fc, nil
	}
	return a
}

func highIssue() *github.Issue {
	return &github.Issue{
		NodeID: "I_kwDO1",
		Number: 42,
		Title:  "Faster exports",
		Body:   priorityBody("High", "Major", "Immediate", "Solely dependent"),
	}
}

func syncEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ISSUESCORE_GITHUB_TOKEN", "ghp_test")
	t.Setenv("ISSUESCORE_GITHUB_PROJECT_ID", "PVT_1")
	t.Setenv("ISSUESCORE_GITHUB_FIELD_ID", "PVTF_score")
}

func TestSyncCommandCreatesItem(t *testing.T) {
	isolate(t)
	syncEnv(t)
	fc := &fakeClient{issue: highIssue()}

	out, err := execute(t, appWith(fc), "", "sync", "acme/widgets#42")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	want := []string{"resolve:I_kwDO1", "create:I_kwDO1", "write:item-1:PVTF_score:5.00"}
	if strings.Join(fc.Calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fc.Calls, want)
	}
	if fc.gotToken != "ghp_test" {
		t.Errorf("token = %q", fc.gotToken)
	}
	if len(fc.fetched) != 1 || fc.fetched[0] != "acme/widgets#42" {
		t.Errorf("fetched = %v", fc.fetched)
	}

	r := decodeReport(t, out)
	if r.Input.Title != "Faster exports" || r.Input.Source != "acme/widgets#42" {
		t.Errorf("input = %+v", r.Input)
	}
	if r.Sync == nil || r.Sync.ItemID != "item-1" || !r.Sync.Created || r.Sync.Score != 5 {
		t.Errorf("sync = %+v", r.Sync)
	}
}

func TestSyncCommandExistingItem(t *testing.T) {
	isolate(t)
	syncEnv(t)
	fc := &fakeClient{issue: highIssue()}
	fc.Items = map[string]string{"I_kwDO1": "PVTI_9"}

	_, err := execute(t, appWith(fc), "", "sync", "https://github.com/acme/widgets/issues/42")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fc.Scores["PVTI_9"] != 5 {
		t.Errorf("scores = %v", fc.Scores)
	}
	for _, c := range fc.Calls {
		if strings.HasPrefix(c, "create:") {
			t.Errorf("unexpected create call: %v", fc.Calls)
		}
	}
}

func TestSyncCommandFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	syncEnv(t)
	fc := &fakeClient{issue: highIssue()}
	fc.Items = map[string]string{"I_kwDO1": "PVTI_9"}

	_, err := execute(t, appWith(fc), "", "sync", "acme/widgets#42",
		"--project-id", "PVT_flag", "--field-id", "PVTF_flag", "--base-url", "https://ghe.example.com/api/v3/")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fc.gotCfg.GitHub.ProjectID != "PVT_flag" {
		t.Errorf("project id = %q, want PVT_flag", fc.gotCfg.GitHub.ProjectID)
	}
	if fc.gotCfg.GitHub.BaseURL != "https://ghe.example.com/api/v3/" {
		t.Errorf("base url = %q", fc.gotCfg.GitHub.BaseURL)
	}
	if got := fc.Calls[len(fc.Calls)-1]; got != "write:PVTI_9:PVTF_flag:5.00" {
		t.Errorf("last call = %q", got)
	}
}

func TestSyncCommandTokenFromKeyring(t *testing.T) {
	isolate(t)
	t.Setenv("ISSUESCORE_GITHUB_PROJECT_ID", "PVT_1")
	t.Setenv("ISSUESCORE_GITHUB_FIELD_ID", "PVTF_score")
	if err := credential.Set(credential.TokenKey, "ghp_keyring"); err != nil {
		t.Fatal(err)
	}
	fc := &fakeClient{issue: highIssue()}

	if _, err := execute(t, appWith(fc), "", "sync", "acme/widgets#42"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fc.gotToken != "ghp_keyring" {
		t.Errorf("token = %q, want ghp_keyring", fc.gotToken)
	}
}

func TestSyncCommandGitHubTokenFallback(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_TOKEN", "ghp_actions")
	t.Setenv("ISSUESCORE_GITHUB_PROJECT_ID", "PVT_1")
	t.Setenv("ISSUESCORE_GITHUB_FIELD_ID", "PVTF_score")
	fc := &fakeClient{issue: highIssue()}

	if _, err := execute(t, appWith(fc), "", "sync", "acme/widgets#42"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fc.gotToken != "ghp_actions" {
		t.Errorf("token = %q, want ghp_actions", fc.gotToken)
	}
}

func TestSyncCommandDryRun(t *testing.T) {
	isolate(t)
	fc := &fakeClient{issue: highIssue()}

	out, err := execute(t, appWith(fc), "", "sync", "acme/widgets#42", "--dry-run", "--format", "md")
	if err != nil {
		t.Fatalf("sync --dry-run: %v", err)
	}
	if len(fc.Calls) != 0 {
		t.Errorf("dry run touched the board: %v", fc.Calls)
	}
	if !strings.Contains(out, "**Score:** 5.00") || strings.Contains(out, "## Board") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSyncCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		env   bool
		args  []string
		setup func(*fakeClient)
		code  int
		calls int
	}{
		{
			name: "bad reference",
			env:  true,
			args: []string{"sync", "not-a-ref"},
			code: exitInput,
		},
		{
			name: "no project",
			args: []string{"sync", "acme/widgets#42"},
			code: exitInput,
		},
		{
			name: "fetch fails",
			env:  true,
			args: []string{"sync", "acme/widgets#42"},
			setup: func(fc *fakeClient) {
				fc.fetchErr = errors.New("404 Not Found")
			},
			code: exitBoard,
		},
		{
			name: "unscorable issue",
			env:  true,
			args: []string{"sync", "acme/widgets#42"},
			setup: func(fc *fakeClient) {
				fc.issue.Body = "### What is the risk of not doing this?\n\nHigh\n"
			},
			code: exitScore,
		},
		{
			name: "resolve fails",
			env:  true,
			args: []string{"sync", "acme/widgets#42"},
			setup: func(fc *fakeClient) {
				fc.ResolveErr = errors.New("rate limited")
			},
			code:  exitBoard,
			calls: 1,
		},
		{
			name: "create fails",
			env:  true,
			args: []string{"sync", "acme/widgets#42"},
			setup: func(fc *fakeClient) {
				fc.CreateErr = errors.New("forbidden")
			},
			code:  exitBoard,
			calls: 2,
		},
		{
			name: "write fails",
			env:  true,
			args: []string{"sync", "acme/widgets#42"},
			setup: func(fc *fakeClient) {
				fc.WriteErr = errors.New("field is not a number")
			},
			code:  exitBoard,
			calls: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if tt.env {
				syncEnv(t)
			}
			fc := &fakeClient{issue: highIssue()}
			if tt.setup != nil {
				tt.setup(fc)
			}
			_, err := execute(t, appWith(fc), "", tt.args...)
			wantExit(t, err, tt.code)
			if len(fc.Calls) != tt.calls {
				t.Errorf("board calls = %v, want %d", fc.Calls, tt.calls)
			}
		})
	}
}

func TestSyncCommandNoToken(t *testing.T) {
	isolate(t)
	t.Setenv("ISSUESCORE_GITHUB_PROJECT_ID", "PVT_1")
	t.Setenv("ISSUESCORE_GITHUB_FIELD_ID", "PVTF_score")
	fc := &fakeClient{issue: highIssue()}

	_, err := execute(t, appWith(fc), "", "sync", "acme/widgets#42")
	wantExit(t, err, exitInput)
	if len(fc.fetched) != 0 {
		t.Errorf("fetched without a token: %v", fc.fetched)
	}
}

func TestFieldsCommand(t *testing.T) {
	isolate(t)
	fc := &fakeClient{
		title: "Roadmap",
		fields: []github.Field{
			{ID: "PVTF_1", Name: "Title", DataType: "TITLE"},
			{ID: "PVTF_2", Name: "Priority Score", DataType: "NUMBER"},
		},
	}

	out, err := execute(t, appWith(fc), "", "fields", "--project-id", "PVT_1")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	for _, want := range []string{"Project: Roadmap", "PVTF_2", "Priority Score", "NUMBER"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	fc.fieldsErr = errors.New("boom")
	_, err = execute(t, appWith(fc), "", "fields", "--project-id", "PVT_1")
	wantExit(t, err, exitBoard)

	_, err = execute(t, appWith(fc), "", "fields")
	wantExit(t, err, exitInput)
}

var eventFixture = filepath.Join("..", "..", "testdata", "events", "issues-opened.json")

func TestSyncCommandEventFromEnv(t *testing.T) {
	isolate(t)
	syncEnv(t)
	t.Setenv("GITHUB_EVENT_PATH", eventFixture)
	fc := &fakeClient{}

	out, err := execute(t, appWith(fc), "", "sync", "--event")
	if err != nil {
		t.Fatalf("sync --event: %v", err)
	}
	if len(fc.fetched) != 0 {
		t.Errorf("payload body should be used without fetching, fetched %v", fc.fetched)
	}
	// medium 3*0.3 + major 5*0.3 + longer term 1*0.2 + solely dependent 5*0.2
	want := []string{"resolve:I_kwDOEvent42", "create:I_kwDOEvent42", "write:item-1:PVTF_score:3.60"}
	if strings.Join(fc.Calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fc.Calls, want)
	}
	r := decodeReport(t, out)
	if r.Input.Source != "acme/widgets#42" || r.Input.Title != "Bulk label edit" {
		t.Errorf("input = %+v", r.Input)
	}
}

func TestSyncCommandEventPath(t *testing.T) {
	isolate(t)
	fc := &fakeClient{}

	out, err := execute(t, appWith(fc), "", "sync", "--event="+eventFixture, "--dry-run")
	if err != nil {
		t.Fatalf("sync --event=path: %v", err)
	}
	if len(fc.Calls) != 0 || len(fc.fetched) != 0 {
		t.Errorf("dry run made calls: %v %v", fc.Calls, fc.fetched)
	}
	if r := decodeReport(t, out); r.Result.Score != 3.6 {
		t.Errorf("score = %v, want 3.6", r.Result.Score)
	}
}

func TestSyncCommandEventErrors(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
	}{
		{"env not set", "", []string{"sync", "--event"}},
		{"missing payload", "", []string{"sync", "--event=/nonexistent/event.json"}},
		{"event and reference", eventFixture, []string{"sync", "acme/widgets#42", "--event"}},
		{"no issue at all", "", []string{"sync"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			syncEnv(t)
			t.Setenv("GITHUB_EVENT_PATH", tt.env)
			fc := &fakeClient{}
			_, err := execute(t, appWith(fc), "", tt.args...)
			wantExit(t, err, exitInput)
			if len(fc.Calls) != 0 {
				t.Errorf("board touched: %v", fc.Calls)
			}
		})
	}
}
