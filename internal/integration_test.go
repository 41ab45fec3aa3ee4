package internal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dshills/issuescore/internal/board"
	"github.com/dshills/issuescore/internal/formspec"
	"github.com/dshills/issuescore/internal/github"
	"github.com/dshills/issuescore/internal/score"
)

// skipUnlessIntegration skips the test unless ISSUESCORE_INTEGRATION=1.
func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("ISSUESCORE_INTEGRATION") != "1" {
		t.Skip("skipping integration test (set ISSUESCORE_INTEGRATION=1 to run)")
	}
}

// requireEnv returns the named variable or skips the test.
func requireEnv(t *testing.T, name string) string {
	t.Helper()
	v := os.Getenv(name)
	if v == "" {
		t.Skipf("%s not set", name)
	}
	return v
}

func integrationClient(t *testing.T, projectID string) *github.Client {
	t.Helper()
	var opts []github.Option
	if base := os.Getenv("ISSUESCORE_GITHUB_BASE_URL"); base != "" {
		opts = append(opts, github.WithBaseURL(base))
	}
	c, err := github.NewClient(requireEnv(t, "GITHUB_TOKEN"), projectID, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// fetchAndScore loads ISSUESCORE_TEST_ISSUE and scores it with the default form.
func fetchAndScore(t *testing.T, ctx context.Context, c *github.Client) (*github.Issue, *score.Result) {
	t.Helper()
	ref, err := github.ParseIssueRef(requireEnv(t, "ISSUESCORE_TEST_ISSUE"))
	if err != nil {
		t.Fatalf("ParseIssueRef: %v", err)
	}
	iss, err := c.FetchIssue(ctx, ref)
	if err != nil {
		t.Fatalf("FetchIssue: %v", err)
	}
	if iss.NodeID == "" {
		t.Fatal("issue has no node id")
	}

	form, err := formspec.LoadBuiltin(formspec.DefaultForm)
	if err != nil {
		t.Fatal(err)
	}
	_, res, err := score.Body(iss.Body, form)
	if err != nil {
		t.Fatalf("score.Body: %v", err)
	}
	t.Logf("%s scored %.2f", ref, res.Score)
	return iss, res
}

func TestIntegrationFetchAndScore(t *testing.T) {
	skipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, res := fetchAndScore(t, ctx, integrationClient(t, ""))
	if res.Score <= 0 {
		t.Errorf("score = %.2f, want > 0", res.Score)
	}
}

func TestIntegrationListFields(t *testing.T) {
	skipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := integrationClient(t, requireEnv(t, "ISSUESCORE_GITHUB_PROJECT_ID"))
	title, fields, err := c.ListFields(ctx)
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(fields) == 0 {
		t.Errorf("project %q has no fields", title)
	}
}

func TestIntegrationSync(t *testing.T) {
	skipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c := integrationClient(t, requireEnv(t, "ISSUESCORE_GITHUB_PROJECT_ID"))
	fieldID := requireEnv(t, "ISSUESCORE_GITHUB_FIELD_ID")

	iss, res := fetchAndScore(t, ctx, c)
	out, err := board.Sync(ctx, c, iss.NodeID, fieldID, res.Score)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// A second sync must find the item the first one used.
	again, err := board.Sync(ctx, c, iss.NodeID, fieldID, res.Score)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if again.Created {
		t.Error("second sync created a new item")
	}
	if again.ItemID != out.ItemID {
		t.Errorf("item id changed: %s then %s", out.ItemID, again.ItemID)
	}
}
