package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/issuescore/internal/board"
	"github.com/dshills/issuescore/internal/config"
	"github.com/dshills/issuescore/internal/credential"
	"github.com/dshills/issuescore/internal/github"
	"github.com/dshills/issuescore/internal/issuebody"
	"github.com/dshills/issuescore/internal/render"
	"github.com/dshills/issuescore/internal/score"
)

// issueBoard is the GitHub surface the sync and fields commands use.
type issueBoard interface {
	board.Board
	FetchIssue(ctx context.Context, ref github.IssueRef) (*github.Issue, error)
	ListFields(ctx context.Context) (string, []github.Field, error)
}

func newGitHubClient(cfg *config.Config, token string) (issueBoard, error) {
	var opts []github.Option
	if cfg.GitHub.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHub.BaseURL))
	}
	return github.NewClient(token, cfg.GitHub.ProjectID, opts...)
}

func addBoardFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("project-id", "", "Projects v2 board node ID (PVT_...)")
	f.String("base-url", "", "GitHub Enterprise REST root, e.g. https://ghe.example.com/api/v3/")
}

type syncFlags struct {
	outputFlags
	dryRun bool
	event  string
}

// eventFromEnv is the --event value used when the flag is given without a
// path.
const eventFromEnv = "$" + github.EventPathEnv

func newSyncCmd(a *app) *cobra.Command {
	f := &syncFlags{}
	cmd := &cobra.Command{
		Use:   "sync [owner/repo#N|issue-url]",
		Short: "Score a GitHub issue and write the score to its project board item",
		Long: `Score a GitHub issue and write the score to its project board item.

The issue is named by argument, or read from a webhook payload with --event.
Inside a GitHub Actions step, --event alone reads $GITHUB_EVENT_PATH; pass
--event=path to read another file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			return runSync(cmd, a, arg, f)
		},
	}
	f.register(cmd)
	addBoardFlags(cmd)
	cmd.Flags().String("field-id", "", "Number field node ID that holds the score")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Fetch and score but do not touch the board")
	cmd.Flags().StringVar(&f.event, "event", "", "Read the issue from a webhook payload (default $GITHUB_EVENT_PATH)")
	cmd.Flags().Lookup("event").NoOptDefVal = eventFromEnv
	return cmd
}

func runSync(cmd *cobra.Command, a *app, arg string, f *syncFlags) error {
	ctx := cmd.Context()

	var (
		ref github.IssueRef
		iss *github.Issue
		err error
	)
	switch {
	case f.event != "" && arg != "":
		return exitError(exitInput, "give either an issue reference or --event, not both")
	case f.event != "":
		path := f.event
		if path == eventFromEnv {
			path = os.Getenv(github.EventPathEnv)
			if path == "" {
				return exitError(exitInput, "--event: %s is not set", github.EventPathEnv)
			}
		}
		a.logger.Debug("reading event payload", zap.String("path", path))
		iss, ref, err = github.LoadEvent(path)
		if err != nil {
			return exitError(exitInput, "%v", err)
		}
	case arg != "":
		ref, err = github.ParseIssueRef(arg)
		if err != nil {
			return exitError(exitInput, "%v", err)
		}
	default:
		return exitError(exitInput, "no issue given: pass owner/repo#N, an issue URL, or --event")
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if !f.dryRun {
		if cfg.GitHub.ProjectID == "" {
			return exitError(exitInput, "no project configured: set --project-id or github.project_id")
		}
		if cfg.GitHub.FieldID == "" {
			return exitError(exitInput, "no score field configured: set --field-id or github.field_id")
		}
	}

	form, err := cfg.LoadForm()
	if err != nil {
		return exitError(exitInput, "failed to load form: %v", err)
	}

	token := a.resolveToken(cfg)
	if token == "" && !f.dryRun {
		return exitError(exitInput, "no GitHub token: set GITHUB_TOKEN or run 'issuescore token set'")
	}

	client, err := a.newClient(cfg, token)
	if err != nil {
		return exitError(exitInput, "failed to create GitHub client: %v", err)
	}

	if iss == nil {
		a.logger.Debug("fetching issue", zap.String("issue", ref.String()))
		iss, err = client.FetchIssue(ctx, ref)
		if err != nil {
			return exitError(exitBoard, "%v", err)
		}
	}

	body := issuebody.FromString(ref.String(), iss.Body)
	_, res, err := score.Body(body.Raw, form)
	if err != nil {
		return scoreError(err)
	}
	a.logger.Debug("scored", zap.String("issue", ref.String()), zap.Float64("score", res.Score))

	rep := &render.Report{
		Tool:    "issuescore",
		Version: version,
		Input:   render.Input{Source: body.Source, Hash: body.Hash, Title: iss.Title},
		Result:  res,
	}

	if f.dryRun {
		a.logger.Debug("dry run, board untouched")
		return a.writeReport(cmd, rep, &f.outputFlags)
	}

	out, err := board.Sync(ctx, client, iss.NodeID, cfg.GitHub.FieldID, res.Score)
	if err != nil {
		var be *board.BoundaryError
		if errors.As(err, &be) {
			a.logger.Debug("board sync failed", zap.String("op", be.Op), zap.Error(be.Err))
			return exitError(exitBoard, "%v", be)
		}
		return exitError(exitInput, "%v", err)
	}
	a.logger.Info("score written",
		zap.String("issue", ref.String()),
		zap.String("item", out.ItemID),
		zap.Bool("created", out.Created),
		zap.Float64("score", out.Score),
	)
	rep.Sync = out
	return a.writeReport(cmd, rep, &f.outputFlags)
}

// resolveToken prefers the configured token (file, environment or
// GITHUB_TOKEN) and falls back to the keyring.
func (a *app) resolveToken(cfg *config.Config) string {
	if cfg.GitHub.Token != "" {
		return cfg.GitHub.Token
	}
	tok, err := credential.Get(credential.TokenKey)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			a.logger.Debug("keyring unavailable", zap.Error(err))
		}
		return ""
	}
	return tok
}

func newFieldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields of the configured project board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.GitHub.ProjectID == "" {
				return exitError(exitInput, "no project configured: set --project-id or github.project_id")
			}
			client, err := a.newClient(cfg, a.resolveToken(cfg))
			if err != nil {
				return exitError(exitInput, "failed to create GitHub client: %v", err)
			}

			title, fields, err := client.ListFields(cmd.Context())
			if err != nil {
				return exitError(exitBoard, "%v", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Project: %s\n\n", title)
			fmt.Fprintln(w, "ID\tNAME\tTYPE")
			for _, fld := range fields {
				fmt.Fprintf(w, "%s\t%s\t%s\n", fld.ID, fld.Name, fld.DataType)
			}
			return w.Flush()
		},
	}
	addBoardFlags(cmd)
	return cmd
}
