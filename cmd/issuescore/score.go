package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/issuescore/internal/issuebody"
	"github.com/dshills/issuescore/internal/render"
	"github.com/dshills/issuescore/internal/score"
)

type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "json", "Output format: json or md")
	cmd.Flags().StringVar(&o.out, "out", "", "Output file path (default: stdout)")
}

func newScoreCmd(a *app) *cobra.Command {
	o := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "score <body-file|->",
		Short: "Parse an issue body and compute its priority score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, a, args[0], o)
		},
	}
	o.register(cmd)
	return cmd
}

func runScore(cmd *cobra.Command, a *app, path string, o *outputFlags) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	a.logger.Debug("loading body", zap.String("path", path))
	body, err := loadBody(cmd, path)
	if err != nil {
		return exitError(exitInput, "failed to load issue body: %v", err)
	}

	form, err := cfg.LoadForm()
	if err != nil {
		return exitError(exitInput, "failed to load form: %v", err)
	}
	a.logger.Debug("form loaded", zap.String("form", form.Name), zap.Int("fields", len(form.Fields)))

	answers, res, err := score.Body(body.Raw, form)
	if err != nil {
		return scoreError(err)
	}
	a.logger.Debug("scored",
		zap.Int("answers", answers.Len()),
		zap.Float64("score", res.Score),
		zap.Strings("unanswered", res.Unanswered),
	)

	rep := &render.Report{
		Tool:    "issuescore",
		Version: version,
		Input:   render.Input{Source: body.Source, Hash: body.Hash},
		Result:  res,
	}
	return a.writeReport(cmd, rep, o)
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <body-file|->",
		Short: "Print the question/answer pairs found in an issue body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			body, err := loadBody(cmd, args[0])
			if err != nil {
				return exitError(exitInput, "failed to load issue body: %v", err)
			}
			form, err := cfg.LoadForm()
			if err != nil {
				return exitError(exitInput, "failed to load form: %v", err)
			}

			answers := issuebody.Parse(body.Raw, form.Questions())
			data, err := json.MarshalIndent(answers, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal answers: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func loadBody(cmd *cobra.Command, path string) (*issuebody.Body, error) {
	if path == "-" {
		return issuebody.Read(cmd.InOrStdin(), "stdin")
	}
	return issuebody.Load(path)
}

// scoreError maps a scoring failure to an exit code.
func scoreError(err error) error {
	var fe *score.FieldError
	if errors.As(err, &fe) {
		return exitError(exitScore, "cannot score issue: %v", fe)
	}
	return fmt.Errorf("scoring failed: %w", err)
}

func (a *app) writeReport(cmd *cobra.Command, rep *render.Report, o *outputFlags) error {
	var output string
	switch o.format {
	case "json":
		s, err := render.JSON(rep)
		if err != nil {
			return err
		}
		output = s
	case "md":
		output = render.Markdown(rep)
	default:
		return exitError(exitInput, "unknown format: %s", o.format)
	}

	if o.out != "" {
		a.logger.Debug("writing output", zap.String("path", o.out))
		if err := os.WriteFile(o.out, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := io.WriteString(cmd.OutOrStdout(), output)
	return err
}
