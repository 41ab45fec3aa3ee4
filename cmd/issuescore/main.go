package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/issuescore/internal/config"
)

var version = "0.1.0"

// app carries state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configPath string
	verbose    bool
	logger     *zap.Logger

	// newClient builds the GitHub client; tests replace it.
	newClient func(cfg *config.Config, token string) (issueBoard, error)
}

func newApp() *app {
	return &app{
		v:         config.New(),
		logger:    zap.NewNop(),
		newClient: newGitHubClient,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "issuescore",
		Short:         "Score GitHub issue forms and write the priority to a project board",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if a.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: ~/.config/issuescore/config.yaml)")
	pf.BoolVar(&a.verbose, "verbose", false, "Log processing steps to stderr")
	pf.String("form", "", "Built-in form name")
	pf.String("form-file", "", "Custom form table (YAML)")

	root.AddCommand(
		newScoreCmd(a),
		newParseCmd(a),
		newSyncCmd(a),
		newFieldsCmd(a),
		newFormsCmd(a),
		newTokenCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()

	if err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Exit codes.
const (
	exitInput = 3
	exitBoard = 4
	exitScore = 5
)

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"form":       "form",
	"form-file":  "form_file",
	"project-id": "github.project_id",
	"field-id":   "github.field_id",
	"base-url":   "github.base_url",
}

// loadConfig binds the running command's flags and reads the config file and
// environment into a Config. Flags win over environment, which wins over the
// file.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return nil, exitError(exitInput, "failed to load config: %v", err)
	}
	return cfg, nil
}
