package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/issuescore/internal/formspec"
)

func newFormsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the built-in form tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := formspec.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [name]",
		Short: "Print a form's questions, answer weights and multipliers",
		Long: `Print a form table. With no name, prints the configured form
(--form, --form-file, or the config file).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				form *formspec.Form
				err  error
			)
			if len(args) == 1 {
				form, err = formspec.LoadBuiltin(args[0])
			} else {
				cfg, cerr := a.loadConfig(cmd)
				if cerr != nil {
					return cerr
				}
				form, err = cfg.LoadForm()
			}
			if err != nil {
				return exitError(exitInput, "failed to load form: %v", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formspec.Format(form))
			return err
		},
	})
	return cmd
}
