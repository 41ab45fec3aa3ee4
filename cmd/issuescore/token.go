package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/issuescore/internal/credential"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the GitHub token stored in the system keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Read a token from stdin and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := bufio.NewScanner(cmd.InOrStdin())
			var tok string
			if sc.Scan() {
				tok = strings.TrimSpace(sc.Text())
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
			if tok == "" {
				return exitError(exitInput, "no token on stdin")
			}
			if err := credential.Set(credential.TokenKey, tok); err != nil {
				return err
			}
			a.logger.Debug("token stored")
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := credential.Delete(credential.TokenKey)
			if err != nil && !errors.Is(err, credential.ErrNotFound) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token deleted.")
			return nil
		},
	})
	return cmd
}
