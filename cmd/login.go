package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/groupchat-cli/internal/application"
	"github.com/bnema/groupchat-cli/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and store the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, app, args[0], args[1], app.gateway.Login, "Logged in as")
		},
	}
}

func newRegisterCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create an account and store the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, app, args[0], args[1], app.gateway.Register, "Registered as")
		},
	}
}

type authFlow func(ctx context.Context, username, password string) (domain.AuthGrant, error)

func runAuth(cmd *cobra.Command, app *app, username, password string, flow authFlow, verb string) error {
	grant, err := flow(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	if err := application.PersistGrant(cmd.Context(), app.store, grant); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, grant.Member.Username)
	return nil
}
