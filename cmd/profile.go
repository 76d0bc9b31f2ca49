package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/groupchat-cli/internal/application"
	"github.com/bnema/groupchat-cli/internal/domain"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the logged-in member profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := requireToken(cmd, app)
			if err != nil {
				return err
			}

			member, err := app.gateway.Profile(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("fetch profile: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Username: %s\n", member.Username)
			if !member.CreatedAt.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Member since: %s\n", member.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.AddCommand(newProfileSetCmd(app))

	return cmd
}

func newProfileSetCmd(app *app) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update username or password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := requireToken(cmd, app)
			if err != nil {
				return err
			}

			update := domain.ProfileUpdate{Username: username, Password: password}
			member, err := app.gateway.UpdateProfile(cmd.Context(), token, update)
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}

			if err := application.PersistMember(cmd.Context(), app.store, member); err != nil {
				return fmt.Errorf("save member: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s\n", member.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&password, "password", "", "New password")

	return cmd
}
