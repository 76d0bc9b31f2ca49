package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/groupchat-cli/internal/domain"
)

func newSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>...",
		Short: "Send a chat message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(cmd, app)
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return domain.ErrEmptyMessage
			}

			if _, err := app.gateway.SendMessage(cmd.Context(), token, text); err != nil {
				return fmt.Errorf("send message: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Sent")
			return nil
		},
	}
}
