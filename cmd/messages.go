package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/groupchat-cli/internal/domain"
)

var errNotLoggedIn = errors.New("not logged in: run 'gchat login' first")

func newMessagesCmd(app *app) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List chat messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := requireToken(cmd, app)
			if err != nil {
				return err
			}

			messages, err := app.gateway.ListMessages(cmd.Context(), token, domain.MessageQuery{
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return fmt.Errorf("list messages: %w", err)
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(messages)
			}

			for _, message := range messages {
				author := "unknown"
				if message.Author != nil {
					author = message.Author.Username
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %s\n",
					message.CreatedAt.Format("2006-01-02 15:04"), author, message.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of messages to return (0 uses the server default)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of messages to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print messages as JSON")

	return cmd
}

func requireToken(cmd *cobra.Command, app *app) (string, error) {
	session := app.session.Hydrate(cmd.Context())
	if !session.IsAuthenticated() {
		return "", errNotLoggedIn
	}
	return session.Token, nil
}
