package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/bnema/groupchat-cli/internal/adapters/render/chat"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "gchat",
		Short:         "Group chat client (gchat): a terminal client for the group chat server",
		Long:          "gchat is a terminal client for the group chat server. Run it without arguments for the interactive chat UI, or use the subcommands for one-shot operations.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if verbose {
			app.logLevel.SetLevel(zapcore.DebugLevel)
		}
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Sync()
	}

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		app.session.Hydrate(cmd.Context())
		return chat.Run(cmd.Context(), chat.Deps{
			Session: app.session,
			Feed:    app.feed,
			Gateway: app.gateway,
			Store:   app.store,
			Logger:  app.logger,
		})
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newMessagesCmd(app),
		newSendCmd(app),
		newProfileCmd(app),
	)

	return rootCmd
}
