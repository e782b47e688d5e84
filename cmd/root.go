package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sa",
		Short:         "Support Agent CLI (sa): answer customer queries with human review",
		Long:          "sa (Support Agent CLI) classifies customer queries, answers them from scripted and knowledge-base responses, escalates sensitive ones for human review and keeps a per-user interaction history.",
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

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSessionCmd(app),
		newAskCmd(app),
		newChatCmd(app),
		newHistoryCmd(app),
		newEscalationCmd(app),
	)

	return rootCmd
}

// identity holds the --user/--thread pair shared by the conversation commands.
type identity struct {
	userID   string
	threadID string
}

const defaultThreadID = "default"

func (id *identity) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&id.userID, "user", "", "Customer user ID")
	cmd.Flags().StringVar(&id.threadID, "thread", defaultThreadID, "Conversation thread ID")
	_ = cmd.MarkFlagRequired("user")
}
