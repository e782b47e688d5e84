package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect conversation sessions",
	}

	cmd.AddCommand(newSessionStartCmd(app))
	return cmd
}

func newSessionStartCmd(app *app) *cobra.Command {
	var id identity

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start or resume a session and report its history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := app.service.StartSession(cmd.Context(), id.userID, id.threadID)
			if err != nil {
				return err
			}

			rendered, err := app.render.session(info)
			if err != nil {
				return fmt.Errorf("render session: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	id.bind(cmd)
	return cmd
}
