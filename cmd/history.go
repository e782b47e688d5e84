package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, search or clear a user's interaction history",
	}

	cmd.AddCommand(
		newHistoryListCmd(app),
		newHistorySearchCmd(app),
		newHistoryClearCmd(app),
	)

	return cmd
}

func newHistoryListCmd(app *app) *cobra.Command {
	var userID string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				entries, err := app.service.GetHistory(cmd.Context(), userID, limit)
				if err != nil {
					return err
				}
				return writeJSON(cmd, entries)
			}
			return printHistory(cmd, app, userID, limit)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Customer user ID")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of entries (0 lists everything)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newHistorySearchCmd(app *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find interactions whose query or resolution mentions a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.service.SearchHistory(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}
			return writeHistory(cmd, app, userID, entries)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Customer user ID")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newHistoryClearCmd(app *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete a user's history and carried transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.service.ClearHistory(cmd.Context(), userID); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared history for %s\n", userID)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Customer user ID")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printHistory(cmd *cobra.Command, app *app, userID string, limit int) error {
	entries, err := app.service.GetHistory(cmd.Context(), userID, limit)
	if err != nil {
		return err
	}

	return writeHistory(cmd, app, userID, entries)
}

func writeHistory(cmd *cobra.Command, app *app, userID string, entries []domain.HistoryEntry) error {
	rendered, err := app.render.history(userID, entries)
	if err != nil {
		return fmt.Errorf("render history: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
