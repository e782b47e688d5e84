package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chatHistoryLimit = 5

func newChatCmd(app *app) *cobra.Command {
	var id identity
	var flags turnFlags
	var reviewInline bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive support conversation",
		Long:  "chat reads queries from stdin until 'quit'. Type 'history' to list recent interactions or 'clear' to erase them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app, id, flags, reviewInline)
		},
	}

	id.bind(cmd)
	flags.bind(cmd)
	cmd.Flags().BoolVar(&reviewInline, "review-inline", false, "Approve or reject escalations from inside the chat")

	return cmd
}

func runChat(cmd *cobra.Command, app *app, id identity, flags turnFlags, reviewInline bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	info, err := app.service.StartSession(ctx, id.userID, id.threadID)
	if err != nil {
		return err
	}

	rendered, err := app.render.session(info)
	if err != nil {
		return fmt.Errorf("render session: %w", err)
	}
	fmt.Fprintln(out, rendered)

	if info.HistoryCount > 0 {
		fmt.Fprintf(out, "Welcome back! I've loaded %d previous interactions. How can I help you today?\n", info.HistoryCount)
	} else {
		fmt.Fprintln(out, "Hello! How can I help you today?")
	}
	fmt.Fprintln(out, "Type 'quit' to exit, 'history' to view past interactions, 'clear' to erase them.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "bye":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "history":
			if err := printHistory(cmd, app, id.userID, chatHistoryLimit); err != nil {
				return err
			}
			continue
		case "clear":
			if err := app.service.ClearHistory(ctx, id.userID); err != nil {
				return err
			}
			fmt.Fprintln(out, "History cleared.")
			continue
		}

		turn, err := app.service.ProcessTurn(ctx, application.ProcessTurnCommand{
			UserID:   id.userID,
			ThreadID: id.threadID,
			Query:    line,
		})
		if err := writeTurnOutput(out, app, turn, flags, err); err != nil {
			if turn.ResponseText == "" {
				return err
			}
			app.logger.Warn("turn failed", zap.String("user_id", id.userID), zap.Error(err))
			continue
		}

		if reviewInline && turn.EscalationID != "" {
			if err := reviewEscalation(cmd, app, scanner, out, turn); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	return nil
}

func reviewEscalation(cmd *cobra.Command, app *app, scanner *bufio.Scanner, out io.Writer, turn application.TurnResult) error {
	fmt.Fprint(out, "Approve escalation? [y/N]: ")
	if !scanner.Scan() {
		return scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	approved := answer == "y" || answer == "yes"

	fmt.Fprint(out, "Feedback (optional): ")
	if !scanner.Scan() {
		return scanner.Err()
	}
	feedback := strings.TrimSpace(scanner.Text())

	resolution, err := app.service.ResolveEscalationByID(cmd.Context(), application.ResolveEscalationByIDCommand{
		ID:       turn.EscalationID,
		Approved: approved,
		Feedback: feedback,
	})
	if err != nil {
		return err
	}

	return writeResolution(out, app, resolution)
}
