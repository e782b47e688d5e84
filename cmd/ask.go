package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/support-agent-cli/internal/adapters/render/transcript"
	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/spf13/cobra"
)

// turnFlags controls how a reply is printed.
type turnFlags struct {
	maxChars int
	meta     bool
	asJSON   bool
	quiet    bool
}

func (f *turnFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxChars, "max-chars", 0, "Truncate replies longer than this many characters (0 keeps them whole)")
	cmd.Flags().BoolVar(&f.meta, "meta", false, "Show category and confidence under each reply")
}

func newAskCmd(app *app) *cobra.Command {
	var id identity
	var flags turnFlags

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Send one query through the support pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			process := func(ctx context.Context) (application.TurnResult, error) {
				return app.service.ProcessTurn(ctx, application.ProcessTurnCommand{
					UserID:   id.userID,
					ThreadID: id.threadID,
					Query:    query,
				})
			}

			var turn application.TurnResult
			var err error
			if flags.asJSON || flags.quiet {
				turn, err = process(cmd.Context())
			} else {
				turn, err = runTurnSpinner(cmd.Context(), cmd.ErrOrStderr(), process)
			}

			return writeTurnOutput(cmd.OutOrStdout(), app, turn, flags, err)
		},
	}

	id.bind(cmd)
	flags.bind(cmd)
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Do not show a spinner while the turn runs")

	return cmd
}

// writeTurnOutput prints whatever reply the turn produced, the apology
// included, and passes turnErr through. A turn rejected before it ran has no
// reply and only turnErr is returned.
func writeTurnOutput(out io.Writer, app *app, turn application.TurnResult, flags turnFlags, turnErr error) error {
	if turn.ResponseText == "" {
		return turnErr
	}

	if flags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Join(turnErr, enc.Encode(turn))
	}

	rendered, err := app.render.turn(turn, transcript.TurnOptions{MaxChars: flags.maxChars, ShowMeta: flags.meta})
	if err != nil {
		return errors.Join(turnErr, fmt.Errorf("render turn: %w", err))
	}

	_, err = fmt.Fprintln(out, rendered)
	return errors.Join(turnErr, err)
}
