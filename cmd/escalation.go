package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newEscalationCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "escalation",
		Aliases: []string{"review"},
		Short:   "Review queries escalated for human approval",
	}

	cmd.AddCommand(
		newEscalationListCmd(app),
		newEscalationResolveCmd(app, true),
		newEscalationResolveCmd(app, false),
		newEscalationSweepCmd(app),
	)

	return cmd
}

func newEscalationListCmd(app *app) *cobra.Command {
	var status string
	var userID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List escalations, pending ones by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := escalationFilter(status, userID)
			if err != nil {
				return err
			}

			escalations, err := app.service.ListEscalations(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, escalations)
			}

			rendered, err := app.render.escalations(escalations, app.now())
			if err != nil {
				return fmt.Errorf("render escalations: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&status, "status", string(domain.EscalationPending), "Filter by status: pending, approved, rejected, expired or all")
	cmd.Flags().StringVar(&userID, "user", "", "Filter by customer user ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func escalationFilter(status, userID string) (application.EscalationFilter, error) {
	filter := application.EscalationFilter{UserID: strings.TrimSpace(userID)}

	switch s := domain.EscalationStatus(strings.ToLower(strings.TrimSpace(status))); s {
	case "all", "":
	case domain.EscalationPending, domain.EscalationApproved, domain.EscalationRejected, domain.EscalationExpired:
		filter.Status = s
	default:
		return application.EscalationFilter{}, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	return filter, nil
}

// newEscalationResolveCmd builds "approve" or "reject". The escalation is
// picked by ID, or as the newest pending one of --user/--thread.
func newEscalationResolveCmd(app *app, approved bool) *cobra.Command {
	var userID string
	var threadID string
	var feedback string

	use, short := "approve", "Approve an escalated response"
	if !approved {
		use, short = "reject", "Reject an escalated response"
	}

	cmd := &cobra.Command{
		Use:   use + " [escalation-id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resolution application.Resolution
			var err error

			switch {
			case len(args) == 1:
				resolution, err = app.service.ResolveEscalationByID(cmd.Context(), application.ResolveEscalationByIDCommand{
					ID:       domain.EscalationID(args[0]),
					Approved: approved,
					Feedback: feedback,
				})
			case userID != "":
				resolution, err = app.service.ResolveEscalation(cmd.Context(), application.ResolveEscalationCommand{
					UserID:   userID,
					ThreadID: threadID,
					Approved: approved,
					Feedback: feedback,
				})
			default:
				return fmt.Errorf("%s requires an escalation ID or --user", use)
			}
			if err != nil {
				return err
			}

			return writeResolution(cmd.OutOrStdout(), app, resolution)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Customer user ID")
	cmd.Flags().StringVar(&threadID, "thread", defaultThreadID, "Conversation thread ID")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Message passed to the customer")

	return cmd
}

func newEscalationSweepCmd(app *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire pending escalations older than escalations.ttl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !watch {
				expired, err := app.service.ExpireEscalations(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "expired %d escalation(s)\n", expired)
				return err
			}

			sweeper, err := application.NewExpirySweeper(app.escalations, app.cfg.Escalations.SweepSchedule, app.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := sweeper.Start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sweeping on %q, press Ctrl+C to stop\n", app.cfg.Escalations.SweepSchedule)

			sweeper.Sweep()
			<-ctx.Done()
			sweeper.Stop()

			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and sweep on escalations.sweep_schedule")

	return cmd
}

func writeResolution(out io.Writer, app *app, resolution application.Resolution) error {
	rendered, err := app.render.resolution(resolution)
	if err != nil {
		return fmt.Errorf("render resolution: %w", err)
	}

	_, err = fmt.Fprintln(out, rendered)
	return err
}
