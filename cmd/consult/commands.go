package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/internal/relayclient"
	"github.com/diagnosis/consult-relay/internal/workflow"
	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/events"
)

type options struct {
	relayURL      string
	signupTimeout time.Duration
	natsURL       string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "consult",
		Short:        "Sign up and book a weekend consultation",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.relayURL, "relay-url", cfg.Client.RelayURL, "base URL of the mail relay")
	root.PersistentFlags().DurationVar(&opts.signupTimeout, "timeout", cfg.Client.SignupTimeout, "how long booking waits for signup to finish")

	root.AddCommand(
		newBookCmd(cfg, opts),
		newCheckDateCmd(),
		newEventsCmd(cfg, opts),
	)
	return root
}

func newBookCmd(cfg *config.Config, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "book",
		Short: "Sign up if needed, then submit a booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			relay := relayclient.New(opts.relayURL, 30*time.Second)

			var ctrl *workflow.Controller
			ctrl = workflow.NewController(relay, workflow.NewSession(),
				workflow.WithCodeTTL(cfg.Client.CodeTTL),
				workflow.WithSignupTimeout(opts.signupTimeout),
				workflow.WithHooks(workflow.Hooks{
					SignupRequired: func(ctx context.Context) error {
						p.say("You need to sign up before booking.")
						if err := runSignup(ctx, ctrl, p); err != nil {
							p.say("Signup aborted: %v", err)
							return err
						}
						return nil
					},
				}),
			)

			return runBooking(ctx, ctrl, p)
		},
	}
}

func newCheckDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-date DATE",
		Short: "Check that DATE (YYYY-MM-DD) is bookable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseMeetingDate(args[0])
			if err != nil {
				return err
			}
			if !domain.IsWeekend(d) {
				return fmt.Errorf("%s is a %s: %w", args[0], d.Weekday(), workflow.ErrWeekendOnly)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is a %s: available\n", args[0], d.Weekday())
			return nil
		},
	}
}

func newEventsCmd(cfg *config.Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print mail delivery events published by the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.natsURL == "" {
				return errors.New("no NATS URL configured (set NATS_URL or --nats-url)")
			}

			bus, err := events.NewNATSEventBus(opts.natsURL, "consult-cli")
			if err != nil {
				return err
			}
			defer bus.Close()

			out := cmd.OutOrStdout()
			err = bus.Subscribe(events.MailAll, func(msg *events.Message) {
				ev, err := msg.Decode()
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", msg.Subject, err)
					return
				}
				fmt.Fprintln(out, formatEvent(msg.Subject, ev))
			})
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(out, "Listening on %s (Ctrl+C to stop)\n", events.MailAll)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.natsURL, "nats-url", cfg.NATS.URL, "NATS server to subscribe to")
	return cmd
}

func formatEvent(subject string, ev events.MailEvent) string {
	line := fmt.Sprintf("%s %s to=%s", ev.OccurredAt.Format(time.RFC3339), subject, ev.Recipient)
	if ev.BookingID != "" {
		line += " booking=" + ev.BookingID
	}
	if ev.Error != "" {
		line += " error=" + ev.Error
	}
	return line
}
