package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func newReminderCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Manage daily and predicted-period reminders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "time [HH:MM]",
		Short: "Show or set the reminder time of day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				if len(args) == 0 {
					reminderTime, err := a.reminders.ReminderTime(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), reminderTime)
					return nil
				}

				reminderTime, err := models.ParseReminderTime(args[0])
				if err != nil {
					return err
				}
				if err := a.reminders.SetReminderTime(ctx, reminderTime); err != nil {
					return err
				}
				// The predicted reminder fires at the same time of day.
				if err := a.records.ResyncPredictedPeriod(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reminder time set to %s\n", reminderTime)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "daily on|off",
		Short:     "Turn the daily check-in reminder on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				if args[0] == "off" {
					if err := a.reminders.CancelDaily(ctx); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "daily reminder off")
					return nil
				}

				reminderTime, err := a.reminders.ReminderTime(ctx)
				if err != nil {
					return err
				}
				if _, err := a.reminders.ScheduleDaily(ctx, reminderTime, a.now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "daily reminder on at %s\n", reminderTime)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "predicted on|off",
		Short:     "Turn the predicted-period reminder on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled := args[0] == "on"
			return env.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.reminders.SetPredictedEnabled(ctx, enabled); err != nil {
					return err
				}
				if enabled {
					if err := a.records.ResyncPredictedPeriod(ctx); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "predicted-period reminder %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scheduled reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				pending, err := a.reminders.Pending(ctx)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), pending, func(w io.Writer) error {
					return writeReminderList(w, pending, a.location)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dispatch",
		Short: "Send every reminder that is due now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				sent, err := a.reminders.DispatchDue(ctx, a.now())
				fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminders\n", sent)
				return err
			})
		},
	})

	run := &cobra.Command{
		Use:   "run",
		Short: "Dispatch due reminders until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("interval")
			return env.run(cmd, func(ctx context.Context, a *app) error {
				log.Printf("reminders: dispatching every %s (tz: %s)", interval, a.location)
				return a.reminders.Run(ctx, interval)
			})
		},
	}
	run.Flags().Duration("interval", time.Minute, "Check interval")
	cmd.AddCommand(run)

	return cmd
}

func writeReminderList(w io.Writer, pending []models.Reminder, location *time.Location) error {
	if len(pending) == 0 {
		_, err := fmt.Fprintln(w, "no reminders scheduled")
		return err
	}

	out := newFields(w)
	for _, reminder := range pending {
		switch reminder.Kind {
		case models.ReminderDaily:
			out.add(string(reminder.Kind), "every day at %s (last sent %s)", reminder.Time, orDash(reminder.LastSentOn.Key()))
		default:
			out.add(string(reminder.Kind), "%s for period on %s", reminder.FireAt.In(location).Format("2006-01-02 15:04"), reminder.NextPeriodStart)
		}
	}
	return out.flush()
}
