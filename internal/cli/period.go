package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/calendar"
)

func newPeriodCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Record and list period starts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add DAY...",
		Short: "Record one or more period starts (YYYY-MM-DD)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := parseDayArgs(args)
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				var history []calendar.Day
				for _, day := range days {
					if history, err = a.records.AddPeriodStart(ctx, day); err != nil {
						return fmt.Errorf("add period start %s: %w", day, err)
					}
				}
				return a.renderHistory(cmd.OutOrStdout(), history)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove DAY",
		Short: "Delete a recorded period start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := calendar.ParseDay(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				removed, err := a.records.RemovePeriodStart(ctx, day)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no period start recorded on %s", day)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", day)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Mark today as the start of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				today, err := a.records.StartPeriodToday(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "period started %s\n", today)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Mark the current period as finished",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.records.EndPeriodToday(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "period ended")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded period starts, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				history, err := a.repos.UserData.LoadPeriodHistory(ctx)
				if err != nil {
					return err
				}
				return a.renderHistory(cmd.OutOrStdout(), history)
			})
		},
	})

	return cmd
}

func (a *app) renderHistory(w io.Writer, history []calendar.Day) error {
	payload := struct {
		PeriodStarts []calendar.Day `json:"period_starts" yaml:"period_starts"`
	}{PeriodStarts: history}

	return a.render(w, payload, func(w io.Writer) error {
		if len(history) == 0 {
			_, err := fmt.Fprintln(w, "no period starts recorded")
			return err
		}
		for _, day := range history {
			if _, err := fmt.Fprintln(w, day); err != nil {
				return err
			}
		}
		return nil
	})
}

func parseDayArgs(args []string) ([]calendar.Day, error) {
	days, errs := calendar.ParseDays(args)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return days, nil
}
