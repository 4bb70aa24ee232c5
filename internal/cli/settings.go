package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

func newSettingsCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change cycle settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				settings, err := a.settings.LoadSettings(ctx)
				if err != nil {
					return err
				}
				return a.renderSettings(cmd.OutOrStdout(), settings)
			})
		},
	})

	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			update, err := settingsUpdateFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				settings, err := a.settings.UpdateSettings(ctx, update)
				if err != nil {
					return err
				}
				return a.renderSettings(cmd.OutOrStdout(), settings)
			})
		},
	}
	set.Flags().Int("cycle-length", 0, fmt.Sprintf("Manual cycle length in days (%d-%d)", models.MinManualCycleLength, models.MaxManualCycleLength))
	set.Flags().Int("period-length", 0, fmt.Sprintf("Period length in days (%d-%d)", models.MinPeriodLength, models.MaxPeriodLength))
	set.Flags().String("birthday", "", "Birthday (YYYY-MM-DD, empty to clear)")
	set.Flags().String("mode", "", "Physiological mode: regular, postpartum, breastfeeding, perimenopause, post_contraception")
	set.Flags().String("goal", "", "Tracking goal")
	set.Flags().String("period-start", "", "Single period start used when no history is recorded")
	set.Flags().Bool("accept-disclaimer", false, "Record that the medical disclaimer was accepted")
	cmd.AddCommand(set)

	return cmd
}

func settingsUpdateFromFlags(flags *pflag.FlagSet) (services.SettingsUpdate, error) {
	var update services.SettingsUpdate

	if flags.Changed("cycle-length") {
		value, _ := flags.GetInt("cycle-length")
		update.ManualCycleLength = &value
	}
	if flags.Changed("period-length") {
		value, _ := flags.GetInt("period-length")
		update.PeriodLength = &value
	}
	if flags.Changed("birthday") {
		day, err := optionalDayFlag(flags, "birthday")
		if err != nil {
			return services.SettingsUpdate{}, err
		}
		update.Birthday = &day
	}
	if flags.Changed("period-start") {
		day, err := optionalDayFlag(flags, "period-start")
		if err != nil {
			return services.SettingsUpdate{}, err
		}
		update.LegacyPeriodStart = &day
	}
	if flags.Changed("mode") {
		value, _ := flags.GetString("mode")
		update.Mode = &value
	}
	if flags.Changed("goal") {
		value, _ := flags.GetString("goal")
		update.Goal = &value
	}
	if flags.Changed("accept-disclaimer") {
		value, _ := flags.GetBool("accept-disclaimer")
		update.DisclaimerAccepted = &value
	}

	if update == (services.SettingsUpdate{}) {
		return services.SettingsUpdate{}, fmt.Errorf("no settings flags given")
	}
	return update, nil
}

// An empty value clears the day.
func optionalDayFlag(flags *pflag.FlagSet, name string) (calendar.Day, error) {
	raw, _ := flags.GetString(name)
	if raw == "" {
		return calendar.Day{}, nil
	}
	day, err := calendar.ParseDay(raw)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return day, nil
}

func (a *app) renderSettings(w io.Writer, settings models.Settings) error {
	return a.render(w, settings, func(w io.Writer) error {
		out := newFields(w)
		out.add("Cycle length", "%d days", settings.ManualCycleLength)
		out.add("Period length", "%d days", settings.PeriodLength)
		out.add("Mode", "%s", settings.Mode.Normalize())
		out.add("Birthday", "%s", orDash(settings.Birthday.Key()))
		if age := a.settings.AgeYears(settings); age != nil {
			out.add("Age", "%d", *age)
		}
		out.add("Goal", "%s", orDash(settings.Goal))
		out.add("Period start", "%s", orDash(settings.LegacyPeriodStart.Key()))
		out.add("Period active", "%t", settings.PeriodActive)
		out.add("Disclaimer accepted", "%t", settings.DisclaimerAccepted)
		return out.flush()
	})
}
