// Package cli implements the cyclecast commands.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Options struct {
	// Now replaces the wall clock, mainly for tests.
	Now func() time.Time
}

type rootFlags struct {
	configPath string
	dbPath     string
	format     string
	language   string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd(options Options) *cobra.Command {
	if options.Now == nil {
		options.Now = time.Now
	}
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "cyclecast",
		Short:         "Local menstrual cycle tracker and forecaster",
		Long:          "Record period starts and symptoms, then forecast the next period, ovulation and fertile window. SQLite-backed, single user.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: $CYCLECAST_CONFIG or ~/.cyclecast/config.yaml)")
	root.PersistentFlags().StringVarP(&flags.dbPath, "db", "d", "", "Database path (overrides config)")
	root.PersistentFlags().StringVarP(&flags.format, "format", "f", FormatText, "Output format: text, json or yaml")
	root.PersistentFlags().StringVar(&flags.language, "lang", "", "Output language: en or he (overrides config)")

	env := &commandEnv{flags: flags, now: options.Now}
	root.AddCommand(
		newPeriodCmd(env),
		newSymptomsCmd(env),
		newSettingsCmd(env),
		newForecastCmd(env),
		newInsightsCmd(env),
		newCalendarCmd(env),
		newReportCmd(env),
		newExportCmd(env),
		newImportCmd(env),
		newReminderCmd(env),
		newResetCmd(env),
	)
	return root
}
