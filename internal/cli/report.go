package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/services"
)

func newReportCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Build a clinician-facing summary of the recorded history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				report, err := a.reports.BuildReport(ctx)
				if err != nil {
					return err
				}
				report.Flags = services.LocalizeFlags(report.Flags, a.translator)
				return a.render(cmd.OutOrStdout(), report, func(w io.Writer) error {
					return a.writeReportText(w, report)
				})
			})
		},
	}
}

func (a *app) writeReportText(w io.Writer, report services.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Report %s\n", report.ID)
	fmt.Fprintf(&b, "Generated %s (today %s)\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"), report.Today)
	fmt.Fprintf(&b, "Mode: %s\n\n", report.Mode)

	fmt.Fprintf(&b, "Period history (%d): %s\n", len(report.PeriodHistory), joinDays(report.PeriodHistory))

	lengths := report.CycleLengths
	fmt.Fprintf(&b, "Cycle lengths: %s\n", joinInts(lengths.Diffs))
	if lengths.Average != nil {
		fmt.Fprintf(&b, "  avg %.1f, min %d, max %d\n", *lengths.Average, *lengths.Min, *lengths.Max)
	}

	fmt.Fprintf(&b, "Period lengths: %s\n", joinInts(report.PeriodLengths.Values))
	if report.PeriodLengths.Average != nil {
		fmt.Fprintf(&b, "  avg %.1f\n", *report.PeriodLengths.Average)
	}

	fmt.Fprintf(&b, "Positive ovulation tests: %s\n", joinDays(report.PositiveOPK))

	if len(report.AbnormalDays) > 0 {
		b.WriteString("Days to review:\n")
		for _, day := range report.AbnormalDays {
			fmt.Fprintf(&b, "  %s  %s", day.Day, strings.Join(day.Reasons, ", "))
			if day.BBT != nil {
				fmt.Fprintf(&b, " (BBT %.1f)", *day.BBT)
			}
			b.WriteString("\n")
		}
	}

	regularity := "regular"
	if report.Regularity.IsIrregular {
		regularity = "irregular: " + strings.Join(report.Regularity.IrregularReasons, ", ")
	}
	fmt.Fprintf(&b, "\nRegularity: %s\n", regularity)
	fmt.Fprintln(&b, a.confidenceLine(report.Confidence))

	for _, flag := range report.Flags {
		fmt.Fprintf(&b, "[%s] %s: %s\n", flag.Severity, flag.Title, flag.Message)
	}
	fmt.Fprintf(&b, "\n%s\n", a.translator.Translate("disclaimer"))

	_, err := io.WriteString(w, b.String())
	return err
}

func joinDays(days []calendar.Day) string {
	if len(days) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(days))
	for _, day := range days {
		keys = append(keys, day.Key())
	}
	return strings.Join(keys, ", ")
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprint(value))
	}
	return strings.Join(parts, ", ")
}
