package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/services"
)

func newForecastCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the next period, ovulation and fertile window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				insights, _, err := a.stats.BuildInsights(ctx)
				if err != nil {
					return err
				}
				return a.renderForecast(cmd.OutOrStdout(), insights)
			})
		},
	}
}

func (a *app) renderForecast(w io.Writer, insights services.Insights) error {
	payload := struct {
		services.Forecast `yaml:",inline"`
		CycleLength       int                 `json:"cycle_length" yaml:"cycle_length"`
		PeriodLength      int                 `json:"period_length" yaml:"period_length"`
		Confidence        services.Confidence `json:"confidence" yaml:"confidence"`
	}{
		Forecast:     insights.Forecast,
		CycleLength:  insights.CycleLength,
		PeriodLength: insights.PeriodLength,
		Confidence:   insights.Confidence,
	}

	return a.render(w, payload, func(w io.Writer) error {
		forecast := insights.Forecast
		out := newFields(w)
		out.add("Today", "%s", forecast.Today)
		if !forecast.LatestPeriodStart.IsZero() {
			out.add("Cycle day", "%d (%s)", forecast.CycleDay, a.translator.Translate("phase."+forecast.CurrentPhase))
			out.add("Latest period start", "%s", forecast.LatestPeriodStart)
			out.add("Period ends", "%s", forecast.ComputedPeriodEnd)
			out.add("Ovulation", "%s (%s)", forecast.Ovulation.Date, forecast.Ovulation.Source)
			out.add("Fertile window", "%s .. %s", forecast.FertileWindow.Start, forecast.FertileWindow.End)
			out.add("Next period start", "%s (%s)", forecast.NextPeriodStart, daysUntilText(forecast.DaysUntilNextStart))
		}
		out.add("Cycle length", "%d days", insights.CycleLength)
		out.add("Period length", "%d days", insights.PeriodLength)
		if err := out.flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, a.confidenceLine(insights.Confidence))
		return err
	})
}

func (a *app) confidenceLine(confidence services.Confidence) string {
	level := a.translator.Translate("confidence." + string(confidence))
	return a.translator.Translate("confidence.label", level)
}

func daysUntilText(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "in 1 day"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	case days == -1:
		return "1 day late"
	default:
		return fmt.Sprintf("%d days late", -days)
	}
}
