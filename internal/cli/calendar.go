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

func newCalendarCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month with projected period, ovulation and fertile days",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var month calendar.Day
			if len(args) == 1 {
				parsed, err := calendar.ParseDay(args[0] + "-01")
				if err != nil {
					return fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
				}
				month = parsed
			}

			return env.run(cmd, func(ctx context.Context, a *app) error {
				insights, snapshot, err := a.stats.BuildInsights(ctx)
				if err != nil {
					return err
				}
				if month.IsZero() {
					month = snapshot.Today
				}

				days := services.BuildCalendarDayStates(services.CalendarGridInput{
					Month:        month,
					Insights:     insights,
					Symptoms:     snapshot.Symptoms,
					PeriodStarts: snapshot.PeriodStarts,
					Today:        snapshot.Today,
				})
				return a.render(cmd.OutOrStdout(), days, func(w io.Writer) error {
					return writeCalendarGrid(w, month, days)
				})
			})
		},
	}
}

var dayMarkSymbols = map[services.DayMark]string{
	services.MarkPeriod:    "P",
	services.MarkOvulation: "O",
	services.MarkFertile:   "F",
}

// writeCalendarGrid prints one week per line. Each cell is the day number,
// a mark symbol, and "*" for today; "+" means bleeding was logged.
func writeCalendarGrid(w io.Writer, month calendar.Day, days []services.CalendarDayState) error {
	year, monthOfYear, _ := month.Date()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", monthOfYear, year)
	b.WriteString("Su   Mo   Tu   We   Th   Fr   Sa\n")
	for i, day := range days {
		cell := "    "
		if day.InMonth {
			cell = fmt.Sprintf("%2d%s%s", day.Day, markSymbol(day.Mark), dayExtraSymbol(day))
		}
		b.WriteString(cell)
		if i%7 == 6 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString("P period  O ovulation  F fertile  * today  + bleeding logged\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func markSymbol(mark services.DayMark) string {
	if symbol, ok := dayMarkSymbols[mark]; ok {
		return symbol
	}
	return " "
}

func dayExtraSymbol(day services.CalendarDayState) string {
	switch {
	case day.IsToday:
		return "*"
	case day.LoggedBleeding:
		return "+"
	default:
		return " "
	}
}
