package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func newSymptomsCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symptoms",
		Short: "Record per-day symptoms",
	}

	set := &cobra.Command{
		Use:   "set DAY",
		Short: "Merge symptom values into the record of DAY",
		Long:  "Merge symptom values into the record of DAY. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := calendar.ParseDay(args[0])
			if err != nil {
				return err
			}
			patch, err := symptomPatchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return fmt.Errorf("no symptom flags given")
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				merged, err := a.records.SetSymptoms(ctx, day, patch)
				if err != nil {
					return err
				}
				return a.renderSymptoms(cmd.OutOrStdout(), day, merged)
			})
		},
	}
	set.Flags().String("flow", "", "Flow: none, light, medium, heavy")
	set.Flags().String("pain", "", "Pain: none, mild, moderate, severe")
	set.Flags().String("mood", "", "Mood: good, ok, low, anxious")
	set.Flags().String("discharge", "", "Cervical fluid: dry, sticky, creamy, watery, eggwhite")
	set.Flags().String("sex", "", "Intercourse: true or false")
	set.Flags().String("opk", "", "Ovulation test: positive or negative")
	set.Flags().Float64("bbt", 0, "Basal body temperature in Celsius")
	set.Flags().String("notes", "", "Free-text notes")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "show DAY",
		Short: "Show the record of DAY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := calendar.ParseDay(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				timeline, err := a.repos.UserData.LoadSymptoms(ctx)
				if err != nil {
					return err
				}
				entry, _ := timeline.Get(day)
				return a.renderSymptoms(cmd.OutOrStdout(), day, entry)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear DAY",
		Short: "Delete the whole record of DAY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := calendar.ParseDay(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				cleared, err := a.records.ClearSymptoms(ctx, day)
				if err != nil {
					return err
				}
				if !cleared {
					fmt.Fprintf(cmd.OutOrStdout(), "nothing recorded on %s\n", day)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", day)
				return nil
			})
		},
	})

	return cmd
}

func symptomPatchFromFlags(flags *pflag.FlagSet) (models.DaySymptoms, error) {
	var patch models.DaySymptoms

	if flags.Changed("flow") {
		raw, _ := flags.GetString("flow")
		value, err := models.ParseFlow(raw)
		if err != nil {
			return models.DaySymptoms{}, err
		}
		patch.Flow = &value
	}
	if flags.Changed("pain") {
		raw, _ := flags.GetString("pain")
		value, err := models.ParsePain(raw)
		if err != nil {
			return models.DaySymptoms{}, err
		}
		patch.Pain = &value
	}
	if flags.Changed("mood") {
		raw, _ := flags.GetString("mood")
		value, err := models.ParseMood(raw)
		if err != nil {
			return models.DaySymptoms{}, err
		}
		patch.Mood = &value
	}
	if flags.Changed("discharge") {
		raw, _ := flags.GetString("discharge")
		value, err := models.ParseCervicalFluid(raw)
		if err != nil {
			return models.DaySymptoms{}, err
		}
		patch.CervicalFluid = &value
	}
	if flags.Changed("sex") {
		raw, _ := flags.GetString("sex")
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return models.DaySymptoms{}, fmt.Errorf("invalid --sex value %q", raw)
		}
		patch.Intercourse = &value
	}
	if flags.Changed("opk") {
		raw, _ := flags.GetString("opk")
		value, err := models.ParseOvulationTest(raw)
		if err != nil {
			return models.DaySymptoms{}, err
		}
		patch.OvulationTest = &value
	}
	if flags.Changed("bbt") {
		value, _ := flags.GetFloat64("bbt")
		patch.BBT = &value
	}
	if flags.Changed("notes") {
		value, _ := flags.GetString("notes")
		patch.Notes = &value
	}
	return patch, nil
}

func (a *app) renderSymptoms(w io.Writer, day calendar.Day, entry models.DaySymptoms) error {
	payload := struct {
		Day      calendar.Day       `json:"day" yaml:"day"`
		Symptoms models.DaySymptoms `json:"symptoms" yaml:"symptoms"`
	}{Day: day, Symptoms: entry}

	return a.render(w, payload, func(w io.Writer) error {
		out := newFields(w)
		out.add("Day", "%s", day)
		out.add("Flow", "%s", orDash(enumText(entry.Flow)))
		out.add("Pain", "%s", orDash(enumText(entry.Pain)))
		out.add("Mood", "%s", orDash(enumText(entry.Mood)))
		out.add("Cervical fluid", "%s", orDash(enumText(entry.CervicalFluid)))
		out.add("Ovulation test", "%s", orDash(enumText(entry.OvulationTest)))
		if entry.Intercourse != nil {
			out.add("Intercourse", "%t", *entry.Intercourse)
		}
		if entry.BBT != nil {
			out.add("BBT", "%.2f", *entry.BBT)
		}
		if notes := entry.NotesText(); notes != "" {
			out.add("Notes", "%s", notes)
		}
		return out.flush()
	})
}

func enumText[T ~string](value *T) string {
	if value == nil {
		return ""
	}
	return string(*value)
}
