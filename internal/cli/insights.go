package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type flagView struct {
	services.ClinicalFlag `yaml:",inline"`
	EducationURL          string `json:"education_url" yaml:"education_url"`
}

type insightsView struct {
	Confidence       services.Confidence      `json:"confidence" yaml:"confidence"`
	ConfidenceText   string                   `json:"confidence_text" yaml:"confidence_text"`
	Regularity       services.Regularity      `json:"regularity" yaml:"regularity"`
	Mode             models.PhysiologicalMode `json:"mode" yaml:"mode"`
	ModeEducationURL string                   `json:"mode_education_url,omitempty" yaml:"mode_education_url,omitempty"`
	CycleLength      int                      `json:"cycle_length" yaml:"cycle_length"`
	AgeYears         *int                     `json:"age_years,omitempty" yaml:"age_years,omitempty"`
	CycleLengths     []int                    `json:"cycle_lengths" yaml:"cycle_lengths"`
	Flags            []flagView               `json:"flags" yaml:"flags"`
	SuggestClinician bool                     `json:"suggest_clinician" yaml:"suggest_clinician"`
}

// Trend charts show at most this many trailing cycles.
const insightsTrendPoints = 12

func newInsightsCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show regularity, prediction confidence and clinical flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, a *app) error {
				insights, _, err := a.stats.BuildInsights(ctx)
				if err != nil {
					return err
				}
				return a.renderInsights(cmd.OutOrStdout(), a.buildInsightsView(insights))
			})
		},
	}
}

func (a *app) buildInsightsView(insights services.Insights) insightsView {
	flags := services.LocalizeFlags(insights.Flags, a.translator)
	views := make([]flagView, 0, len(flags))
	for _, flag := range flags {
		views = append(views, flagView{
			ClinicalFlag: flag,
			EducationURL: a.links.URL(services.TopicForFlag(flag.Type)),
		})
	}

	view := insightsView{
		Confidence:       insights.Confidence,
		ConfidenceText:   a.translator.Translate("confidence.data." + string(insights.Confidence)),
		Regularity:       insights.Regularity,
		Mode:             insights.Mode,
		CycleLength:      insights.CycleLength,
		AgeYears:         insights.AgeYears,
		CycleLengths:     services.TrimTrailingCycleTrendLengths(insights.History.Lengths(), insightsTrendPoints),
		Flags:            views,
		SuggestClinician: services.HasSuggestFlag(insights.Flags),
	}
	if topic, ok := services.TopicForMode(insights.Mode); ok {
		view.ModeEducationURL = a.links.URL(topic)
	}
	return view
}

func (a *app) renderInsights(w io.Writer, view insightsView) error {
	return a.render(w, view, func(w io.Writer) error {
		var b strings.Builder

		fmt.Fprintln(&b, a.confidenceLine(view.Confidence))
		fmt.Fprintln(&b, view.ConfidenceText)

		if view.Regularity.HasData() {
			key := "regularity.regular"
			if view.Regularity.IsIrregular && !view.Regularity.SuppressIrregularFlag {
				key = "regularity.irregular"
			}
			fmt.Fprintln(&b, a.translator.Translate(key))
			fmt.Fprintf(&b, "  cycles: %d, avg %.1f, min %d, max %d, variation %d\n",
				view.Regularity.N, view.Regularity.Average, view.Regularity.Min, view.Regularity.Max, view.Regularity.Variation)
		}

		if view.Mode.IsSpecial() {
			fmt.Fprintf(&b, "\n%s\n%s\n", a.translator.Translate("mode.title"), a.translator.Translate("mode."+string(view.Mode)+".banner"))
			if view.ModeEducationURL != "" {
				fmt.Fprintf(&b, "  %s: %s\n", a.translator.Translate("mode.read_more"), view.ModeEducationURL)
			}
		}

		for _, flag := range view.Flags {
			fmt.Fprintf(&b, "\n[%s] %s\n%s\n", flag.Severity, flag.Title, flag.Message)
			if flag.EducationURL != "" {
				fmt.Fprintf(&b, "  %s\n", flag.EducationURL)
			}
		}
		if view.SuggestClinician {
			fmt.Fprintf(&b, "\n%s\n", a.translator.Translate("flag.suggest_banner"))
		}
		fmt.Fprintf(&b, "\n%s\n", a.translator.Translate("disclaimer"))

		_, err := io.WriteString(w, b.String())
		return err
	})
}
