package services

import (
	"testing"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func TestComputeInsightsSteadyHistory(t *testing.T) {
	t.Parallel()

	insights := ComputeInsights(models.Snapshot{
		PeriodStarts:       mustDays(t, "2024-01-01", "2024-01-29", "2024-02-26"),
		ManualCycleLength:  30,
		ManualPeriodLength: 5,
		Mode:               models.ModeRegular,
		Birthday:           mustDay(t, "1994-01-01"),
		Today:              mustDay(t, "2024-03-05"),
	})

	if insights.Regularity.Average != 28 || insights.Regularity.Variation != 0 || insights.Regularity.IsIrregular {
		t.Fatalf("expected steady 28 day cycles, got %+v", insights.Regularity)
	}
	if insights.Regularity.N != 2 {
		t.Fatalf("expected two cycle lengths, got %d", insights.Regularity.N)
	}
	if insights.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %q", insights.Confidence)
	}
	if insights.CycleLength != 28 {
		t.Fatalf("expected history to override the manual cycle length, got %d", insights.CycleLength)
	}
	if insights.AgeYears == nil || *insights.AgeYears != 30 {
		t.Fatalf("expected age 30, got %v", insights.AgeYears)
	}
	if insights.Forecast.NextPeriodStart != mustDay(t, "2024-03-25") {
		t.Fatalf("expected next period 2024-03-25, got %s", insights.Forecast.NextPeriodStart)
	}
	if insights.Forecast.CycleDay != 9 {
		t.Fatalf("expected cycle day 9, got %d", insights.Forecast.CycleDay)
	}
	if len(insights.Flags) != 0 {
		t.Fatalf("expected no flags, got %+v", insights.Flags)
	}
}

func TestComputeInsightsShortMedianHistory(t *testing.T) {
	t.Parallel()

	insights := ComputeInsights(models.Snapshot{
		PeriodStarts:       mustDays(t, "2024-01-01", "2024-01-21", "2024-02-11", "2024-04-01"),
		ManualPeriodLength: 5,
		Birthday:           mustDay(t, "1994-01-01"),
		Today:              mustDay(t, "2024-04-05"),
	})

	if !hasFlag(insights.Flags, FlagShortCycles, SeverityInfo) {
		t.Fatalf("expected short_cycles info flag, got %+v", insights.Flags)
	}
	if !insights.Regularity.IsIrregular || insights.Regularity.ThresholdDays != 9 {
		t.Fatalf("expected irregular classification with threshold 9, got %+v", insights.Regularity)
	}
	if insights.Mode != models.ModeRegular {
		t.Fatalf("expected empty mode to normalize to regular, got %q", insights.Mode)
	}
}

func TestComputeInsightsEmptySnapshot(t *testing.T) {
	t.Parallel()

	insights := ComputeInsights(models.Snapshot{Today: mustDay(t, "2024-04-05")})
	if insights.Confidence != ConfidenceNone {
		t.Fatalf("expected no confidence, got %q", insights.Confidence)
	}
	if !insights.Forecast.NextPeriodStart.IsZero() || insights.Forecast.CurrentPhase != PhaseUnknown {
		t.Fatalf("expected unknown forecast, got %+v", insights.Forecast)
	}
	if insights.CycleLength != models.DefaultCycleLength || insights.PeriodLength != models.DefaultPeriodLength {
		t.Fatalf("expected default lengths, got cycle=%d period=%d", insights.CycleLength, insights.PeriodLength)
	}
	if insights.AgeYears != nil {
		t.Fatalf("expected unknown age, got %d", *insights.AgeYears)
	}
}

func TestComputeInsightsUsesFallbackStart(t *testing.T) {
	t.Parallel()

	insights := ComputeInsights(models.Snapshot{
		FallbackStart:     mustDay(t, "2024-03-01"),
		ManualCycleLength: 32,
		Today:             mustDay(t, "2024-03-05"),
	})

	if insights.Forecast.NextPeriodStart != mustDay(t, "2024-04-02") {
		t.Fatalf("expected next start from fallback and manual length, got %s", insights.Forecast.NextPeriodStart)
	}
	if !insights.History.UsedFallback || insights.Confidence != ConfidenceLow {
		t.Fatalf("expected fallback start graded as a single start, got fallback=%v confidence=%q", insights.History.UsedFallback, insights.Confidence)
	}
}

func TestEffectiveCycleLength(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		starts []string
		manual int
		want   int
	}{
		{name: "rounded history mean", starts: []string{"2024-01-01", "2024-01-28", "2024-02-25"}, manual: 30, want: 28},
		{name: "manual clamped high", manual: 75, want: models.MaxManualCycleLength},
		{name: "manual clamped low", manual: 12, want: models.MinManualCycleLength},
		{name: "manual used", manual: 31, want: 31},
		{name: "default", want: models.DefaultCycleLength},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			history := BuildCycleHistory(mustDays(t, testCase.starts...), calendar.Day{}, calendar.Day{})
			if got := EffectiveCycleLength(history, testCase.manual); got != testCase.want {
				t.Fatalf("expected %d, got %d", testCase.want, got)
			}
		})
	}
}

func TestAgeInYears(t *testing.T) {
	t.Parallel()

	today := mustDay(t, "2024-03-05")
	if got := AgeInYears(mustDay(t, "1994-03-06"), today); got == nil || *got != 29 {
		t.Fatalf("expected 29 the day before the birthday, got %v", got)
	}
	if got := AgeInYears(mustDay(t, "1994-03-05"), today); got == nil || *got != 30 {
		t.Fatalf("expected 30 on the birthday, got %v", got)
	}
	if got := AgeInYears(mustDay(t, "2025-01-01"), today); got != nil {
		t.Fatalf("expected nil for a future birthday, got %d", *got)
	}
	if got := AgeInYears(calendar.Day{}, today); got != nil {
		t.Fatalf("expected nil for an unknown birthday, got %d", *got)
	}
}
