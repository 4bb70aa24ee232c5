package services

import (
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

// Fertile window bounds relative to the ovulation day.
const (
	FertileWindowLeadDays  = 4
	FertileWindowTrailDays = 1
)

const (
	PhaseUnknown    = "unknown"
	PhaseMenstrual  = "menstrual"
	PhaseFollicular = "follicular"
	PhaseFertile    = "fertile"
	PhaseOvulation  = "ovulation"
	PhaseLuteal     = "luteal"
)

type ForecastInput struct {
	LatestPeriodStart calendar.Day
	CycleLength       int
	PeriodLength      int
	Symptoms          models.SymptomTimeline
	Today             calendar.Day
}

type DayRange struct {
	Start calendar.Day `json:"start" yaml:"start"`
	End   calendar.Day `json:"end" yaml:"end"`
}

func (window DayRange) IsZero() bool {
	return window.Start.IsZero() || window.End.IsZero()
}

func (window DayRange) Contains(day calendar.Day) bool {
	return day.Between(window.Start, window.End)
}

type Forecast struct {
	Today             calendar.Day        `json:"today" yaml:"today"`
	LatestPeriodStart calendar.Day        `json:"latest_period_start" yaml:"latest_period_start"`
	ComputedPeriodEnd calendar.Day        `json:"computed_period_end" yaml:"computed_period_end"`
	Ovulation         OvulationResolution `json:"ovulation" yaml:"ovulation"`
	FertileWindow     DayRange            `json:"fertile_window" yaml:"fertile_window"`
	NextPeriodStart   calendar.Day        `json:"next_period_start" yaml:"next_period_start"`

	// CycleDay is 1-based; 0 means unknown.
	CycleDay           int    `json:"cycle_day" yaml:"cycle_day"`
	InPeriodByCalc     bool   `json:"in_period_by_calc" yaml:"in_period_by_calc"`
	InFertileWindow    bool   `json:"in_fertile_window" yaml:"in_fertile_window"`
	CurrentPhase       string `json:"current_phase" yaml:"current_phase"`
	DaysUntilNextStart int    `json:"days_until_next_start" yaml:"days_until_next_start"`
}

// BuildForecast recomputes every field from the input; nothing is cached.
func BuildForecast(input ForecastInput) Forecast {
	forecast := Forecast{
		Today:             input.Today,
		LatestPeriodStart: input.LatestPeriodStart,
		Ovulation:         OvulationResolution{Source: OvulationSourceNone},
		CurrentPhase:      PhaseUnknown,
	}

	start := input.LatestPeriodStart
	if start.IsZero() {
		return forecast
	}

	if input.PeriodLength > 0 {
		forecast.ComputedPeriodEnd = start.AddDays(input.PeriodLength - 1)
	}

	forecast.Ovulation = ResolveOvulation(start, input.CycleLength, input.Symptoms)
	if forecast.Ovulation.Known() {
		forecast.FertileWindow = FertileWindowAround(forecast.Ovulation.Date)
	}

	switch {
	case forecast.Ovulation.Observed():
		forecast.NextPeriodStart = forecast.Ovulation.Date.AddDays(LutealPhaseDays)
	case input.CycleLength > 0:
		forecast.NextPeriodStart = start.AddDays(input.CycleLength)
	}

	today := input.Today
	if !today.IsZero() && !today.Before(start) {
		forecast.CycleDay = calendar.DaysBetween(start, today) + 1
	}
	if !forecast.ComputedPeriodEnd.IsZero() {
		forecast.InPeriodByCalc = today.Between(start, forecast.ComputedPeriodEnd)
	}
	forecast.InFertileWindow = forecast.FertileWindow.Contains(today)
	if !forecast.NextPeriodStart.IsZero() && !today.IsZero() {
		forecast.DaysUntilNextStart = calendar.DaysBetween(today, forecast.NextPeriodStart)
	}

	forecast.CurrentPhase = detectCurrentPhase(forecast, input.Symptoms)
	return forecast
}

func FertileWindowAround(ovulation calendar.Day) DayRange {
	if ovulation.IsZero() {
		return DayRange{}
	}
	return DayRange{
		Start: ovulation.AddDays(-FertileWindowLeadDays),
		End:   ovulation.AddDays(FertileWindowTrailDays),
	}
}

func detectCurrentPhase(forecast Forecast, symptoms models.SymptomTimeline) string {
	today := forecast.Today
	if today.IsZero() || forecast.CycleDay == 0 {
		return PhaseUnknown
	}
	if entry, ok := symptoms.Get(today); ok && entry.IsBleeding() {
		return PhaseMenstrual
	}
	if forecast.InPeriodByCalc {
		return PhaseMenstrual
	}
	if !forecast.Ovulation.Known() {
		return PhaseUnknown
	}

	switch {
	case today.Equal(forecast.Ovulation.Date):
		return PhaseOvulation
	case forecast.InFertileWindow:
		return PhaseFertile
	case today.Before(forecast.Ovulation.Date):
		return PhaseFollicular
	default:
		return PhaseLuteal
	}
}
