package services

import (
	"math"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

const maxPlausibleAgeYears = 120

// Insights is everything the engine derives from one snapshot.
type Insights struct {
	Forecast   Forecast       `json:"forecast" yaml:"forecast"`
	History    CycleHistory   `json:"history" yaml:"history"`
	Regularity Regularity     `json:"regularity" yaml:"regularity"`
	Confidence Confidence     `json:"confidence" yaml:"confidence"`
	Flags      []ClinicalFlag `json:"flags" yaml:"flags"`
	// CycleLength is the length the forecast was built with.
	CycleLength  int                      `json:"cycle_length" yaml:"cycle_length"`
	PeriodLength int                      `json:"period_length" yaml:"period_length"`
	AgeYears     *int                     `json:"age_years,omitempty" yaml:"age_years,omitempty"`
	Mode         models.PhysiologicalMode `json:"mode" yaml:"mode"`
}

// ComputeInsights runs the whole pipeline over a snapshot. It has no side
// effects and never fails; sparse input degrades to zero days and
// ConfidenceNone.
func ComputeInsights(snapshot models.Snapshot) Insights {
	mode := snapshot.Mode.Normalize()
	history := BuildCycleHistory(snapshot.PeriodStarts, snapshot.FallbackStart, snapshot.Today)
	cycleLength := EffectiveCycleLength(history, snapshot.ManualCycleLength)
	periodLength := EffectivePeriodLength(snapshot.ManualPeriodLength)
	age := AgeInYears(snapshot.Birthday, snapshot.Today)

	forecast := BuildForecast(ForecastInput{
		LatestPeriodStart: history.LatestPeriodStart,
		CycleLength:       cycleLength,
		PeriodLength:      periodLength,
		Symptoms:          snapshot.Symptoms,
		Today:             snapshot.Today,
	})

	flags := DetectClinicalFlags(ClinicalInput{
		History:      history,
		PeriodLength: snapshot.ManualPeriodLength,
		Symptoms:     snapshot.Symptoms,
		Today:        snapshot.Today,
		Mode:         mode,
	})

	return Insights{
		Forecast:     forecast,
		History:      history,
		Regularity:   ClassifyRegularity(history.Lengths(), age, mode),
		Confidence:   PredictionConfidence(len(history.Starts), mode),
		Flags:        flags,
		CycleLength:  cycleLength,
		PeriodLength: periodLength,
		AgeYears:     age,
		Mode:         mode,
	}
}

// EffectiveCycleLength prefers the rounded mean of the recorded history, then
// the manual setting, then the default.
func EffectiveCycleLength(history CycleHistory, manual int) int {
	if lengths := history.Lengths(); len(lengths) > 0 {
		return int(math.Round(averageInts(lengths)))
	}
	if manual > 0 {
		return models.ClampManualCycleLength(manual)
	}
	return models.DefaultCycleLength
}

func EffectivePeriodLength(manual int) int {
	if manual <= 0 {
		return models.DefaultPeriodLength
	}
	return models.ClampPeriodLength(manual)
}

// AgeInYears returns completed years between birthday and today, or nil when
// either is unknown or the result falls outside 0..120.
func AgeInYears(birthday calendar.Day, today calendar.Day) *int {
	if birthday.IsZero() || today.IsZero() {
		return nil
	}

	birthYear, birthMonth, birthDay := birthday.Date()
	year, month, day := today.Date()
	age := year - birthYear
	if month < birthMonth || (month == birthMonth && day < birthDay) {
		age--
	}
	if age < 0 || age > maxPlausibleAgeYears {
		return nil
	}
	return &age
}
