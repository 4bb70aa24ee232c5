package models

import "github.com/terraincognita07/cyclecast/internal/calendar"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5

	MinManualCycleLength = 18
	MaxManualCycleLength = 60
	MinPeriodLength      = 2
	MaxPeriodLength      = 12
)

type Settings struct {
	Goal               string            `json:"goal,omitempty" yaml:"goal,omitempty"`
	Birthday           calendar.Day      `json:"birthday" yaml:"birthday"`
	ManualCycleLength  int               `json:"cycleLengthManual" yaml:"cycle_length_manual"`
	PeriodLength       int               `json:"periodLength" yaml:"period_length"`
	Mode               PhysiologicalMode `json:"physioMode" yaml:"physio_mode"`
	LegacyPeriodStart  calendar.Day      `json:"periodStart" yaml:"period_start"`
	PeriodActive       bool              `json:"isPeriodActive" yaml:"period_active"`
	DisclaimerAccepted bool              `json:"disclaimerAccepted" yaml:"disclaimer_accepted"`
}

func DefaultSettings() Settings {
	return Settings{
		ManualCycleLength: DefaultCycleLength,
		PeriodLength:      DefaultPeriodLength,
		Mode:              ModeRegular,
	}
}

func ClampInt(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func ClampManualCycleLength(value int) int {
	return ClampInt(value, MinManualCycleLength, MaxManualCycleLength)
}

func ClampPeriodLength(value int) int {
	return ClampInt(value, MinPeriodLength, MaxPeriodLength)
}
