package models

import "github.com/terraincognita07/cyclecast/internal/calendar"

// Snapshot is the immutable input of one engine run.
type Snapshot struct {
	PeriodStarts []calendar.Day
	// FallbackStart is consulted only when PeriodStarts is empty.
	FallbackStart      calendar.Day
	Symptoms           SymptomTimeline
	ManualCycleLength  int
	ManualPeriodLength int
	Mode               PhysiologicalMode
	Birthday           calendar.Day
	Today              calendar.Day
}

func SnapshotFromSettings(settings Settings, starts []calendar.Day, symptoms SymptomTimeline, today calendar.Day) Snapshot {
	return Snapshot{
		PeriodStarts:       starts,
		FallbackStart:      settings.LegacyPeriodStart,
		Symptoms:           symptoms,
		ManualCycleLength:  settings.ManualCycleLength,
		ManualPeriodLength: settings.PeriodLength,
		Mode:               settings.Mode,
		Birthday:           settings.Birthday,
		Today:              today,
	}
}
