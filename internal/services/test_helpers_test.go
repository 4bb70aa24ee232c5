package services

import (
	"testing"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func mustDay(t *testing.T, raw string) calendar.Day {
	t.Helper()

	day, err := calendar.ParseDay(raw)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return day
}

func mustDays(t *testing.T, raw ...string) []calendar.Day {
	t.Helper()

	days := make([]calendar.Day, 0, len(raw))
	for _, value := range raw {
		days = append(days, mustDay(t, value))
	}
	return days
}

// bleedingRun records count consecutive days of flow starting at start.
func bleedingRun(timeline models.SymptomTimeline, start calendar.Day, count int, flow models.Flow) models.SymptomTimeline {
	if timeline == nil {
		timeline = make(models.SymptomTimeline)
	}
	for offset := 0; offset < count; offset++ {
		day := start.AddDays(offset)
		timeline[day] = timeline[day].Merge(models.DaySymptoms{Flow: models.Ptr(flow)})
	}
	return timeline
}

func intPtr(value int) *int {
	return &value
}

func hasFlag(flags []ClinicalFlag, flagType ClinicalFlagType, severity FlagSeverity) bool {
	for _, flag := range flags {
		if flag.Type == flagType && flag.Severity == severity {
			return true
		}
	}
	return false
}

func hasFlagType(flags []ClinicalFlag, flagType ClinicalFlagType) bool {
	for _, flag := range flags {
		if flag.Type == flagType {
			return true
		}
	}
	return false
}
