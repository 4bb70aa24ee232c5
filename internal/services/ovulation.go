package services

import (
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

// LutealPhaseDays is the fixed ovulation-to-next-period offset.
const LutealPhaseDays = 14

type OvulationSource string

const (
	OvulationSourceNone          OvulationSource = "none"
	OvulationSourceOvulationTest OvulationSource = "ovulation_test"
	OvulationSourceCalendar      OvulationSource = "calendar"
)

type OvulationResolution struct {
	Date   calendar.Day    `json:"date" yaml:"date"`
	Source OvulationSource `json:"source" yaml:"source"`
}

func (resolution OvulationResolution) Observed() bool {
	return resolution.Source == OvulationSourceOvulationTest && !resolution.Date.IsZero()
}

func (resolution OvulationResolution) Known() bool {
	return !resolution.Date.IsZero()
}

// ResolveOvulation picks the ovulation day of the cycle that started on
// latestStart. The latest positive ovulation test inside
// [latestStart, latestStart+cycleLength) wins over the calendar estimate.
func ResolveOvulation(latestStart calendar.Day, cycleLength int, symptoms models.SymptomTimeline) OvulationResolution {
	if latestStart.IsZero() || cycleLength <= 0 {
		return OvulationResolution{Source: OvulationSourceNone}
	}

	if observed := LatestPositiveOvulationTest(symptoms, latestStart, cycleLength); !observed.IsZero() {
		return OvulationResolution{Date: observed, Source: OvulationSourceOvulationTest}
	}

	return OvulationResolution{
		Date:   EstimateOvulationDay(latestStart, cycleLength),
		Source: OvulationSourceCalendar,
	}
}

// EstimateOvulationDay applies the luteal-phase rule to a cycle start.
func EstimateOvulationDay(cycleStart calendar.Day, cycleLength int) calendar.Day {
	if cycleStart.IsZero() || cycleLength <= 0 {
		return calendar.Day{}
	}
	offset := cycleLength - LutealPhaseDays
	if offset < 0 {
		offset = 0
	}
	return cycleStart.AddDays(offset)
}

func LatestPositiveOvulationTest(symptoms models.SymptomTimeline, cycleStart calendar.Day, cycleLength int) calendar.Day {
	if len(symptoms) == 0 || cycleStart.IsZero() || cycleLength <= 0 {
		return calendar.Day{}
	}

	windowEnd := cycleStart.AddDays(cycleLength - 1)
	latest := calendar.Day{}
	for day, entry := range symptoms {
		if !entry.OvulationPositive() || !day.Between(cycleStart, windowEnd) {
			continue
		}
		if latest.IsZero() || day.After(latest) {
			latest = day
		}
	}
	return latest
}
