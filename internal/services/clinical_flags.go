package services

import (
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

type FlagSeverity string

const (
	SeverityInfo    FlagSeverity = "info"
	SeveritySuggest FlagSeverity = "suggest"
)

type ClinicalFlagType string

const (
	FlagShortCycles              ClinicalFlagType = "short_cycles"
	FlagLongCycles               ClinicalFlagType = "long_cycles"
	FlagProlongedBleeding        ClinicalFlagType = "prolonged_bleeding"
	FlagBleedingLongerThanConfig ClinicalFlagType = "bleeding_longer_than_config"
	FlagIntermenstrualBleeding   ClinicalFlagType = "intermenstrual_bleeding"
	FlagNoPeriod                 ClinicalFlagType = "no_period"
)

// Pattern thresholds.
const (
	RecentCycleWindow         = 5
	ShortCycleBelowDays       = 21
	LongCycleAboveDays        = 35
	PatternMinOccurrences     = 2
	AtypicalMedianBelowDays   = 22
	AtypicalMedianAboveDays   = 34
	AtypicalMedianMinPoints   = 3
	BleedingRunCapDays        = 30
	ProlongedBleedingAbove    = 8
	IntermenstrualLookback    = 45
	IntermenstrualMinDays     = 2
	OverdueAfterDays          = 45
	OverdueAfterDaysTolerant  = 60
	IntermenstrualMinPeriod   = 2
	IntermenstrualMaxPeriod   = 12
	IntermenstrualBasePeriod  = models.DefaultPeriodLength
	bleedingLongerMarginDays  = 1
	intermenstrualHeavyNeeded = 1
)

type ClinicalFlag struct {
	Type     ClinicalFlagType `json:"type" yaml:"type"`
	Severity FlagSeverity     `json:"severity" yaml:"severity"`
	// Catalogue keys for the short templated title and message.
	TitleKey   string `json:"title_key" yaml:"title_key"`
	MessageKey string `json:"message_key" yaml:"message_key"`

	BleedingDays           int     `json:"bleeding_days,omitempty" yaml:"bleeding_days,omitempty"`
	ConfiguredPeriodLength int     `json:"configured_period_length,omitempty" yaml:"configured_period_length,omitempty"`
	MedianCycleLength      float64 `json:"median_cycle_length,omitempty" yaml:"median_cycle_length,omitempty"`
	DaysSinceLastStart     int     `json:"days_since_last_start,omitempty" yaml:"days_since_last_start,omitempty"`

	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// MessageArgs returns the values the message template consumes, in order.
func (flag ClinicalFlag) MessageArgs() []any {
	switch flag.Type {
	case FlagBleedingLongerThanConfig:
		return []any{flag.BleedingDays, flag.ConfiguredPeriodLength}
	case FlagProlongedBleeding:
		return []any{flag.BleedingDays}
	case FlagNoPeriod:
		return []any{flag.DaysSinceLastStart}
	default:
		return nil
	}
}

type ClinicalInput struct {
	History      CycleHistory
	PeriodLength int
	Symptoms     models.SymptomTimeline
	Today        calendar.Day
	Mode         models.PhysiologicalMode
}

// DetectClinicalFlags evaluates every detector independently and returns all
// triggered flags.
func DetectClinicalFlags(input ClinicalInput) []ClinicalFlag {
	flags := make([]ClinicalFlag, 0)
	flags = append(flags, detectCycleLengthPatterns(input.History.Gaps())...)

	lastStart := input.History.LatestPeriodStart
	if lastStart.IsZero() {
		return flags
	}

	flags = append(flags, detectProlongedBleeding(lastStart, input.PeriodLength, input.Symptoms)...)
	if flag, ok := detectIntermenstrualBleeding(lastStart, input.PeriodLength, input.Symptoms, input.Today); ok {
		flags = append(flags, flag)
	}
	if flag, ok := detectOverduePeriod(lastStart, input.Today, input.Mode); ok {
		flags = append(flags, flag)
	}
	return flags
}

// detectCycleLengthPatterns looks at the last five gaps for repeated short
// or long cycles and at the all-time median for an atypical baseline. Gaps
// outside the statistics band count here.
func detectCycleLengthPatterns(allLengths []int) []ClinicalFlag {
	recent := tailInts(allLengths, RecentCycleWindow)
	if len(recent) < PatternMinOccurrences {
		return nil
	}

	flags := make([]ClinicalFlag, 0, 3)
	shortCount := countWhere(recent, func(length int) bool { return length < ShortCycleBelowDays })
	longCount := countWhere(recent, func(length int) bool { return length > LongCycleAboveDays })

	if shortCount >= PatternMinOccurrences {
		flags = append(flags, newFlag(FlagShortCycles, SeveritySuggest, "short_cycles"))
	}
	if longCount >= PatternMinOccurrences {
		flags = append(flags, newFlag(FlagLongCycles, SeveritySuggest, "long_cycles"))
	}

	median := medianFloat(allLengths)
	if len(allLengths) >= AtypicalMedianMinPoints && (median < AtypicalMedianBelowDays || median > AtypicalMedianAboveDays) {
		flagType := FlagLongCycles
		if median < AtypicalMedianBelowDays {
			flagType = FlagShortCycles
		}
		flag := newFlag(flagType, SeverityInfo, "atypical_median")
		flag.MedianCycleLength = median
		flags = append(flags, flag)
	}
	return flags
}

func detectProlongedBleeding(lastStart calendar.Day, periodLength int, symptoms models.SymptomTimeline) []ClinicalFlag {
	bleedingDays := BleedingRunLength(symptoms, lastStart, BleedingRunCapDays)
	if bleedingDays == 0 {
		return nil
	}

	flags := make([]ClinicalFlag, 0, 2)
	if periodLength > 0 && bleedingDays > periodLength+bleedingLongerMarginDays {
		flag := newFlag(FlagBleedingLongerThanConfig, SeverityInfo, "bleeding_longer_than_config")
		flag.BleedingDays = bleedingDays
		flag.ConfiguredPeriodLength = periodLength
		flags = append(flags, flag)
	}
	if bleedingDays > ProlongedBleedingAbove {
		flag := newFlag(FlagProlongedBleeding, SeveritySuggest, "prolonged_bleeding")
		flag.BleedingDays = bleedingDays
		flags = append(flags, flag)
	}
	return flags
}

// BleedingRunLength counts consecutive bleeding days starting at start, up to limit.
func BleedingRunLength(symptoms models.SymptomTimeline, start calendar.Day, limit int) int {
	count := 0
	for offset := 0; offset < limit; offset++ {
		entry, ok := symptoms.Get(start.AddDays(offset))
		if !ok || !entry.IsBleeding() {
			break
		}
		count++
	}
	return count
}

func detectIntermenstrualBleeding(lastStart calendar.Day, periodLength int, symptoms models.SymptomTimeline, today calendar.Day) (ClinicalFlag, bool) {
	if today.IsZero() || len(symptoms) == 0 {
		return ClinicalFlag{}, false
	}

	windowLength := periodLength
	if windowLength <= 0 {
		windowLength = IntermenstrualBasePeriod
	}
	windowLength = models.ClampInt(windowLength, IntermenstrualMinPeriod, IntermenstrualMaxPeriod)
	periodEnd := lastStart.AddDays(windowLength - 1)

	outsideDays := 0
	heavyDays := 0
	for offset := 0; offset < IntermenstrualLookback; offset++ {
		day := today.AddDays(-offset)
		entry, ok := symptoms.Get(day)
		if !ok || !entry.IsBleeding() {
			continue
		}
		if day.Between(lastStart, periodEnd) {
			continue
		}
		outsideDays++
		if entry.IsMediumOrHeavyFlow() {
			heavyDays++
		}
	}

	if outsideDays < IntermenstrualMinDays {
		return ClinicalFlag{}, false
	}
	if heavyDays >= intermenstrualHeavyNeeded {
		return newFlag(FlagIntermenstrualBleeding, SeveritySuggest, "intermenstrual_bleeding_heavy"), true
	}
	return newFlag(FlagIntermenstrualBleeding, SeverityInfo, "intermenstrual_bleeding_light"), true
}

// detectOverduePeriod never fires in postpartum or breastfeeding mode.
func detectOverduePeriod(lastStart calendar.Day, today calendar.Day, mode models.PhysiologicalMode) (ClinicalFlag, bool) {
	if today.IsZero() || mode.SuppressesOverdueCheck() {
		return ClinicalFlag{}, false
	}

	threshold := OverdueAfterDays
	switch mode.Normalize() {
	case models.ModePerimenopause, models.ModePostContraception:
		threshold = OverdueAfterDaysTolerant
	}

	since := calendar.DaysBetween(lastStart, today)
	if since <= threshold {
		return ClinicalFlag{}, false
	}
	flag := newFlag(FlagNoPeriod, SeveritySuggest, "no_period")
	flag.DaysSinceLastStart = since
	return flag, true
}

func newFlag(flagType ClinicalFlagType, severity FlagSeverity, catalogueKey string) ClinicalFlag {
	return ClinicalFlag{
		Type:       flagType,
		Severity:   severity,
		TitleKey:   "flag." + catalogueKey + ".title",
		MessageKey: "flag." + catalogueKey + ".message",
	}
}
