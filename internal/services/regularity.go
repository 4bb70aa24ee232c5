package services

import (
	"github.com/terraincognita07/cyclecast/internal/models"
)

// FIGO System 1 bounds.
const (
	FIGOMinAge              = 18
	FIGOMaxAge              = 45
	FIGOFrequentBelowDays   = 24
	FIGOInfrequentAboveDays = 38
)

const (
	ReasonInsufficientData      = "insufficient_data"
	ReasonOutsideFIGOAgeRange   = "outside_figo_age_range"
	ReasonCycleLengthOutOfRange = "cycle_length_out_of_range"
	ReasonHighVariation         = "high_variation"
	ReasonPhysiologicalMode     = "physiological_mode_active"
)

type Regularity struct {
	N         int     `json:"n" yaml:"n"`
	Average   float64 `json:"avg" yaml:"avg"`
	StdDev    float64 `json:"std_dev" yaml:"std_dev"`
	Min       int     `json:"min" yaml:"min"`
	Max       int     `json:"max" yaml:"max"`
	Variation int     `json:"variation" yaml:"variation"`
	// ThresholdDays is 0 when no FIGO threshold applies to the age.
	ThresholdDays         int                      `json:"threshold_days" yaml:"threshold_days"`
	HasOutOfRange         bool                     `json:"has_out_of_range" yaml:"has_out_of_range"`
	IsIrregular           bool                     `json:"is_irregular" yaml:"is_irregular"`
	IrregularReasons      []string                 `json:"irregular_reasons" yaml:"irregular_reasons"`
	SuppressIrregularFlag bool                     `json:"suppress_irregular_flag" yaml:"suppress_irregular_flag"`
	ModeNote              models.PhysiologicalMode `json:"mode_note,omitempty" yaml:"mode_note,omitempty"`
}

// HasData reports whether the statistics fields carry values.
func (regularity Regularity) HasData() bool {
	return regularity.N > 0
}

// FIGOVariationThreshold returns the allowed shortest-to-longest spread for an
// age in years, or 0 outside the 18–45 band.
func FIGOVariationThreshold(ageYears int) int {
	switch {
	case ageYears >= 18 && ageYears <= 25:
		return 7
	case ageYears >= 26 && ageYears <= 41:
		return 9
	case ageYears >= 42 && ageYears <= 45:
		return 7
	default:
		return 0
	}
}

func inFIGOAgeRange(age *int) bool {
	return age != nil && *age >= FIGOMinAge && *age <= FIGOMaxAge
}

// ClassifyRegularity computes statistics over the whole history and applies
// FIGO System 1. Special physiological modes always report "not irregular"
// with a single mode note instead of per-rule reasons.
func ClassifyRegularity(lengths []int, age *int, mode models.PhysiologicalMode) Regularity {
	regularity := Regularity{
		N:                len(lengths),
		IrregularReasons: []string{},
	}

	if regularity.N > 0 {
		regularity.Average = averageInts(lengths)
		regularity.StdDev = populationStdDev(lengths, regularity.Average)
		regularity.Min, regularity.Max = minMaxInts(lengths)
		regularity.Variation = regularity.Max - regularity.Min
	}

	if age != nil {
		regularity.ThresholdDays = FIGOVariationThreshold(*age)
	}

	if inFIGOAgeRange(age) {
		regularity.HasOutOfRange = countWhere(lengths, func(length int) bool {
			return length < FIGOFrequentBelowDays || length > FIGOInfrequentAboveDays
		}) > 0
	}

	enoughForVariation := regularity.N >= 2
	variationIrregular := regularity.ThresholdDays > 0 && enoughForVariation && regularity.Variation > regularity.ThresholdDays
	regularity.IsIrregular = regularity.HasOutOfRange || variationIrregular

	if mode.IsSpecial() {
		regularity.IsIrregular = false
		regularity.SuppressIrregularFlag = true
		regularity.ModeNote = mode.Normalize()
		regularity.IrregularReasons = []string{ReasonPhysiologicalMode}
		return regularity
	}

	if !enoughForVariation {
		regularity.IrregularReasons = append(regularity.IrregularReasons, ReasonInsufficientData)
	}
	if !inFIGOAgeRange(age) {
		regularity.IrregularReasons = append(regularity.IrregularReasons, ReasonOutsideFIGOAgeRange)
	}
	if regularity.HasOutOfRange {
		regularity.IrregularReasons = append(regularity.IrregularReasons, ReasonCycleLengthOutOfRange)
	}
	if variationIrregular {
		regularity.IrregularReasons = append(regularity.IrregularReasons, ReasonHighVariation)
	}

	return regularity
}
