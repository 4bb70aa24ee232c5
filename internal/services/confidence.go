package services

import "github.com/terraincognita07/cyclecast/internal/models"

type Confidence string

const (
	ConfidenceNone    Confidence = "none"
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)

// PredictionConfidence grades forecasts by data volume, measured as the
// number of recorded period starts (three starts, two cycle lengths: medium).
// Counting starts rather than lengths means one start, or the fallback start
// alone, already grades low; only an empty history grades none.
// Special modes get a fixed ceiling since their cycles are not stationary.
func PredictionConfidence(recordedStarts int, mode models.PhysiologicalMode) Confidence {
	if recordedStarts <= 0 {
		return ConfidenceNone
	}

	switch mode.Normalize() {
	case models.ModePostpartum, models.ModeBreastfeeding:
		return ConfidenceVeryLow
	case models.ModePerimenopause, models.ModePostContraception:
		return ConfidenceLow
	}

	switch {
	case recordedStarts >= 6:
		return ConfidenceHigh
	case recordedStarts >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
