package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

var (
	ErrSettingsCycleLengthOutOfRange  = errors.New("settings cycle length out of range")
	ErrSettingsPeriodLengthOutOfRange = errors.New("settings period length out of range")
	ErrSettingsBirthdayInFuture       = errors.New("settings birthday in the future")
	ErrSettingsBirthdayImplausible    = errors.New("settings birthday implausible")
	ErrSettingsPeriodStartInFuture    = errors.New("settings period start in the future")
	ErrSettingsModeInvalid            = errors.New("settings physiological mode invalid")
)

func (service *SettingsService) ValidateSettingsUpdate(update SettingsUpdate, today calendar.Day) error {
	if update.ManualCycleLength != nil {
		value := *update.ManualCycleLength
		if value < models.MinManualCycleLength || value > models.MaxManualCycleLength {
			return ErrSettingsCycleLengthOutOfRange
		}
	}
	if update.PeriodLength != nil {
		value := *update.PeriodLength
		if value < models.MinPeriodLength || value > models.MaxPeriodLength {
			return ErrSettingsPeriodLengthOutOfRange
		}
	}
	if update.Birthday != nil && !update.Birthday.IsZero() {
		if update.Birthday.After(today) {
			return ErrSettingsBirthdayInFuture
		}
		if AgeInYears(*update.Birthday, today) == nil {
			return ErrSettingsBirthdayImplausible
		}
	}
	if update.LegacyPeriodStart != nil && update.LegacyPeriodStart.After(today) {
		return ErrSettingsPeriodStartInFuture
	}
	if update.Mode != nil {
		if _, err := models.ParsePhysiologicalMode(*update.Mode); err != nil {
			return fmt.Errorf("%w: %q", ErrSettingsModeInvalid, *update.Mode)
		}
	}
	return nil
}

// ApplySettingsUpdate copies a validated update into settings and reports
// whether a forecast input changed.
func (service *SettingsService) ApplySettingsUpdate(settings *models.Settings, update SettingsUpdate) bool {
	if settings == nil {
		return false
	}

	forecastInputsChanged := false
	if update.Goal != nil {
		settings.Goal = strings.TrimSpace(*update.Goal)
	}
	if update.Birthday != nil {
		settings.Birthday = *update.Birthday
	}
	if update.ManualCycleLength != nil && *update.ManualCycleLength != settings.ManualCycleLength {
		settings.ManualCycleLength = *update.ManualCycleLength
		forecastInputsChanged = true
	}
	if update.PeriodLength != nil {
		settings.PeriodLength = *update.PeriodLength
	}
	if update.Mode != nil {
		mode, _ := models.ParsePhysiologicalMode(*update.Mode)
		settings.Mode = mode
	}
	if update.LegacyPeriodStart != nil && !update.LegacyPeriodStart.Equal(settings.LegacyPeriodStart) {
		settings.LegacyPeriodStart = *update.LegacyPeriodStart
		forecastInputsChanged = true
	}
	if update.DisclaimerAccepted != nil {
		settings.DisclaimerAccepted = *update.DisclaimerAccepted
	}
	return forecastInputsChanged
}
