package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

type SettingsStore interface {
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
}

// PredictedPeriodResyncer recomputes the forecast and reschedules the
// predicted-period reminder.
type PredictedPeriodResyncer interface {
	ResyncPredictedPeriod(ctx context.Context) error
}

// SettingsUpdate is a patch: nil fields keep the stored value.
type SettingsUpdate struct {
	Goal               *string
	Birthday           *calendar.Day
	ManualCycleLength  *int
	PeriodLength       *int
	Mode               *string
	LegacyPeriodStart  *calendar.Day
	DisclaimerAccepted *bool
}

type SettingsService struct {
	store    SettingsStore
	resync   PredictedPeriodResyncer
	location *time.Location
	now      func() time.Time
}

func NewSettingsService(store SettingsStore, location *time.Location) *SettingsService {
	if location == nil {
		location = time.Local
	}
	return &SettingsService{
		store:    store,
		location: location,
		now:      time.Now,
	}
}

func (service *SettingsService) WithPredictedPeriodResyncer(resync PredictedPeriodResyncer) *SettingsService {
	service.resync = resync
	return service
}

func (service *SettingsService) WithClock(now func() time.Time) *SettingsService {
	if now != nil {
		service.now = now
	}
	return service
}

func (service *SettingsService) LoadSettings(ctx context.Context) (models.Settings, error) {
	settings, err := service.store.LoadSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	return settings, nil
}

// UpdateSettings validates and applies update. Changes to anything the
// forecast depends on trigger a reminder resync.
func (service *SettingsService) UpdateSettings(ctx context.Context, update SettingsUpdate) (models.Settings, error) {
	today := calendar.Today(service.now(), service.location)
	if err := service.ValidateSettingsUpdate(update, today); err != nil {
		return models.Settings{}, err
	}

	settings, err := service.LoadSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	forecastInputsChanged := service.ApplySettingsUpdate(&settings, update)

	if err := service.store.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrRecordSaveFailed, err)
	}

	if forecastInputsChanged && service.resync != nil {
		if err := service.resync.ResyncPredictedPeriod(ctx); err != nil {
			log.Printf("settings: resync predicted period reminder failed: %v", err)
		}
	}
	return settings, nil
}

// AgeYears reports the age at today derived from the stored birthday.
func (service *SettingsService) AgeYears(settings models.Settings) *int {
	return AgeInYears(settings.Birthday, calendar.Today(service.now(), service.location))
}
