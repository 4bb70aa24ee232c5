package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

var (
	ErrPeriodStartMissing  = errors.New("period start missing")
	ErrPeriodStartInFuture = errors.New("period start is in the future")
	ErrSymptomDayMissing   = errors.New("symptom day missing")
	ErrRecordLoadFailed    = errors.New("load records failed")
	ErrRecordSaveFailed    = errors.New("save records failed")
)

type RecordStore interface {
	LoadPeriodHistory(ctx context.Context) ([]calendar.Day, error)
	SavePeriodHistory(ctx context.Context, days []calendar.Day) error
	LoadSymptoms(ctx context.Context) (models.SymptomTimeline, error)
	SaveSymptoms(ctx context.Context, timeline models.SymptomTimeline) error
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
	ResetAll(ctx context.Context) error
}

// PredictedPeriodSyncer keeps the predicted-period reminder in line with the
// history. A zero nextStart cancels it.
type PredictedPeriodSyncer interface {
	SyncPredictedPeriod(ctx context.Context, nextStart calendar.Day, now time.Time) error
}

// RecordService owns every mutation of the user's records. Read-modify-write
// cycles are serialised so concurrent callers never lose an update.
type RecordService struct {
	store    RecordStore
	syncer   PredictedPeriodSyncer
	location *time.Location
	now      func() time.Time
	mu       sync.Mutex
}

func NewRecordService(store RecordStore, location *time.Location) *RecordService {
	if location == nil {
		location = time.Local
	}
	return &RecordService{
		store:    store,
		location: location,
		now:      time.Now,
	}
}

// WithPredictedPeriodSyncer registers the hook run after every period-history change.
func (service *RecordService) WithPredictedPeriodSyncer(syncer PredictedPeriodSyncer) *RecordService {
	service.syncer = syncer
	return service
}

func (service *RecordService) WithClock(now func() time.Time) *RecordService {
	if now != nil {
		service.now = now
	}
	return service
}

func (service *RecordService) Today() calendar.Day {
	return calendar.Today(service.now(), service.location)
}

// LoadSnapshot reads everything the engine needs as of today.
func (service *RecordService) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.loadSnapshotLocked(ctx)
}

func (service *RecordService) loadSnapshotLocked(ctx context.Context) (models.Snapshot, error) {
	settings, err := service.store.LoadSettings(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	starts, err := service.store.LoadPeriodHistory(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	symptoms, err := service.store.LoadSymptoms(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	return models.SnapshotFromSettings(settings, starts, symptoms, service.Today()), nil
}

// AddPeriodStart records a start. Re-adding an existing day is a no-op.
func (service *RecordService) AddPeriodStart(ctx context.Context, day calendar.Day) ([]calendar.Day, error) {
	if day.IsZero() {
		return nil, ErrPeriodStartMissing
	}
	if day.After(service.Today()) {
		return nil, ErrPeriodStartInFuture
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	history, err := service.store.LoadPeriodHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	updated := UniqueSortedDays(append(history, day))
	if err := service.savePeriodHistoryLocked(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemovePeriodStart deletes a start and reports whether it was recorded.
func (service *RecordService) RemovePeriodStart(ctx context.Context, day calendar.Day) (bool, error) {
	if day.IsZero() {
		return false, ErrPeriodStartMissing
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	history, err := service.store.LoadPeriodHistory(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}

	updated := make([]calendar.Day, 0, len(history))
	removed := false
	for _, existing := range history {
		if existing.Equal(day) {
			removed = true
			continue
		}
		updated = append(updated, existing)
	}
	if !removed {
		return false, nil
	}
	if err := service.savePeriodHistoryLocked(ctx, updated); err != nil {
		return false, err
	}
	return true, nil
}

// StartPeriodToday records today as a start and marks the period active.
func (service *RecordService) StartPeriodToday(ctx context.Context) (calendar.Day, error) {
	today := service.Today()
	if _, err := service.AddPeriodStart(ctx, today); err != nil {
		return calendar.Day{}, err
	}
	if err := service.setPeriodActive(ctx, true); err != nil {
		return calendar.Day{}, err
	}
	return today, nil
}

// EndPeriodToday only clears the active marker; the history is untouched.
func (service *RecordService) EndPeriodToday(ctx context.Context) error {
	return service.setPeriodActive(ctx, false)
}

func (service *RecordService) setPeriodActive(ctx context.Context, active bool) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	settings, err := service.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	settings.PeriodActive = active
	if err := service.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordSaveFailed, err)
	}
	return nil
}

// SetSymptoms merges patch into the record of day and returns the result.
func (service *RecordService) SetSymptoms(ctx context.Context, day calendar.Day, patch models.DaySymptoms) (models.DaySymptoms, error) {
	if day.IsZero() {
		return models.DaySymptoms{}, ErrSymptomDayMissing
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	timeline, err := service.store.LoadSymptoms(ctx)
	if err != nil {
		return models.DaySymptoms{}, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	if timeline == nil {
		timeline = make(models.SymptomTimeline)
	}

	existing, _ := timeline.Get(day)
	merged := existing.Merge(patch)
	timeline[day] = merged
	if err := service.store.SaveSymptoms(ctx, timeline); err != nil {
		return models.DaySymptoms{}, fmt.Errorf("%w: %v", ErrRecordSaveFailed, err)
	}
	return merged, nil
}

// ClearSymptoms removes the whole record of day.
func (service *RecordService) ClearSymptoms(ctx context.Context, day calendar.Day) (bool, error) {
	if day.IsZero() {
		return false, ErrSymptomDayMissing
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	timeline, err := service.store.LoadSymptoms(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRecordLoadFailed, err)
	}
	if _, ok := timeline.Get(day); !ok {
		return false, nil
	}
	delete(timeline, day)
	if err := service.store.SaveSymptoms(ctx, timeline); err != nil {
		return false, fmt.Errorf("%w: %v", ErrRecordSaveFailed, err)
	}
	return true, nil
}

// ResetAll wipes every record and cancels the predicted-period reminder.
func (service *RecordService) ResetAll(ctx context.Context) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.store.ResetAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordSaveFailed, err)
	}
	service.syncPredictedPeriodLocked(ctx, calendar.Day{})
	return nil
}

// ResyncPredictedPeriod recomputes the forecast and hands the next start to
// the registered syncer.
func (service *RecordService) ResyncPredictedPeriod(ctx context.Context) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	snapshot, err := service.loadSnapshotLocked(ctx)
	if err != nil {
		return err
	}
	service.syncPredictedPeriodLocked(ctx, ComputeInsights(snapshot).Forecast.NextPeriodStart)
	return nil
}

func (service *RecordService) savePeriodHistoryLocked(ctx context.Context, days []calendar.Day) error {
	if err := service.store.SavePeriodHistory(ctx, days); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordSaveFailed, err)
	}
	if service.syncer == nil {
		return nil
	}

	snapshot, err := service.loadSnapshotLocked(ctx)
	if err != nil {
		log.Printf("records: load snapshot for reminder sync failed: %v", err)
		return nil
	}
	service.syncPredictedPeriodLocked(ctx, ComputeInsights(snapshot).Forecast.NextPeriodStart)
	return nil
}

// Reminder failures never fail the record mutation.
func (service *RecordService) syncPredictedPeriodLocked(ctx context.Context, nextStart calendar.Day) {
	if service.syncer == nil {
		return
	}
	if err := service.syncer.SyncPredictedPeriod(ctx, nextStart, service.now()); err != nil {
		log.Printf("records: sync predicted period reminder failed: %v", err)
	}
}
