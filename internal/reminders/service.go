package reminders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

var ErrNotifierMissing = errors.New("reminder notifier missing")

type Store interface {
	LoadReminderTime(ctx context.Context) (models.ReminderTime, error)
	SaveReminderTime(ctx context.Context, reminderTime models.ReminderTime) error
	LoadPredictedEnabled(ctx context.Context) (bool, error)
	SavePredictedEnabled(ctx context.Context, enabled bool) error
	LoadScheduled(ctx context.Context, kind models.ReminderKind) (models.Reminder, bool, error)
	SaveScheduled(ctx context.Context, reminder models.Reminder) error
	DeleteScheduled(ctx context.Context, kind models.ReminderKind) error
}

// Observer is told about every delivery attempt.
type Observer interface {
	ObserveReminder(kind string, err error)
}

// Translator renders message catalogue keys.
type Translator interface {
	Translate(key string, args ...any) string
}

// Service schedules the daily check-in and predicted-period reminders and
// delivers the ones that are due.
type Service struct {
	store      Store
	notifier   Notifier
	observer   Observer
	translator Translator
	location   *time.Location
	mu         sync.Mutex
}

func NewService(store Store, notifier Notifier, location *time.Location) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		store:    store,
		notifier: notifier,
		location: location,
	}
}

func (service *Service) WithObserver(observer Observer) *Service {
	service.observer = observer
	return service
}

func (service *Service) WithTranslator(translator Translator) *Service {
	service.translator = translator
	return service
}

func (service *Service) ReminderTime(ctx context.Context) (models.ReminderTime, error) {
	return service.store.LoadReminderTime(ctx)
}

// SetReminderTime stores the time used by both reminders. An already
// scheduled daily reminder moves to the new time.
func (service *Service) SetReminderTime(ctx context.Context, reminderTime models.ReminderTime) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.store.SaveReminderTime(ctx, reminderTime); err != nil {
		return err
	}
	daily, found, err := service.store.LoadScheduled(ctx, models.ReminderDaily)
	if err != nil || !found {
		return err
	}
	daily.Time = reminderTime
	return service.store.SaveScheduled(ctx, daily)
}

// ScheduleDaily replaces any daily reminder with a new one at reminderTime.
func (service *Service) ScheduleDaily(ctx context.Context, reminderTime models.ReminderTime, now time.Time) (models.Reminder, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.store.SaveReminderTime(ctx, reminderTime); err != nil {
		return models.Reminder{}, err
	}
	reminder := models.Reminder{
		ID:        uuid.NewString(),
		Kind:      models.ReminderDaily,
		Time:      reminderTime,
		CreatedAt: now.UTC(),
	}
	// A check-in scheduled after today's time should not fire until tomorrow.
	today := calendar.Today(now, service.location)
	if !now.Before(reminderTime.On(today, service.location)) {
		reminder.LastSentOn = today
	}
	if err := service.store.SaveScheduled(ctx, reminder); err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

func (service *Service) CancelDaily(ctx context.Context) error {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.store.DeleteScheduled(ctx, models.ReminderDaily)
}

func (service *Service) PredictedEnabled(ctx context.Context) (bool, error) {
	return service.store.LoadPredictedEnabled(ctx)
}

// SetPredictedEnabled stores the preference. Disabling cancels the pending
// reminder; enabling takes effect on the next SyncPredictedPeriod.
func (service *Service) SetPredictedEnabled(ctx context.Context, enabled bool) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.store.SavePredictedEnabled(ctx, enabled); err != nil {
		return err
	}
	if enabled {
		return nil
	}
	return service.store.DeleteScheduled(ctx, models.ReminderPredicted)
}

// SyncPredictedPeriod replaces the predicted-period reminder with one for
// nextStart. A zero nextStart or a disabled preference only cancels.
func (service *Service) SyncPredictedPeriod(ctx context.Context, nextStart calendar.Day, now time.Time) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.store.DeleteScheduled(ctx, models.ReminderPredicted); err != nil {
		return err
	}
	if nextStart.IsZero() {
		return nil
	}

	enabled, err := service.store.LoadPredictedEnabled(ctx)
	if err != nil || !enabled {
		return err
	}
	reminderTime, err := service.store.LoadReminderTime(ctx)
	if err != nil {
		return err
	}

	return service.store.SaveScheduled(ctx, models.Reminder{
		ID:              uuid.NewString(),
		Kind:            models.ReminderPredicted,
		Time:            reminderTime,
		FireAt:          PlanTrigger(nextStart, reminderTime, now, service.location),
		NextPeriodStart: nextStart,
		CreatedAt:       now.UTC(),
	})
}

// Pending lists the scheduled reminders, daily first.
func (service *Service) Pending(ctx context.Context) ([]models.Reminder, error) {
	pending := make([]models.Reminder, 0, 2)
	for _, kind := range []models.ReminderKind{models.ReminderDaily, models.ReminderPredicted} {
		reminder, found, err := service.store.LoadScheduled(ctx, kind)
		if err != nil {
			return nil, err
		}
		if found {
			pending = append(pending, reminder)
		}
	}
	return pending, nil
}

// DispatchDue delivers every reminder due at now and returns how many were
// sent. A failed delivery stays scheduled and is retried on the next call.
func (service *Service) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	if service.notifier == nil {
		return 0, ErrNotifierMissing
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	sent := 0
	var errs []error

	daily, found, err := service.store.LoadScheduled(ctx, models.ReminderDaily)
	if err != nil {
		return 0, err
	}
	if found && dailyDue(daily, now, service.location) {
		if err := service.deliver(ctx, daily); err != nil {
			errs = append(errs, err)
		} else {
			daily.LastSentOn = calendar.Today(now, service.location)
			if err := service.store.SaveScheduled(ctx, daily); err != nil {
				errs = append(errs, err)
			}
			sent++
		}
	}

	predicted, found, err := service.store.LoadScheduled(ctx, models.ReminderPredicted)
	if err != nil {
		return sent, err
	}
	if found && !now.Before(predicted.FireAt) {
		if err := service.deliver(ctx, predicted); err != nil {
			errs = append(errs, err)
		} else {
			if err := service.store.DeleteScheduled(ctx, models.ReminderPredicted); err != nil {
				errs = append(errs, err)
			}
			sent++
		}
	}

	return sent, errors.Join(errs...)
}

// Run dispatches due reminders every interval until ctx is cancelled.
func (service *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := service.DispatchDue(ctx, time.Now()); err != nil {
			log.Printf("reminders: dispatch failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (service *Service) deliver(ctx context.Context, reminder models.Reminder) error {
	err := service.notifier.Notify(ctx, service.message(reminder))
	if service.observer != nil {
		service.observer.ObserveReminder(string(reminder.Kind), err)
	}
	if err != nil {
		return fmt.Errorf("send %s reminder: %w", reminder.Kind, err)
	}
	return nil
}

func (service *Service) message(reminder models.Reminder) Message {
	message := Message{Kind: string(reminder.Kind)}
	if service.translator == nil {
		message.Title, message.Body = defaultMessageText(reminder.Kind)
		return message
	}

	if reminder.Kind == models.ReminderPredicted {
		message.Title = service.translator.Translate("reminder.predicted.title")
		message.Body = service.translator.Translate("reminder.predicted.body", reminder.NextPeriodStart.Key())
		return message
	}
	message.Title = service.translator.Translate("reminder.daily.title")
	message.Body = service.translator.Translate("reminder.daily.body")
	return message
}

func defaultMessageText(kind models.ReminderKind) (string, string) {
	if kind == models.ReminderPredicted {
		return "Period expected soon",
			"Based on your entries your period may start tomorrow. Want to log symptoms or get ready?"
	}
	return "Daily reminder", "Log today's symptoms and notes to keep your tracking accurate."
}
