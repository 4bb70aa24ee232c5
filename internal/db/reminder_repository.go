package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/terraincognita07/cyclecast/internal/models"
)

// ReminderRepository stores reminder preferences and the currently scheduled
// reminder of each kind.
type ReminderRepository struct {
	kv *KVRepository
}

func NewReminderRepository(kv *KVRepository) *ReminderRepository {
	return &ReminderRepository{kv: kv}
}

func (repo *ReminderRepository) LoadReminderTime(ctx context.Context) (models.ReminderTime, error) {
	raw, ok, err := repo.kv.Get(ctx, KeyDailyReminderTime)
	if err != nil {
		return models.ReminderTime{}, fmt.Errorf("load reminder time: %w", err)
	}
	if !ok {
		return models.DefaultReminderTime, nil
	}
	parsed, err := models.ParseReminderTime(raw)
	if err != nil {
		log.Printf("db: discard %s %q: %v", KeyDailyReminderTime, raw, err)
		return models.DefaultReminderTime, nil
	}
	return parsed, nil
}

func (repo *ReminderRepository) SaveReminderTime(ctx context.Context, reminderTime models.ReminderTime) error {
	if err := repo.kv.Set(ctx, KeyDailyReminderTime, reminderTime.String()); err != nil {
		return fmt.Errorf("save reminder time: %w", err)
	}
	return nil
}

// LoadPredictedEnabled is false unless explicitly enabled.
func (repo *ReminderRepository) LoadPredictedEnabled(ctx context.Context) (bool, error) {
	raw, ok, err := repo.kv.Get(ctx, KeyPredictedReminderEnabled)
	if err != nil {
		return false, fmt.Errorf("load predicted reminder flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return enabled, nil
}

func (repo *ReminderRepository) SavePredictedEnabled(ctx context.Context, enabled bool) error {
	if err := repo.kv.Set(ctx, KeyPredictedReminderEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("save predicted reminder flag: %w", err)
	}
	return nil
}

func (repo *ReminderRepository) LoadScheduled(ctx context.Context, kind models.ReminderKind) (models.Reminder, bool, error) {
	key := scheduledReminderKey(kind)
	raw, ok, err := repo.kv.Get(ctx, key)
	if err != nil {
		return models.Reminder{}, false, fmt.Errorf("load %s reminder: %w", kind, err)
	}
	if !ok {
		return models.Reminder{}, false, nil
	}

	reminder := models.Reminder{}
	if err := json.Unmarshal([]byte(raw), &reminder); err != nil {
		log.Printf("db: discard %s: %v", key, err)
		return models.Reminder{}, false, nil
	}
	reminder.Kind = kind
	return reminder, true, nil
}

func (repo *ReminderRepository) SaveScheduled(ctx context.Context, reminder models.Reminder) error {
	encoded, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("encode %s reminder: %w", reminder.Kind, err)
	}
	if err := repo.kv.Set(ctx, scheduledReminderKey(reminder.Kind), string(encoded)); err != nil {
		return fmt.Errorf("save %s reminder: %w", reminder.Kind, err)
	}
	return nil
}

func (repo *ReminderRepository) DeleteScheduled(ctx context.Context, kind models.ReminderKind) error {
	if err := repo.kv.Delete(ctx, scheduledReminderKey(kind)); err != nil {
		return fmt.Errorf("delete %s reminder: %w", kind, err)
	}
	return nil
}

func scheduledReminderKey(kind models.ReminderKind) string {
	if kind == models.ReminderDaily {
		return KeyDailyReminder
	}
	return KeyPredictedReminder
}
