package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

// ErrStoredValueUnreadable marks a stored list or map that is not valid JSON
// of the expected shape. Saving refuses to overwrite it.
var ErrStoredValueUnreadable = errors.New("stored value unreadable")

// Storage keys. Values are plain strings; lists and maps are JSON.
const (
	KeyGoal               = "goal"
	KeyBirthday           = "birthday"
	KeyPeriodStart        = "periodStart"
	KeyPeriodHistory      = "periodHistory"
	KeyPeriodLength       = "periodLength"
	KeyCycleLengthManual  = "cycleLengthManual"
	KeyPeriodActive       = "isPeriodActive"
	KeySymptomsByDay      = "symptomsByDay"
	KeyDisclaimerAccepted = "disclaimerAccepted"
	KeyPhysioMode         = "physioMode"

	KeyDailyReminderTime        = "reminder.daily.time"
	KeyDailyReminder            = "reminder.daily.scheduled"
	KeyPredictedReminderEnabled = "reminder.predicted.enabled"
	KeyPredictedReminder        = "reminder.predicted.scheduled"
)

var userDataKeys = []string{
	KeyGoal,
	KeyBirthday,
	KeyPeriodStart,
	KeyPeriodHistory,
	KeyPeriodLength,
	KeyCycleLengthManual,
	KeyPeriodActive,
	KeySymptomsByDay,
	KeyDisclaimerAccepted,
	KeyPhysioMode,
}

var reminderKeys = []string{
	KeyDailyReminderTime,
	KeyDailyReminder,
	KeyPredictedReminderEnabled,
	KeyPredictedReminder,
}

var settingsKeys = []string{
	KeyGoal,
	KeyBirthday,
	KeyPeriodStart,
	KeyPeriodLength,
	KeyCycleLengthManual,
	KeyPeriodActive,
	KeyDisclaimerAccepted,
	KeyPhysioMode,
}

// UserDataRepository maps the single user's records onto the key-value store.
// Day values are written as YYYY-MM-DD keys; older ISO timestamps are read in
// location.
type UserDataRepository struct {
	kv       *KVRepository
	location *time.Location
}

func NewUserDataRepository(kv *KVRepository, location *time.Location) *UserDataRepository {
	if location == nil {
		location = time.Local
	}
	return &UserDataRepository{kv: kv, location: location}
}

// LoadPeriodHistory returns the recorded starts oldest first. Entries that do
// not parse are dropped.
func (repo *UserDataRepository) LoadPeriodHistory(ctx context.Context) ([]calendar.Day, error) {
	raw, found, err := repo.kv.Get(ctx, KeyPeriodHistory)
	if err != nil {
		return nil, fmt.Errorf("load period history: %w", err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return []calendar.Day{}, nil
	}

	stored := make([]json.RawMessage, 0)
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("db: discard malformed period history: %v", err)
		return []calendar.Day{}, nil
	}

	seen := make(map[calendar.Day]struct{}, len(stored))
	days := make([]calendar.Day, 0, len(stored))
	for _, value := range stored {
		day, err := repo.decodeStoredDay(value)
		if err != nil {
			log.Printf("db: discard period start %s: %v", value, err)
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days, nil
}

// SavePeriodHistory stores the set newest first and keeps the single
// periodStart key pointing at the newest entry. Stored entries that could not
// be read are carried over unchanged after the readable ones.
func (repo *UserDataRepository) SavePeriodHistory(ctx context.Context, days []calendar.Day) error {
	unreadable, err := repo.unreadablePeriodStarts(ctx)
	if err != nil {
		return fmt.Errorf("save period history: %w", err)
	}

	ordered := make([]calendar.Day, 0, len(days))
	seen := make(map[calendar.Day]struct{}, len(days))
	for _, day := range days {
		if day.IsZero() {
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].After(ordered[j])
	})

	values := make([]json.RawMessage, 0, len(ordered)+len(unreadable))
	for _, day := range ordered {
		values = append(values, json.RawMessage(strconv.Quote(day.Key())))
	}
	values = append(values, unreadable...)
	encoded, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode period history: %w", err)
	}

	set := map[string]string{KeyPeriodHistory: string(encoded)}
	remove := make([]string, 0, 1)
	if len(ordered) > 0 {
		set[KeyPeriodStart] = ordered[0].Key()
	} else {
		remove = append(remove, KeyPeriodStart)
	}

	if err := repo.kv.Update(ctx, set, remove); err != nil {
		return fmt.Errorf("save period history: %w", err)
	}
	return nil
}

func (repo *UserDataRepository) unreadablePeriodStarts(ctx context.Context) ([]json.RawMessage, error) {
	raw, found, err := repo.kv.Get(ctx, KeyPeriodHistory)
	if err != nil {
		return nil, err
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	stored := make([]json.RawMessage, 0)
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoredValueUnreadable, KeyPeriodHistory, err)
	}
	unreadable := make([]json.RawMessage, 0)
	for _, value := range stored {
		if _, err := repo.decodeStoredDay(value); err != nil {
			unreadable = append(unreadable, value)
		}
	}
	return unreadable, nil
}

func (repo *UserDataRepository) decodeStoredDay(value json.RawMessage) (calendar.Day, error) {
	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return calendar.Day{}, err
	}
	return calendar.ParseDayLoose(text, repo.location)
}

// LoadSymptoms returns the day-keyed symptom records. Records under keys that
// do not parse are dropped, and so are single fields that do not decode; the
// rest of the day is kept.
func (repo *UserDataRepository) LoadSymptoms(ctx context.Context) (models.SymptomTimeline, error) {
	timeline := make(models.SymptomTimeline)
	stored, err := repo.loadStoredSymptoms(ctx)
	if err != nil {
		if errors.Is(err, ErrStoredValueUnreadable) {
			log.Printf("db: discard malformed symptom records: %v", err)
			return timeline, nil
		}
		return nil, fmt.Errorf("load symptoms: %w", err)
	}

	for key, value := range stored {
		day, err := calendar.ParseDayLoose(key, repo.location)
		if err != nil {
			log.Printf("db: discard symptoms for %q: %v", key, err)
			continue
		}
		record, err := decodeSymptomRecord(value)
		if err != nil {
			log.Printf("db: discard symptoms for %q: %v", key, err)
			continue
		}
		for name := range record.unreadable {
			log.Printf("db: skip unreadable symptom field %q for %q", name, key)
		}
		entry := record.entry
		if existing, ok := timeline[day]; ok {
			entry = existing.Merge(entry)
		}
		timeline[day] = entry
	}
	return timeline, nil
}

// SaveSymptoms writes the timeline back. Days missing from timeline are
// removed, except stored records the loader could not read, which are kept
// as they are. Fields that could not be read stay on their day unless the new
// record sets them.
func (repo *UserDataRepository) SaveSymptoms(ctx context.Context, timeline models.SymptomTimeline) error {
	previous, err := repo.loadStoredSymptoms(ctx)
	if err != nil {
		return fmt.Errorf("save symptoms: %w", err)
	}

	kept := make(map[calendar.Day]map[string]json.RawMessage)
	stored := make(map[string]json.RawMessage, len(timeline))
	for key, value := range previous {
		day, err := calendar.ParseDayLoose(key, repo.location)
		if err != nil {
			stored[key] = value
			continue
		}
		record, err := decodeSymptomRecord(value)
		if err != nil {
			stored[key] = value
			continue
		}
		if _, ok := timeline[day]; !ok || len(record.unreadable) == 0 {
			continue
		}
		if kept[day] == nil {
			kept[day] = make(map[string]json.RawMessage, len(record.unreadable))
		}
		for name, field := range record.unreadable {
			kept[day][name] = field
		}
	}

	for day, entry := range timeline {
		if day.IsZero() {
			continue
		}
		fields, err := encodeSymptomFields(entry)
		if err != nil {
			return fmt.Errorf("encode symptoms: %w", err)
		}
		for name, field := range kept[day] {
			if _, ok := fields[name]; !ok {
				fields[name] = field
			}
		}
		if len(fields) == 0 {
			continue
		}
		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encode symptoms: %w", err)
		}
		stored[day.Key()] = encoded
	}

	encoded, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode symptoms: %w", err)
	}
	if err := repo.kv.Set(ctx, KeySymptomsByDay, string(encoded)); err != nil {
		return fmt.Errorf("save symptoms: %w", err)
	}
	return nil
}

func (repo *UserDataRepository) loadStoredSymptoms(ctx context.Context) (map[string]json.RawMessage, error) {
	raw, found, err := repo.kv.Get(ctx, KeySymptomsByDay)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]json.RawMessage)
	if !found || strings.TrimSpace(raw) == "" {
		return stored, nil
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoredValueUnreadable, KeySymptomsByDay, err)
	}
	return stored, nil
}

type symptomRecord struct {
	entry      models.DaySymptoms
	unreadable map[string]json.RawMessage
}

// decodeSymptomRecord reads a stored day field by field. Fields that fail to
// decode, or that no DaySymptoms field claims, end up in unreadable.
func decodeSymptomRecord(value json.RawMessage) (symptomRecord, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(value, &fields); err != nil {
		return symptomRecord{}, err
	}

	record := symptomRecord{}
	for name, field := range fields {
		if string(field) == "null" {
			continue
		}
		single, err := json.Marshal(map[string]json.RawMessage{name: field})
		if err != nil {
			return symptomRecord{}, err
		}
		var decoded models.DaySymptoms
		if err := json.Unmarshal(single, &decoded); err != nil || decoded.IsEmpty() {
			if record.unreadable == nil {
				record.unreadable = make(map[string]json.RawMessage)
			}
			record.unreadable[name] = field
			continue
		}
		record.entry = record.entry.Merge(decoded)
	}
	return record, nil
}

func encodeSymptomFields(entry models.DaySymptoms) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// LoadSettings starts from the defaults and applies whatever is stored.
// Out-of-range numbers are clamped; unreadable values keep the default.
func (repo *UserDataRepository) LoadSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	values, err := repo.kv.GetMany(ctx, settingsKeys...)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}

	settings.Goal = values[KeyGoal]
	if raw, ok := values[KeyBirthday]; ok {
		settings.Birthday = repo.parseStoredDay(KeyBirthday, raw)
	}
	if raw, ok := values[KeyPeriodStart]; ok {
		settings.LegacyPeriodStart = repo.parseStoredDay(KeyPeriodStart, raw)
	}
	if value, ok := parseStoredInt(values[KeyCycleLengthManual]); ok && value > 0 {
		settings.ManualCycleLength = models.ClampManualCycleLength(value)
	}
	if value, ok := parseStoredInt(values[KeyPeriodLength]); ok && value > 0 {
		settings.PeriodLength = models.ClampPeriodLength(value)
	}
	if raw, ok := values[KeyPhysioMode]; ok {
		mode, err := models.ParsePhysiologicalMode(raw)
		if err != nil {
			log.Printf("db: unknown physiological mode %q, using regular", raw)
			mode = models.ModeRegular
		}
		settings.Mode = mode
	}
	settings.PeriodActive = values[KeyPeriodActive] == "true"
	settings.DisclaimerAccepted = values[KeyDisclaimerAccepted] == "true"

	return settings, nil
}

// SaveSettings writes every settings key. The legacy period start is left to
// SavePeriodHistory once a history exists.
func (repo *UserDataRepository) SaveSettings(ctx context.Context, settings models.Settings) error {
	set := map[string]string{
		KeyCycleLengthManual:  strconv.Itoa(models.ClampManualCycleLength(settings.ManualCycleLength)),
		KeyPeriodLength:       strconv.Itoa(models.ClampPeriodLength(settings.PeriodLength)),
		KeyPhysioMode:         string(settings.Mode.Normalize()),
		KeyPeriodActive:       strconv.FormatBool(settings.PeriodActive),
		KeyDisclaimerAccepted: strconv.FormatBool(settings.DisclaimerAccepted),
	}
	remove := make([]string, 0, 3)

	if goal := strings.TrimSpace(settings.Goal); goal != "" {
		set[KeyGoal] = goal
	} else {
		remove = append(remove, KeyGoal)
	}
	if !settings.Birthday.IsZero() {
		set[KeyBirthday] = settings.Birthday.Key()
	} else {
		remove = append(remove, KeyBirthday)
	}
	if !settings.LegacyPeriodStart.IsZero() {
		set[KeyPeriodStart] = settings.LegacyPeriodStart.Key()
	} else {
		remove = append(remove, KeyPeriodStart)
	}

	if err := repo.kv.Update(ctx, set, remove); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ResetAll removes every user record and all reminder state.
func (repo *UserDataRepository) ResetAll(ctx context.Context) error {
	keys := make([]string, 0, len(userDataKeys)+len(reminderKeys))
	keys = append(keys, userDataKeys...)
	keys = append(keys, reminderKeys...)
	if err := repo.kv.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("reset user data: %w", err)
	}
	return nil
}

// Import copies the known keys of a raw key-value dump, such as a backup of
// the mobile app's storage. Values are validated on the next load.
func (repo *UserDataRepository) Import(ctx context.Context, dump map[string]string) (int, error) {
	set := make(map[string]string, len(dump))
	for _, key := range userDataKeys {
		if value, ok := dump[key]; ok {
			set[key] = value
		}
	}
	if err := repo.kv.SetMany(ctx, set); err != nil {
		return 0, fmt.Errorf("import user data: %w", err)
	}
	return len(set), nil
}

func (repo *UserDataRepository) parseStoredDay(key string, raw string) calendar.Day {
	if strings.TrimSpace(raw) == "" {
		return calendar.Day{}
	}
	day, err := calendar.ParseDayLoose(raw, repo.location)
	if err != nil {
		log.Printf("db: discard %s %q: %v", key, raw, err)
		return calendar.Day{}
	}
	return day
}

func parseStoredInt(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return value, true
}
