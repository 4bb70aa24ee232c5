package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecast/internal/calendar"
)

var ErrInvalidReminderTime = errors.New("invalid reminder time")

type ReminderKind string

const (
	ReminderDaily     ReminderKind = "daily"
	ReminderPredicted ReminderKind = "predicted_period"
)

// ReminderTime is a wall-clock time of day in the configured location.
type ReminderTime struct {
	Hour   int `json:"hour" yaml:"hour"`
	Minute int `json:"minute" yaml:"minute"`
}

var DefaultReminderTime = ReminderTime{Hour: 20, Minute: 30}

// NewReminderTime clamps hour to 0..23 and minute to 0..59.
func NewReminderTime(hour int, minute int) ReminderTime {
	return ReminderTime{
		Hour:   ClampInt(hour, 0, 23),
		Minute: ClampInt(minute, 0, 59),
	}
}

// ParseReminderTime reads "HH:MM". Out-of-range parts are rejected, not clamped.
func ParseReminderTime(raw string) (ReminderTime, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return ReminderTime{}, fmt.Errorf("%w: %q", ErrInvalidReminderTime, raw)
	}
	hour, hourErr := strconv.Atoi(strings.TrimSpace(hourPart))
	minute, minuteErr := strconv.Atoi(strings.TrimSpace(minutePart))
	if hourErr != nil || minuteErr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ReminderTime{}, fmt.Errorf("%w: %q", ErrInvalidReminderTime, raw)
	}
	return ReminderTime{Hour: hour, Minute: minute}, nil
}

func (t ReminderTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant of t on day in loc.
func (t ReminderTime) On(day calendar.Day, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	year, month, dayOfMonth := day.Date()
	return time.Date(year, month, dayOfMonth, t.Hour, t.Minute, 0, 0, loc)
}

// Reminder is one scheduled notification. Daily reminders repeat at Time and
// remember the last day they were delivered; predicted-period reminders fire
// once at FireAt.
type Reminder struct {
	ID              string       `json:"id" yaml:"id"`
	Kind            ReminderKind `json:"kind" yaml:"kind"`
	Time            ReminderTime `json:"time" yaml:"time"`
	FireAt          time.Time    `json:"fire_at,omitzero" yaml:"fire_at,omitempty"`
	NextPeriodStart calendar.Day `json:"next_period_start,omitzero" yaml:"next_period_start,omitempty"`
	LastSentOn      calendar.Day `json:"last_sent_on,omitzero" yaml:"last_sent_on,omitempty"`
	CreatedAt       time.Time    `json:"created_at" yaml:"created_at"`
}
