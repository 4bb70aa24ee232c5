package reminders

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

// MinimumLeadTime is how far in the future a trigger must be to be kept.
const MinimumLeadTime = time.Minute

// PlanTrigger picks when to announce a predicted period starting on
// nextStart: the evening before at reminderTime, else the start day itself,
// else tomorrow, whichever is the first at least MinimumLeadTime after now.
func PlanTrigger(nextStart calendar.Day, reminderTime models.ReminderTime, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	earliest := now.Add(MinimumLeadTime)

	trigger := reminderTime.On(nextStart.AddDays(-1), loc)
	if trigger.After(earliest) {
		return trigger
	}

	trigger = reminderTime.On(nextStart, loc)
	if trigger.After(earliest) {
		return trigger
	}

	return reminderTime.On(calendar.Today(now, loc).AddDays(1), loc)
}

// dailyDue reports whether the daily reminder should fire at now: the stored
// time has passed today and nothing was delivered today yet.
func dailyDue(reminder models.Reminder, now time.Time, loc *time.Location) bool {
	today := calendar.Today(now, loc)
	if reminder.LastSentOn.Equal(today) {
		return false
	}
	return !now.Before(reminder.Time.On(today, loc))
}
