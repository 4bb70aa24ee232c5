package services

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

type DayMark string

const (
	MarkNone      DayMark = ""
	MarkPeriod    DayMark = "period"
	MarkOvulation DayMark = "ovulation"
	MarkFertile   DayMark = "fertile"
)

type CalendarDayState struct {
	Date           calendar.Day `json:"date" yaml:"date"`
	Day            int          `json:"day" yaml:"day"`
	InMonth        bool         `json:"in_month" yaml:"in_month"`
	IsToday        bool         `json:"is_today" yaml:"is_today"`
	Mark           DayMark      `json:"mark,omitempty" yaml:"mark,omitempty"`
	IsPeriodStart  bool         `json:"is_period_start" yaml:"is_period_start"`
	LoggedBleeding bool         `json:"logged_bleeding" yaml:"logged_bleeding"`
	HasData        bool         `json:"has_data" yaml:"has_data"`
}

type CalendarGridInput struct {
	Month        calendar.Day
	Insights     Insights
	Symptoms     models.SymptomTimeline
	PeriodStarts []calendar.Day
	Today        calendar.Day
}

// MonthGrid returns the Sunday-first weeks covering month.
func MonthGrid(month calendar.Day) (calendar.Day, calendar.Day) {
	year, monthOfYear, _ := month.Date()
	monthStart := calendar.Date(year, monthOfYear, 1)
	monthEnd := monthStart.AddMonths(1).AddDays(-1)
	gridStart := monthStart.AddDays(-int(monthStart.Weekday()))
	gridEnd := monthEnd.AddDays(int(time.Saturday - monthEnd.Weekday()))
	return gridStart, gridEnd
}

// BuildCalendarDayStates marks a month grid by projecting the current cycle
// forward modulo the cycle length. Days before the current cycle start are
// not projected; recorded bleeding is reported separately.
func BuildCalendarDayStates(input CalendarGridInput) []CalendarDayState {
	gridStart, gridEnd := MonthGrid(input.Month)
	_, month, _ := input.Month.Date()

	starts := make(map[calendar.Day]bool, len(input.PeriodStarts))
	for _, start := range input.PeriodStarts {
		starts[start] = true
	}

	days := make([]CalendarDayState, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDays(1) {
		_, dayMonth, dayOfMonth := day.Date()
		entry, hasEntry := input.Symptoms.Get(day)

		days = append(days, CalendarDayState{
			Date:           day,
			Day:            dayOfMonth,
			InMonth:        dayMonth == month,
			IsToday:        day.Equal(input.Today),
			Mark:           ProjectDayMark(day, input.Insights),
			IsPeriodStart:  starts[day],
			LoggedBleeding: hasEntry && entry.IsBleeding(),
			HasData:        hasEntry && !entry.IsEmpty(),
		})
	}
	return days
}

// ProjectDayMark places day within the repeating cycle that starts on the
// latest period start.
func ProjectDayMark(day calendar.Day, insights Insights) DayMark {
	start := insights.Forecast.LatestPeriodStart
	cycleLength := insights.CycleLength
	if start.IsZero() || cycleLength <= 0 || day.Before(start) {
		return MarkNone
	}

	position := positiveMod(calendar.DaysBetween(start, day), cycleLength)
	if position < insights.PeriodLength {
		return MarkPeriod
	}

	ovulation := insights.Forecast.Ovulation
	if !ovulation.Known() {
		return MarkNone
	}
	ovulationPosition := positiveMod(calendar.DaysBetween(start, ovulation.Date), cycleLength)
	if position == ovulationPosition || day.Equal(ovulation.Date) {
		return MarkOvulation
	}

	fertileStart := max(0, ovulationPosition-FertileWindowLeadDays)
	fertileEnd := min(cycleLength-1, ovulationPosition+FertileWindowTrailDays)
	if position >= fertileStart && position <= fertileEnd {
		return MarkFertile
	}
	return MarkNone
}

func positiveMod(value int, modulus int) int {
	return ((value % modulus) + modulus) % modulus
}
