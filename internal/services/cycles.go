package services

import (
	"math"
	"sort"

	"github.com/terraincognita07/cyclecast/internal/calendar"
)

// Cycle lengths outside this band are treated as entry mistakes and left out
// of every statistic.
const (
	MinPlausibleCycleLength = 10
	MaxPlausibleCycleLength = 90
)

type CycleLengthPoint struct {
	Index      int          `json:"index" yaml:"index"`
	Start      calendar.Day `json:"start" yaml:"start"`
	NextStart  calendar.Day `json:"next_start" yaml:"next_start"`
	LengthDays int          `json:"length_days" yaml:"length_days"`
}

type CycleHistory struct {
	// Starts is the deduplicated history, oldest first.
	Starts            []calendar.Day     `json:"starts" yaml:"starts"`
	LatestPeriodStart calendar.Day       `json:"latest_period_start" yaml:"latest_period_start"`
	Points            []CycleLengthPoint `json:"points" yaml:"points"`
	// UsedFallback is set when the history was empty and the single
	// fallback start stood in for it.
	UsedFallback bool `json:"used_fallback" yaml:"used_fallback"`
}

// BuildCycleHistory derives the current cycle start and the cycle-length
// series. The history set always wins; fallback is used only when it is empty.
// Starts after today never become the current cycle start.
func BuildCycleHistory(starts []calendar.Day, fallback calendar.Day, today calendar.Day) CycleHistory {
	history := CycleHistory{}

	ordered := UniqueSortedDays(starts)
	if len(ordered) == 0 && !fallback.IsZero() {
		ordered = []calendar.Day{fallback}
		history.UsedFallback = true
	}
	history.Starts = ordered

	for index := len(ordered) - 1; index >= 0; index-- {
		if today.IsZero() || !ordered[index].After(today) {
			history.LatestPeriodStart = ordered[index]
			break
		}
	}

	history.Points = cycleLengthPoints(ordered)
	return history
}

func (history CycleHistory) Lengths() []int {
	lengths := make([]int, 0, len(history.Points))
	for _, point := range history.Points {
		lengths = append(lengths, point.LengthDays)
	}
	return lengths
}

// Gaps returns every positive difference between consecutive starts, with
// no sanity band applied.
func (history CycleHistory) Gaps() []int {
	return ConsecutiveGaps(history.Starts)
}

func ConsecutiveGaps(oldestFirst []calendar.Day) []int {
	gaps := make([]int, 0, len(oldestFirst))
	for i := 1; i < len(oldestFirst); i++ {
		if gap := calendar.DaysBetween(oldestFirst[i-1], oldestFirst[i]); gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

func (history CycleHistory) HasStart() bool {
	return !history.LatestPeriodStart.IsZero()
}

func cycleLengthPoints(ordered []calendar.Day) []CycleLengthPoint {
	if len(ordered) < 2 {
		return nil
	}

	points := make([]CycleLengthPoint, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		length := calendar.DaysBetween(ordered[i-1], ordered[i])
		if !IsPlausibleCycleLength(length) {
			continue
		}
		points = append(points, CycleLengthPoint{
			Index:      len(points) + 1,
			Start:      ordered[i-1],
			NextStart:  ordered[i],
			LengthDays: length,
		})
	}
	return points
}

func IsPlausibleCycleLength(length int) bool {
	return length >= MinPlausibleCycleLength && length <= MaxPlausibleCycleLength
}

// UniqueSortedDays drops zero and duplicate days and sorts oldest first.
func UniqueSortedDays(days []calendar.Day) []calendar.Day {
	seen := make(map[calendar.Day]struct{}, len(days))
	unique := make([]calendar.Day, 0, len(days))
	for _, day := range days {
		if day.IsZero() {
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		unique = append(unique, day)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Before(unique[j])
	})
	return unique
}

func tailInts(values []int, n int) []int {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func averageInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var total int
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

// medianFloat keeps the half day for even-length input.
func medianFloat(values []int) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int, 0, len(values))
	sorted = append(sorted, values...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func populationStdDev(values []int, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, value := range values {
		delta := float64(value) - mean
		sum += delta * delta
	}
	return math.Sqrt(sum / float64(len(values)))
}

func minMaxInts(values []int) (int, int) {
	if len(values) == 0 {
		return 0, 0
	}
	minValue, maxValue := values[0], values[0]
	for _, value := range values[1:] {
		if value < minValue {
			minValue = value
		}
		if value > maxValue {
			maxValue = value
		}
	}
	return minValue, maxValue
}

func countWhere(values []int, predicate func(int) bool) int {
	count := 0
	for _, value := range values {
		if predicate(value) {
			count++
		}
	}
	return count
}
