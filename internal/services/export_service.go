package services

import (
	"context"
	"strconv"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

var ExportCSVHeaders = []string{
	"Date",
	"Period start",
	"Flow",
	"Pain",
	"Mood",
	"Cervical fluid",
	"Intercourse",
	"Ovulation test",
	"BBT",
	"Notes",
}

type ExportSummary struct {
	TotalEntries int          `json:"total_entries" yaml:"total_entries"`
	HasData      bool         `json:"has_data" yaml:"has_data"`
	DateFrom     calendar.Day `json:"date_from" yaml:"date_from"`
	DateTo       calendar.Day `json:"date_to" yaml:"date_to"`
}

// ExportEntry is one calendar day that has a period start or a symptom record.
type ExportEntry struct {
	Date        calendar.Day       `json:"date" yaml:"date"`
	PeriodStart bool               `json:"period_start" yaml:"period_start"`
	Symptoms    models.DaySymptoms `json:"symptoms" yaml:"symptoms"`
}

type ExportService struct {
	snapshots SnapshotReader
}

func NewExportService(snapshots SnapshotReader) *ExportService {
	return &ExportService{snapshots: snapshots}
}

// BuildEntries merges period starts and symptom records, oldest first.
func (service *ExportService) BuildEntries(ctx context.Context, exportRange ExportRange) ([]ExportEntry, error) {
	snapshot, err := service.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildExportEntries(snapshot.PeriodStarts, snapshot.Symptoms, exportRange), nil
}

func BuildExportEntries(starts []calendar.Day, symptoms models.SymptomTimeline, exportRange ExportRange) []ExportEntry {
	startSet := make(map[calendar.Day]bool, len(starts))
	days := make([]calendar.Day, 0, len(starts)+len(symptoms))
	for _, start := range starts {
		startSet[start] = true
		days = append(days, start)
	}
	for day := range symptoms {
		days = append(days, day)
	}

	entries := make([]ExportEntry, 0, len(days))
	for _, day := range UniqueSortedDays(days) {
		if !exportRange.Contains(day) {
			continue
		}
		entry, _ := symptoms.Get(day)
		entries = append(entries, ExportEntry{
			Date:        day,
			PeriodStart: startSet[day],
			Symptoms:    entry,
		})
	}
	return entries
}

func BuildExportSummary(entries []ExportEntry) ExportSummary {
	if len(entries) == 0 {
		return ExportSummary{}
	}
	return ExportSummary{
		TotalEntries: len(entries),
		HasData:      true,
		DateFrom:     entries[0].Date,
		DateTo:       entries[len(entries)-1].Date,
	}
}

func (entry ExportEntry) Columns() []string {
	symptoms := entry.Symptoms
	return []string{
		entry.Date.Key(),
		csvYesNo(entry.PeriodStart),
		csvEnumLabel(symptoms.Flow),
		csvEnumLabel(symptoms.Pain),
		csvEnumLabel(symptoms.Mood),
		csvEnumLabel(symptoms.CervicalFluid),
		csvOptionalYesNo(symptoms.Intercourse),
		csvEnumLabel(symptoms.OvulationTest),
		csvBBT(symptoms.BBT),
		symptoms.NotesText(),
	}
}

func csvYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func csvOptionalYesNo(value *bool) string {
	if value == nil {
		return ""
	}
	return csvYesNo(*value)
}

func csvEnumLabel[T ~string](value *T) string {
	if value == nil {
		return ""
	}
	return string(*value)
}

func csvBBT(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}
