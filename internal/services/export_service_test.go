package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func TestBuildExportEntriesMergesStartsAndSymptoms(t *testing.T) {
	t.Parallel()

	symptoms := models.SymptomTimeline{
		mustDay(t, "2024-01-02"): {Flow: models.Ptr(models.FlowHeavy)},
		mustDay(t, "2024-01-14"): {OvulationTest: models.Ptr(models.OvulationTestPositive)},
		mustDay(t, "2024-02-10"): {Mood: models.Ptr(models.MoodAnxious)},
	}
	starts := mustDays(t, "2024-01-29", "2024-01-01")

	entries := BuildExportEntries(starts, symptoms, ExportRange{})
	gotDays := make([]calendar.Day, 0, len(entries))
	for _, entry := range entries {
		gotDays = append(gotDays, entry.Date)
	}
	wantDays := mustDays(t, "2024-01-01", "2024-01-02", "2024-01-14", "2024-01-29", "2024-02-10")
	if !reflect.DeepEqual(gotDays, wantDays) {
		t.Fatalf("expected days %v, got %v", wantDays, gotDays)
	}
	if !entries[0].PeriodStart || entries[1].PeriodStart || !entries[3].PeriodStart {
		t.Fatalf("unexpected period start markers: %+v", entries)
	}

	summary := BuildExportSummary(entries)
	if summary.TotalEntries != 5 || !summary.HasData || summary.DateFrom != wantDays[0] || summary.DateTo != wantDays[4] {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestBuildExportEntriesHonorsRange(t *testing.T) {
	t.Parallel()

	symptoms := models.SymptomTimeline{
		mustDay(t, "2024-01-02"): {Flow: models.Ptr(models.FlowHeavy)},
		mustDay(t, "2024-02-10"): {Mood: models.Ptr(models.MoodAnxious)},
	}
	exportRange := ExportRange{From: mustDay(t, "2024-01-10"), To: mustDay(t, "2024-01-31")}

	entries := BuildExportEntries(mustDays(t, "2024-01-01", "2024-01-29"), symptoms, exportRange)
	if len(entries) != 1 || entries[0].Date != mustDay(t, "2024-01-29") {
		t.Fatalf("expected only 2024-01-29 in range, got %+v", entries)
	}

	if summary := BuildExportSummary(nil); summary.HasData || summary.TotalEntries != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestExportEntryColumns(t *testing.T) {
	t.Parallel()

	entry := ExportEntry{
		Date:        mustDay(t, "2024-01-02"),
		PeriodStart: true,
		Symptoms: models.DaySymptoms{
			Flow:          models.Ptr(models.FlowHeavy),
			CervicalFluid: models.Ptr(models.CervicalFluidEggWhite),
			Intercourse:   models.Ptr(false),
			BBT:           models.Ptr(36.55),
			Notes:         models.Ptr("tired"),
		},
	}

	want := []string{"2024-01-02", "Yes", "heavy", "", "", "eggwhite", "No", "", "36.55", "tired"}
	got := entry.Columns()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected columns %q, got %q", want, got)
	}
	if len(got) != len(ExportCSVHeaders) {
		t.Fatalf("expected %d columns to match headers, got %d", len(ExportCSVHeaders), len(got))
	}
}

func TestExportServiceBuildEntries(t *testing.T) {
	t.Parallel()

	service := NewExportService(stubSnapshotReader{snapshot: models.Snapshot{
		PeriodStarts: mustDays(t, "2024-01-01"),
	}})
	entries, err := service.BuildEntries(context.Background(), ExportRange{})
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry, got %v (err=%v)", entries, err)
	}

	loadErr := errors.New("locked")
	failing := NewExportService(stubSnapshotReader{err: loadErr})
	if _, err := failing.BuildEntries(context.Background(), ExportRange{}); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestParseExportRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		from     string
		to       string
		wantErr  error
		wantFrom string
		wantTo   string
	}{
		{name: "open range"},
		{name: "both bounds", from: "2024-01-01", to: " 2024-01-31 ", wantFrom: "2024-01-01", wantTo: "2024-01-31"},
		{name: "same day", from: "2024-01-01", to: "2024-01-01", wantFrom: "2024-01-01", wantTo: "2024-01-01"},
		{name: "invalid from", from: "01/01/2024", wantErr: ErrExportFromDateInvalid},
		{name: "invalid to", to: "2024-02-30", wantErr: ErrExportToDateInvalid},
		{name: "reversed", from: "2024-02-01", to: "2024-01-01", wantErr: ErrExportRangeInvalid},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			exportRange, err := ParseExportRange(testCase.from, testCase.to)
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					t.Fatalf("expected %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if exportRange.From.Key() != testCase.wantFrom {
				t.Fatalf("expected from %q, got %s", testCase.wantFrom, exportRange.From)
			}
			if exportRange.To.Key() != testCase.wantTo {
				t.Fatalf("expected to %q, got %s", testCase.wantTo, exportRange.To)
			}
		})
	}
}
