package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/terraincognita07/cyclecast/internal/models"
)

type stubSnapshotReader struct {
	snapshot models.Snapshot
	err      error
}

func (reader stubSnapshotReader) LoadSnapshot(context.Context) (models.Snapshot, error) {
	return reader.snapshot, reader.err
}

func reportFixtureSnapshot(t *testing.T) models.Snapshot {
	t.Helper()

	symptoms := bleedingRun(nil, mustDay(t, "2024-01-01"), 5, models.FlowMedium)
	symptoms = bleedingRun(symptoms, mustDay(t, "2024-01-29"), 4, models.FlowLight)
	symptoms[mustDay(t, "2024-01-02")] = symptoms[mustDay(t, "2024-01-02")].Merge(models.DaySymptoms{Pain: models.Ptr(models.PainSevere)})
	symptoms[mustDay(t, "2024-01-14")] = models.DaySymptoms{OvulationTest: models.Ptr(models.OvulationTestPositive)}
	symptoms[mustDay(t, "2024-02-10")] = models.DaySymptoms{OvulationTest: models.Ptr(models.OvulationTestPositive)}
	symptoms[mustDay(t, "2024-02-12")] = models.DaySymptoms{BBT: models.Ptr(38.44)}
	symptoms[mustDay(t, "2024-02-20")] = models.DaySymptoms{Notes: models.Ptr(strings.Repeat("ש", LongNotesMinRunes))}

	return models.Snapshot{
		PeriodStarts:       mustDays(t, "2024-02-26", "2024-01-01", "2024-01-29"),
		Symptoms:           symptoms,
		ManualCycleLength:  28,
		ManualPeriodLength: 5,
		Birthday:           mustDay(t, "1994-01-01"),
		Today:              mustDay(t, "2024-03-05"),
	}
}

func TestBuildReportModel(t *testing.T) {
	t.Parallel()

	report := BuildReportModel(reportFixtureSnapshot(t))

	if !reflect.DeepEqual(report.PeriodHistory, mustDays(t, "2024-02-26", "2024-01-29", "2024-01-01")) {
		t.Fatalf("expected newest-first history, got %v", report.PeriodHistory)
	}
	if !reflect.DeepEqual(report.CycleLengths.Diffs, []int{28, 28}) {
		t.Fatalf("expected diffs [28 28], got %v", report.CycleLengths.Diffs)
	}
	if *report.CycleLengths.Average != 28 || *report.CycleLengths.Min != 28 || *report.CycleLengths.Max != 28 {
		t.Fatalf("unexpected cycle length summary: %+v", report.CycleLengths)
	}
	if !reflect.DeepEqual(report.PeriodLengths.Values, []int{5, 4}) || *report.PeriodLengths.Average != 4.5 {
		t.Fatalf("unexpected period lengths: %+v", report.PeriodLengths)
	}
	if !reflect.DeepEqual(report.PositiveOPK, mustDays(t, "2024-02-10", "2024-01-14")) {
		t.Fatalf("expected newest-first positive tests, got %v", report.PositiveOPK)
	}

	if len(report.AbnormalDays) != 3 {
		t.Fatalf("expected three abnormal days, got %+v", report.AbnormalDays)
	}
	notesDay, bbtDay, painDay := report.AbnormalDays[0], report.AbnormalDays[1], report.AbnormalDays[2]
	if notesDay.Day != mustDay(t, "2024-02-20") || !reflect.DeepEqual(notesDay.Reasons, []string{AbnormalLongNotes}) {
		t.Fatalf("unexpected notes entry: %+v", notesDay)
	}
	if bbtDay.Day != mustDay(t, "2024-02-12") || bbtDay.BBT == nil || *bbtDay.BBT != 38.4 {
		t.Fatalf("unexpected bbt entry: %+v", bbtDay)
	}
	if painDay.Day != mustDay(t, "2024-01-02") || !reflect.DeepEqual(painDay.Reasons, []string{AbnormalSeverePain}) {
		t.Fatalf("unexpected pain entry: %+v", painDay)
	}

	if report.Confidence != ConfidenceMedium || report.Regularity.IsIrregular {
		t.Fatalf("unexpected engine summary: confidence=%s regularity=%+v", report.Confidence, report.Regularity)
	}
}

func TestReportCycleLengthsKeepRawDiffs(t *testing.T) {
	t.Parallel()

	lengths := ReportCycleLengthsFrom(mustDays(t, "2024-01-01", "2024-01-06", "2024-05-05"))
	if !reflect.DeepEqual(lengths.Diffs, []int{5, 120}) {
		t.Fatalf("expected raw diffs [5 120], got %v", lengths.Diffs)
	}
	if *lengths.Average != 62.5 || *lengths.Min != 5 || *lengths.Max != 120 {
		t.Fatalf("unexpected summary: %+v", lengths)
	}

	empty := ReportCycleLengthsFrom(mustDays(t, "2024-01-01"))
	if len(empty.Diffs) != 0 || empty.Average != nil || empty.Min != nil || empty.Max != nil {
		t.Fatalf("expected empty summary, got %+v", empty)
	}
}

func TestReportPeriodLengthsClampRuns(t *testing.T) {
	t.Parallel()

	start := mustDay(t, "2024-01-01")
	symptoms := bleedingRun(nil, start, 20, models.FlowLight)

	lengths := ReportPeriodLengthsFrom(mustDays(t, "2024-01-01", "2024-03-01"), symptoms)
	if !reflect.DeepEqual(lengths.Values, []int{ReportMaxPeriodLength}) {
		t.Fatalf("expected single clamped run, got %v", lengths.Values)
	}
}

func TestReportServiceBuildReportStampsIdentity(t *testing.T) {
	t.Parallel()

	service := NewReportService(stubSnapshotReader{snapshot: reportFixtureSnapshot(t)}).
		WithClock(fixedClock("2024-03-05T09:00:00Z"))

	first, err := service.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}
	second, err := service.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	parsed, err := ulid.Parse(first.ID)
	if err != nil {
		t.Fatalf("expected ulid report id, got %q: %v", first.ID, err)
	}
	if !ulid.Time(parsed.Time()).Equal(first.GeneratedAt) {
		t.Fatalf("expected id timestamp to match generation time %s", first.GeneratedAt)
	}
	if first.ID == second.ID || first.ID >= second.ID {
		t.Fatalf("expected monotonic ids, got %s then %s", first.ID, second.ID)
	}
}

func TestReportServiceBuildReportPropagatesLoadError(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("boom")
	service := NewReportService(stubSnapshotReader{err: loadErr})
	if _, err := service.BuildReport(context.Background()); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
}
