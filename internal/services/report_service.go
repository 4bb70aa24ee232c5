package services

import (
	"context"
	"crypto/rand"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
)

// Report thresholds.
const (
	ReportPeriodRunLimit    = 15
	ReportMinPeriodLength   = 1
	ReportMaxPeriodLength   = 12
	AbnormalBBTBelow        = 35.0
	AbnormalBBTAbove        = 38.0
	LongNotesMinRunes       = 120
	reportRoundingPrecision = 10
)

const (
	AbnormalSeverePain = "severe_pain"
	AbnormalBBT        = "abnormal_bbt"
	AbnormalLongNotes  = "long_notes"
)

type ReportCycleLengths struct {
	Diffs   []int    `json:"diffs" yaml:"diffs"`
	Average *float64 `json:"avg" yaml:"avg"`
	Min     *int     `json:"min" yaml:"min"`
	Max     *int     `json:"max" yaml:"max"`
}

type ReportPeriodLengths struct {
	Values  []int    `json:"values" yaml:"values"`
	Average *float64 `json:"avg" yaml:"avg"`
}

type ReportAbnormalDay struct {
	Day     calendar.Day `json:"day" yaml:"day"`
	Reasons []string     `json:"reasons" yaml:"reasons"`
	BBT     *float64     `json:"bbt,omitempty" yaml:"bbt,omitempty"`
}

// Report is the clinician-facing summary of the recorded history.
type Report struct {
	ID            string                   `json:"id" yaml:"id"`
	GeneratedAt   time.Time                `json:"generated_at" yaml:"generated_at"`
	Today         calendar.Day             `json:"today" yaml:"today"`
	PeriodHistory []calendar.Day           `json:"period_history" yaml:"period_history"`
	CycleLengths  ReportCycleLengths       `json:"cycle_lengths" yaml:"cycle_lengths"`
	PeriodLengths ReportPeriodLengths      `json:"period_lengths" yaml:"period_lengths"`
	PositiveOPK   []calendar.Day           `json:"positive_opk" yaml:"positive_opk"`
	AbnormalDays  []ReportAbnormalDay      `json:"abnormal_days" yaml:"abnormal_days"`
	Mode          models.PhysiologicalMode `json:"mode" yaml:"mode"`
	Regularity    Regularity               `json:"regularity" yaml:"regularity"`
	Confidence    Confidence               `json:"confidence" yaml:"confidence"`
	Flags         []ClinicalFlag           `json:"flags" yaml:"flags"`
}

type ReportService struct {
	snapshots SnapshotReader
	now       func() time.Time
	entropy   io.Reader
}

func NewReportService(snapshots SnapshotReader) *ReportService {
	return &ReportService{
		snapshots: snapshots,
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

func (service *ReportService) WithClock(now func() time.Time) *ReportService {
	if now != nil {
		service.now = now
	}
	return service
}

func (service *ReportService) BuildReport(ctx context.Context) (Report, error) {
	snapshot, err := service.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return Report{}, err
	}

	generatedAt := service.now()
	id, err := ulid.New(ulid.Timestamp(generatedAt), service.entropy)
	if err != nil {
		return Report{}, err
	}

	report := BuildReportModel(snapshot)
	report.ID = id.String()
	report.GeneratedAt = generatedAt.UTC()
	return report, nil
}

// BuildReportModel derives every report section from a snapshot.
func BuildReportModel(snapshot models.Snapshot) Report {
	insights := ComputeInsights(snapshot)
	history := UniqueSortedDays(snapshot.PeriodStarts)

	newestFirst := make([]calendar.Day, len(history))
	for i, day := range history {
		newestFirst[len(history)-1-i] = day
	}

	return Report{
		Today:         snapshot.Today,
		PeriodHistory: newestFirst,
		CycleLengths:  ReportCycleLengthsFrom(history),
		PeriodLengths: ReportPeriodLengthsFrom(history, snapshot.Symptoms),
		PositiveOPK:   PositiveOvulationTestDays(snapshot.Symptoms),
		AbnormalDays:  AbnormalSymptomDays(snapshot.Symptoms),
		Mode:          insights.Mode,
		Regularity:    insights.Regularity,
		Confidence:    insights.Confidence,
		Flags:         insights.Flags,
	}
}

// ReportCycleLengthsFrom lists raw differences between consecutive starts.
// Unlike the engine statistics no sanity band is applied, so a clinician sees
// exactly what was recorded.
func ReportCycleLengthsFrom(oldestFirst []calendar.Day) ReportCycleLengths {
	diffs := ConsecutiveGaps(oldestFirst)
	lengths := ReportCycleLengths{Diffs: diffs}
	if len(diffs) == 0 {
		return lengths
	}
	average := round1(averageInts(diffs))
	minValue, maxValue := minMaxInts(diffs)
	lengths.Average = &average
	lengths.Min = &minValue
	lengths.Max = &maxValue
	return lengths
}

// ReportPeriodLengthsFrom counts, for each start, the bleeding run beginning
// on it. Starts without bleeding on the first day are skipped.
func ReportPeriodLengthsFrom(oldestFirst []calendar.Day, symptoms models.SymptomTimeline) ReportPeriodLengths {
	values := make([]int, 0, len(oldestFirst))
	for _, start := range oldestFirst {
		run := BleedingRunLength(symptoms, start, ReportPeriodRunLimit)
		if run == 0 {
			continue
		}
		values = append(values, models.ClampInt(run, ReportMinPeriodLength, ReportMaxPeriodLength))
	}

	lengths := ReportPeriodLengths{Values: values}
	if len(values) > 0 {
		average := round1(averageInts(values))
		lengths.Average = &average
	}
	return lengths
}

// PositiveOvulationTestDays returns positive test days newest first.
func PositiveOvulationTestDays(symptoms models.SymptomTimeline) []calendar.Day {
	days := make([]calendar.Day, 0)
	for day, entry := range symptoms {
		if entry.OvulationPositive() {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})
	return days
}

// AbnormalSymptomDays returns days worth a clinician's attention, newest first.
func AbnormalSymptomDays(symptoms models.SymptomTimeline) []ReportAbnormalDay {
	sorted := symptoms.SortedDays()
	abnormal := make([]ReportAbnormalDay, 0)
	for i := len(sorted) - 1; i >= 0; i-- {
		day := sorted[i]
		entry := symptoms[day]

		reasons := make([]string, 0, 3)
		if entry.Pain != nil && *entry.Pain == models.PainSevere {
			reasons = append(reasons, AbnormalSeverePain)
		}
		if entry.BBT != nil && (*entry.BBT < AbnormalBBTBelow || *entry.BBT > AbnormalBBTAbove) {
			reasons = append(reasons, AbnormalBBT)
		}
		if len([]rune(strings.TrimSpace(entry.NotesText()))) >= LongNotesMinRunes {
			reasons = append(reasons, AbnormalLongNotes)
		}
		if len(reasons) == 0 {
			continue
		}

		item := ReportAbnormalDay{Day: day, Reasons: reasons}
		if entry.BBT != nil {
			bbt := round1(*entry.BBT)
			item.BBT = &bbt
		}
		abnormal = append(abnormal, item)
	}
	return abnormal
}

func round1(value float64) float64 {
	return math.Round(value*reportRoundingPrecision) / reportRoundingPrecision
}
