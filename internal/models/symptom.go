package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/terraincognita07/cyclecast/internal/calendar"
)

var (
	ErrInvalidFlow          = errors.New("invalid flow value")
	ErrInvalidPain          = errors.New("invalid pain value")
	ErrInvalidMood          = errors.New("invalid mood value")
	ErrInvalidCervicalFluid = errors.New("invalid cervical fluid value")
	ErrInvalidOvulationTest = errors.New("invalid ovulation test value")
)

type Flow string

const (
	FlowNone   Flow = "none"
	FlowLight  Flow = "light"
	FlowMedium Flow = "medium"
	FlowHeavy  Flow = "heavy"
)

type Pain string

const (
	PainNone     Pain = "none"
	PainMild     Pain = "mild"
	PainModerate Pain = "moderate"
	PainSevere   Pain = "severe"
)

type Mood string

const (
	MoodGood    Mood = "good"
	MoodOK      Mood = "ok"
	MoodLow     Mood = "low"
	MoodAnxious Mood = "anxious"
)

type CervicalFluid string

const (
	CervicalFluidDry      CervicalFluid = "dry"
	CervicalFluidSticky   CervicalFluid = "sticky"
	CervicalFluidCreamy   CervicalFluid = "creamy"
	CervicalFluidWatery   CervicalFluid = "watery"
	CervicalFluidEggWhite CervicalFluid = "eggwhite"
)

type OvulationTest string

const (
	OvulationTestNegative OvulationTest = "negative"
	OvulationTestPositive OvulationTest = "positive"
)

func ParseFlow(raw string) (Flow, error) {
	switch value := Flow(normalizeEnum(raw)); value {
	case FlowNone, FlowLight, FlowMedium, FlowHeavy:
		return value, nil
	default:
		return "", ErrInvalidFlow
	}
}

func ParsePain(raw string) (Pain, error) {
	switch value := Pain(normalizeEnum(raw)); value {
	case PainNone, PainMild, PainModerate, PainSevere:
		return value, nil
	default:
		return "", ErrInvalidPain
	}
}

func ParseMood(raw string) (Mood, error) {
	switch value := Mood(normalizeEnum(raw)); value {
	case MoodGood, MoodOK, MoodLow, MoodAnxious:
		return value, nil
	default:
		return "", ErrInvalidMood
	}
}

func ParseCervicalFluid(raw string) (CervicalFluid, error) {
	normalized := strings.ReplaceAll(normalizeEnum(raw), "_", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	switch value := CervicalFluid(normalized); value {
	case CervicalFluidDry, CervicalFluidSticky, CervicalFluidCreamy, CervicalFluidWatery, CervicalFluidEggWhite:
		return value, nil
	default:
		return "", ErrInvalidCervicalFluid
	}
}

// ParseOvulationTest also accepts the loose spellings older app versions stored
// ("pos", "yes", "1", Hebrew yes/positive).
func ParseOvulationTest(raw string) (OvulationTest, error) {
	switch normalizeEnum(raw) {
	case "positive", "pos", "true", "yes", "y", "1", "חיובי", "כן":
		return OvulationTestPositive, nil
	case "negative", "neg", "false", "no", "n", "0", "שלילי", "לא":
		return OvulationTestNegative, nil
	default:
		return "", ErrInvalidOvulationTest
	}
}

// UnmarshalText normalises legacy spellings on load. Unknown values are kept
// as-is so one odd record does not fail the whole timeline.
func (test *OvulationTest) UnmarshalText(text []byte) error {
	parsed, err := ParseOvulationTest(string(text))
	if err != nil {
		*test = OvulationTest(text)
		return nil
	}
	*test = parsed
	return nil
}

// UnmarshalJSON also reads the boolean and numeric values older app versions
// stored: true and 1 are positive, anything else is negative.
func (test *OvulationTest) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch typed := value.(type) {
	case string:
		return test.UnmarshalText([]byte(typed))
	case bool:
		*test = OvulationTestNegative
		if typed {
			*test = OvulationTestPositive
		}
	case float64:
		*test = OvulationTestNegative
		if typed == 1 {
			*test = OvulationTestPositive
		}
	case nil:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOvulationTest, data)
	}
	return nil
}

func normalizeEnum(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DaySymptoms is the per-day record. Nil fields were not recorded, which is
// distinct from an explicit "none".
type DaySymptoms struct {
	Flow          *Flow          `json:"flow,omitempty" yaml:"flow,omitempty"`
	Pain          *Pain          `json:"pain,omitempty" yaml:"pain,omitempty"`
	Mood          *Mood          `json:"mood,omitempty" yaml:"mood,omitempty"`
	CervicalFluid *CervicalFluid `json:"discharge,omitempty" yaml:"discharge,omitempty"`
	Intercourse   *bool          `json:"sex,omitempty" yaml:"sex,omitempty"`
	OvulationTest *OvulationTest `json:"ovulationTest,omitempty" yaml:"ovulation_test,omitempty"`
	BBT           *float64       `json:"bbt,omitempty" yaml:"bbt,omitempty"`
	Notes         *string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	PhotoRef      *string        `json:"photoUri,omitempty" yaml:"photo_ref,omitempty"`
}

func Ptr[T any](value T) *T {
	return &value
}

// Merge applies patch on top of the record: fields present in patch replace
// the stored ones, absent fields keep their stored value.
func (s DaySymptoms) Merge(patch DaySymptoms) DaySymptoms {
	merged := s
	if patch.Flow != nil {
		merged.Flow = Ptr(*patch.Flow)
	}
	if patch.Pain != nil {
		merged.Pain = Ptr(*patch.Pain)
	}
	if patch.Mood != nil {
		merged.Mood = Ptr(*patch.Mood)
	}
	if patch.CervicalFluid != nil {
		merged.CervicalFluid = Ptr(*patch.CervicalFluid)
	}
	if patch.Intercourse != nil {
		merged.Intercourse = Ptr(*patch.Intercourse)
	}
	if patch.OvulationTest != nil {
		merged.OvulationTest = Ptr(*patch.OvulationTest)
	}
	if patch.BBT != nil {
		merged.BBT = Ptr(*patch.BBT)
	}
	if patch.Notes != nil {
		merged.Notes = Ptr(*patch.Notes)
	}
	if patch.PhotoRef != nil {
		merged.PhotoRef = Ptr(*patch.PhotoRef)
	}
	return merged
}

func (s DaySymptoms) IsEmpty() bool {
	return s.Flow == nil &&
		s.Pain == nil &&
		s.Mood == nil &&
		s.CervicalFluid == nil &&
		s.Intercourse == nil &&
		s.OvulationTest == nil &&
		s.BBT == nil &&
		s.Notes == nil &&
		s.PhotoRef == nil
}

// IsBleeding reports a recorded flow other than none.
func (s DaySymptoms) IsBleeding() bool {
	return s.Flow != nil && *s.Flow != FlowNone
}

func (s DaySymptoms) IsMediumOrHeavyFlow() bool {
	return s.Flow != nil && (*s.Flow == FlowMedium || *s.Flow == FlowHeavy)
}

func (s DaySymptoms) OvulationPositive() bool {
	return s.OvulationTest != nil && *s.OvulationTest == OvulationTestPositive
}

func (s DaySymptoms) NotesText() string {
	if s.Notes == nil {
		return ""
	}
	return *s.Notes
}

// SymptomTimeline holds one record per calendar day.
type SymptomTimeline map[calendar.Day]DaySymptoms

func (timeline SymptomTimeline) Get(day calendar.Day) (DaySymptoms, bool) {
	if timeline == nil {
		return DaySymptoms{}, false
	}
	entry, ok := timeline[day]
	return entry, ok
}

// SortedDays returns the recorded days oldest first.
func (timeline SymptomTimeline) SortedDays() []calendar.Day {
	days := make([]calendar.Day, 0, len(timeline))
	for day := range timeline {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

func (timeline SymptomTimeline) Clone() SymptomTimeline {
	cloned := make(SymptomTimeline, len(timeline))
	for day, entry := range timeline {
		cloned[day] = DaySymptoms{}.Merge(entry)
	}
	return cloned
}
