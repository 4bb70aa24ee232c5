package services

import (
	"strings"
	"testing"

	"github.com/terraincognita07/cyclecast/internal/models"
)

func TestEducationLinksURL(t *testing.T) {
	t.Parallel()

	links := NewEducationLinks("https://example.org/")
	got := links.URL(TopicLatePeriod)
	want := "https://example.org/%D7%90%D7%99%D7%97%D7%95%D7%A8-%D7%91%D7%9E%D7%97%D7%96%D7%95%D7%A8/"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if got := links.URL(EducationTopic("unknown")); got != "" {
		t.Fatalf("expected empty url for unknown topic, got %q", got)
	}
}

func TestEducationLinksDefaultBase(t *testing.T) {
	t.Parallel()

	links := NewEducationLinks("   ")
	if got := links.URL(TopicShortCycle); !strings.HasPrefix(got, DefaultEducationBaseURL+"/") {
		t.Fatalf("expected default base url, got %q", got)
	}
}

func TestEveryTopicHasArticle(t *testing.T) {
	t.Parallel()

	links := NewEducationLinks("")
	for topic := range educationSlugs {
		if links.URL(topic) == "" {
			t.Fatalf("expected url for %s", topic)
		}
	}
	if len(educationSlugs) != 15 {
		t.Fatalf("expected 15 topics, got %d", len(educationSlugs))
	}
}

func TestTopicForFlag(t *testing.T) {
	t.Parallel()

	cases := map[ClinicalFlagType]EducationTopic{
		FlagShortCycles:              TopicCycleIrregular,
		FlagLongCycles:               TopicCycleIrregular,
		FlagProlongedBleeding:        TopicProlongedBleeding,
		FlagBleedingLongerThanConfig: TopicProlongedBleeding,
		FlagIntermenstrualBleeding:   TopicIntermenstrualBleeding,
		FlagNoPeriod:                 TopicLatePeriod,
	}
	for flagType, want := range cases {
		if got := TopicForFlag(flagType); got != want {
			t.Fatalf("flag %s: expected %s, got %s", flagType, want, got)
		}
	}
}

func TestTopicForMode(t *testing.T) {
	t.Parallel()

	if _, ok := TopicForMode(models.ModeRegular); ok {
		t.Fatalf("expected no article for regular mode")
	}
	if topic, ok := TopicForMode(models.ModePerimenopause); !ok || topic != TopicPerimenopauseCycleChanges {
		t.Fatalf("expected perimenopause article, got %s (ok=%v)", topic, ok)
	}
	if topic, ok := TopicForMode(models.PhysiologicalMode("stoppingPills")); !ok || topic != TopicPostContraception {
		t.Fatalf("expected post contraception article, got %s (ok=%v)", topic, ok)
	}
}
