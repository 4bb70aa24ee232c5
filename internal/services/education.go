package services

import (
	"net/url"
	"strings"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const DefaultEducationBaseURL = "https://guyrofe.com"

type EducationTopic string

const (
	TopicCycleRegular              EducationTopic = "cycle_regular"
	TopicCycleIrregular            EducationTopic = "cycle_irregular"
	TopicLatePeriod                EducationTopic = "late_period"
	TopicProlongedBleeding         EducationTopic = "prolonged_bleeding"
	TopicHeavyBleeding             EducationTopic = "heavy_bleeding"
	TopicIntermenstrualBleeding    EducationTopic = "intermenstrual_bleeding"
	TopicPeriodPain                EducationTopic = "period_pain"
	TopicEndometriosis             EducationTopic = "endometriosis"
	TopicPostpartum                EducationTopic = "postpartum"
	TopicBreastfeeding             EducationTopic = "breastfeeding"
	TopicPostContraception         EducationTopic = "post_ocp"
	TopicLateOrIrregularOvulation  EducationTopic = "late_or_irregular_ovulation"
	TopicPerimenopauseCycleChanges EducationTopic = "perimenopause_cycle_changes"
	TopicLongCycle                 EducationTopic = "long_cycle"
	TopicShortCycle                EducationTopic = "short_cycle"
)

var educationSlugs = map[EducationTopic]string{
	TopicCycleRegular:              "/מחזור-סדיר-מה-נחשב-תקין/",
	TopicCycleIrregular:            "/שחלות-פוליציסטיות-מחזור-לא-סדיר/",
	TopicLatePeriod:                "/איחור-במחזור/",
	TopicProlongedBleeding:         "/דימום-ממושך/",
	TopicHeavyBleeding:             "/דימום-כבד-במחזור/",
	TopicIntermenstrualBleeding:    "/דימום-בין-מחזורים/",
	TopicPeriodPain:                "/כאבים-חזקים-בזמן-מחזור/",
	TopicEndometriosis:             "/כאבים-חזקים-בזמן-מחזור/",
	TopicPostpartum:                "/אחרי-לידה-מתי-חוזר-המחזור/",
	TopicBreastfeeding:             "/הנקה-ביוץ-ומחזור/",
	TopicPostContraception:         "/הפסקת-גלולות-מתי-המחזור-חוזר/",
	TopicLateOrIrregularOvulation:  "/ביוץ-מאוחר-או-לא-סדיר/",
	TopicPerimenopauseCycleChanges: "/גיל-המעבר-שינויים-במחזור/",
	TopicLongCycle:                 "/מחזור-ארוך-מהרגיל/",
	TopicShortCycle:                "/מחזור-קצר-מהרגיל/",
}

// EducationLinks builds article URLs under a configurable site.
type EducationLinks struct {
	baseURL string
}

func NewEducationLinks(baseURL string) EducationLinks {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultEducationBaseURL
	}
	return EducationLinks{baseURL: trimmed}
}

// URL returns the article for topic, or "" for an unknown topic.
func (links EducationLinks) URL(topic EducationTopic) string {
	slug, ok := educationSlugs[topic]
	if !ok {
		return ""
	}
	return links.baseURL + (&url.URL{Path: slug}).EscapedPath()
}

func TopicForFlag(flagType ClinicalFlagType) EducationTopic {
	switch flagType {
	case FlagShortCycles, FlagLongCycles:
		return TopicCycleIrregular
	case FlagProlongedBleeding, FlagBleedingLongerThanConfig:
		return TopicProlongedBleeding
	case FlagIntermenstrualBleeding:
		return TopicIntermenstrualBleeding
	case FlagNoPeriod:
		return TopicLatePeriod
	default:
		return TopicCycleIrregular
	}
}

// TopicForMode returns the article for a special mode; ok is false for regular.
func TopicForMode(mode models.PhysiologicalMode) (EducationTopic, bool) {
	switch mode.Normalize() {
	case models.ModePostpartum:
		return TopicPostpartum, true
	case models.ModeBreastfeeding:
		return TopicBreastfeeding, true
	case models.ModePostContraception:
		return TopicPostContraception, true
	case models.ModePerimenopause:
		return TopicPerimenopauseCycleChanges, true
	default:
		return "", false
	}
}
