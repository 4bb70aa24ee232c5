package services

import (
	"context"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

type SnapshotReader interface {
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
}

// InsightsObserver receives every computed result, e.g. for metrics.
type InsightsObserver interface {
	ObserveInsights(insights Insights, elapsed time.Duration)
}

// FlagTranslator renders catalogue keys into end-user copy.
type FlagTranslator interface {
	Translate(key string, args ...any) string
}

type StatsService struct {
	snapshots SnapshotReader
	observer  InsightsObserver
}

func NewStatsService(snapshots SnapshotReader, observer InsightsObserver) *StatsService {
	return &StatsService{
		snapshots: snapshots,
		observer:  observer,
	}
}

// BuildInsights loads the current snapshot and runs the engine over it.
func (service *StatsService) BuildInsights(ctx context.Context) (Insights, models.Snapshot, error) {
	snapshot, err := service.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return Insights{}, models.Snapshot{}, err
	}

	startedAt := time.Now()
	insights := ComputeInsights(snapshot)
	if service.observer != nil {
		service.observer.ObserveInsights(insights, time.Since(startedAt))
	}
	return insights, snapshot, nil
}

func TrimTrailingCycleTrendLengths(lengths []int, maxPoints int) []int {
	if maxPoints <= 0 || len(lengths) <= maxPoints {
		return lengths
	}
	return lengths[len(lengths)-maxPoints:]
}

// LocalizeFlags fills Title and Message on copies of flags.
func LocalizeFlags(flags []ClinicalFlag, translator FlagTranslator) []ClinicalFlag {
	localized := make([]ClinicalFlag, 0, len(flags))
	for _, flag := range flags {
		if translator != nil {
			flag.Title = translator.Translate(flag.TitleKey)
			flag.Message = translator.Translate(flag.MessageKey, flag.MessageArgs()...)
		}
		localized = append(localized, flag)
	}
	return localized
}

// HasSuggestFlag reports whether any flag recommends seeing a clinician.
func HasSuggestFlag(flags []ClinicalFlag) bool {
	for _, flag := range flags {
		if flag.Severity == SeveritySuggest {
			return true
		}
	}
	return false
}
