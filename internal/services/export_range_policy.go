package services

import (
	"errors"
	"strings"

	"github.com/terraincognita07/cyclecast/internal/calendar"
)

var (
	ErrExportFromDateInvalid = errors.New("export invalid from date")
	ErrExportToDateInvalid   = errors.New("export invalid to date")
	ErrExportRangeInvalid    = errors.New("export invalid range")
)

// ExportRange bounds an export; a zero side is open.
type ExportRange struct {
	From calendar.Day
	To   calendar.Day
}

func (r ExportRange) Contains(day calendar.Day) bool {
	if !r.From.IsZero() && day.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && day.After(r.To) {
		return false
	}
	return true
}

func ParseExportRange(rawFrom string, rawTo string) (ExportRange, error) {
	exportRange := ExportRange{}

	if fromRaw := strings.TrimSpace(rawFrom); fromRaw != "" {
		from, err := calendar.ParseDay(fromRaw)
		if err != nil {
			return ExportRange{}, ErrExportFromDateInvalid
		}
		exportRange.From = from
	}

	if toRaw := strings.TrimSpace(rawTo); toRaw != "" {
		to, err := calendar.ParseDay(toRaw)
		if err != nil {
			return ExportRange{}, ErrExportToDateInvalid
		}
		exportRange.To = to
	}

	if !exportRange.From.IsZero() && !exportRange.To.IsZero() && exportRange.To.Before(exportRange.From) {
		return ExportRange{}, ErrExportRangeInvalid
	}
	return exportRange, nil
}
