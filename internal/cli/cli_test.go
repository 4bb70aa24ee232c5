package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type cliHarness struct {
	t      *testing.T
	dbPath string
	now    time.Time
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		config.EnvConfigPath, config.EnvDBPath, config.EnvTimezone, config.EnvLanguage,
		config.EnvEducationURL, config.EnvTelegramToken, config.EnvTelegramChatID,
		config.EnvReminderTime, config.EnvPredictedPeriod, config.EnvMetricsTextfile,
	} {
		t.Setenv(key, "")
	}

	return &cliHarness{
		t:      t,
		dbPath: filepath.Join(t.TempDir(), "cyclecast.db"),
		now:    time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC),
	}
}

func (h *cliHarness) execute(args ...string) (string, error) {
	h.t.Helper()

	root := NewRootCmd(Options{Now: func() time.Time { return h.now }})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--db", h.dbPath}, args...))

	err := root.Execute()
	return stdout.String(), err
}

func (h *cliHarness) mustExecute(args ...string) string {
	h.t.Helper()
	out, err := h.execute(args...)
	require.NoError(h.t, err, "cyclecast %s", strings.Join(args, " "))
	return out
}

func (h *cliHarness) mustJSON(target any, args ...string) {
	h.t.Helper()
	out := h.mustExecute(append(args, "--format", "json")...)
	require.NoError(h.t, json.Unmarshal([]byte(out), target), out)
}

func TestPeriodAddListAndRemove(t *testing.T) {
	h := newCLIHarness(t)

	h.mustExecute("period", "add", "2024-02-26", "2024-01-01", "2024-01-29", "2024-01-01")

	var listed struct {
		PeriodStarts []string `json:"period_starts"`
	}
	h.mustJSON(&listed, "period", "list")
	require.Equal(t, []string{"2024-01-01", "2024-01-29", "2024-02-26"}, listed.PeriodStarts)

	h.mustExecute("period", "remove", "2024-01-29")
	h.mustJSON(&listed, "period", "list")
	require.Equal(t, []string{"2024-01-01", "2024-02-26"}, listed.PeriodStarts)

	_, err := h.execute("period", "remove", "2024-01-29")
	require.Error(t, err)
}

func TestPeriodAddRejectsFutureAndMalformedDays(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.execute("period", "add", "2024-03-10")
	require.ErrorIs(t, err, services.ErrPeriodStartInFuture)

	_, err = h.execute("period", "add", "2024-02-30")
	require.Error(t, err)
}

func TestPeriodStartAndEndToggleActiveFlag(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustExecute("period", "start")
	require.Contains(t, out, "2024-03-05")

	var settings struct {
		PeriodActive bool `json:"isPeriodActive"`
	}
	h.mustJSON(&settings, "settings", "show")
	require.True(t, settings.PeriodActive)

	h.mustExecute("period", "end")
	h.mustJSON(&settings, "settings", "show")
	require.False(t, settings.PeriodActive)
}

func TestForecastFromRegularHistory(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01", "2024-01-29", "2024-02-26")

	var forecast struct {
		NextPeriodStart string `json:"next_period_start"`
		CycleDay        int    `json:"cycle_day"`
		CycleLength     int    `json:"cycle_length"`
		Confidence      string `json:"confidence"`
		CurrentPhase    string `json:"current_phase"`
	}
	h.mustJSON(&forecast, "forecast")
	require.Equal(t, "2024-03-25", forecast.NextPeriodStart)
	require.Equal(t, 9, forecast.CycleDay)
	require.Equal(t, 28, forecast.CycleLength)
	require.Equal(t, "medium", forecast.Confidence)
	require.Equal(t, services.PhaseFollicular, forecast.CurrentPhase)

	text := h.mustExecute("forecast")
	require.Contains(t, text, "2024-03-25 (in 20 days)")
	require.Contains(t, text, "Prediction confidence: medium")
}

func TestSymptomsSetMergesAndClears(t *testing.T) {
	h := newCLIHarness(t)

	h.mustExecute("symptoms", "set", "2024-03-01", "--flow", "heavy")
	h.mustExecute("symptoms", "set", "2024-03-01", "--pain", "severe", "--bbt", "36.6")

	var shown struct {
		Day      string `json:"day"`
		Symptoms struct {
			Flow string  `json:"flow"`
			Pain string  `json:"pain"`
			BBT  float64 `json:"bbt"`
		} `json:"symptoms"`
	}
	h.mustJSON(&shown, "symptoms", "show", "2024-03-01")
	require.Equal(t, "heavy", shown.Symptoms.Flow)
	require.Equal(t, "severe", shown.Symptoms.Pain)
	require.InDelta(t, 36.6, shown.Symptoms.BBT, 0.001)

	_, err := h.execute("symptoms", "set", "2024-03-01", "--flow", "torrential")
	require.Error(t, err)
	_, err = h.execute("symptoms", "set", "2024-03-01")
	require.Error(t, err)

	require.Contains(t, h.mustExecute("symptoms", "clear", "2024-03-01"), "cleared 2024-03-01")
	require.Contains(t, h.mustExecute("symptoms", "clear", "2024-03-01"), "nothing recorded")
}

func TestSettingsSetValidatesAndPersists(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.execute("settings", "set", "--cycle-length", "99")
	require.ErrorIs(t, err, services.ErrSettingsCycleLengthOutOfRange)

	_, err = h.execute("settings", "set", "--mode", "hibernating")
	require.ErrorIs(t, err, services.ErrSettingsModeInvalid)

	_, err = h.execute("settings", "set")
	require.Error(t, err)

	var settings struct {
		ManualCycleLength int    `json:"cycleLengthManual"`
		PeriodLength      int    `json:"periodLength"`
		Mode              string `json:"physioMode"`
		Birthday          string `json:"birthday"`
	}
	h.mustJSON(&settings, "settings", "set", "--cycle-length", "31", "--period-length", "6", "--mode", "breastfeeding", "--birthday", "1994-03-05")
	require.Equal(t, 31, settings.ManualCycleLength)
	require.Equal(t, 6, settings.PeriodLength)
	require.Equal(t, "breastfeeding", settings.Mode)
	require.Equal(t, "1994-03-05", settings.Birthday)

	text := h.mustExecute("settings", "show")
	require.Contains(t, text, "Age:")
	require.Contains(t, text, "30")
}

func TestInsightsReportsModeAndEducationLinks(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01", "2024-01-29", "2024-02-26")
	h.mustExecute("settings", "set", "--mode", "postpartum")

	var view struct {
		Confidence       string `json:"confidence"`
		Mode             string `json:"mode"`
		ModeEducationURL string `json:"mode_education_url"`
		CycleLengths     []int  `json:"cycle_lengths"`
	}
	h.mustJSON(&view, "insights")
	require.Equal(t, "very_low", view.Confidence)
	require.Equal(t, "postpartum", view.Mode)
	require.True(t, strings.HasPrefix(view.ModeEducationURL, services.DefaultEducationBaseURL+"/"))
	require.Equal(t, []int{28, 28}, view.CycleLengths)

	text := h.mustExecute("insights", "--lang", "he")
	require.Contains(t, text, "https://guyrofe.com/")
}

func TestInsightsLocalisesFlags(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01")

	var view struct {
		Flags []struct {
			Type         string `json:"type"`
			Title        string `json:"title"`
			Message      string `json:"message"`
			EducationURL string `json:"education_url"`
		} `json:"flags"`
		SuggestClinician bool `json:"suggest_clinician"`
	}
	h.mustJSON(&view, "insights")

	require.Len(t, view.Flags, 1)
	require.Equal(t, string(services.FlagNoPeriod), view.Flags[0].Type)
	require.Equal(t, "Period significantly late", view.Flags[0].Title)
	require.Contains(t, view.Flags[0].Message, "64 days")
	require.NotEmpty(t, view.Flags[0].EducationURL)
	require.True(t, view.SuggestClinician)
}

func TestCalendarPrintsMonthGrid(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-02-26")

	out := h.mustExecute("calendar", "2024-03")
	require.Contains(t, out, "March 2024")
	require.Contains(t, out, " 5 *")

	var days []services.CalendarDayState
	h.mustJSON(&days, "calendar")
	require.Len(t, days, 42)

	_, err := h.execute("calendar", "March")
	require.Error(t, err)
}

func TestReportJSONAndYAML(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01", "2024-01-29", "2024-02-26")

	var report struct {
		ID            string   `json:"id"`
		PeriodHistory []string `json:"period_history"`
		CycleLengths  struct {
			Diffs []int `json:"diffs"`
		} `json:"cycle_lengths"`
	}
	h.mustJSON(&report, "report")
	require.Len(t, report.ID, 26)
	require.Equal(t, []string{"2024-02-26", "2024-01-29", "2024-01-01"}, report.PeriodHistory)
	require.Equal(t, []int{28, 28}, report.CycleLengths.Diffs)

	yamlOut := h.mustExecute("report", "--format", "yaml")
	require.Contains(t, yamlOut, "period_history:")
	require.Contains(t, yamlOut, "- \"2024-02-26\"")
}

func TestExportCSVAndRange(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01", "2024-02-26")
	h.mustExecute("symptoms", "set", "2024-02-27", "--flow", "medium", "--notes", "cramps, mild")

	out := h.mustExecute("export", "--from", "2024-02-01")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "Date,Period start,Flow"))
	require.True(t, strings.HasPrefix(lines[1], "2024-02-26,Yes,"))
	require.Contains(t, lines[2], "\"cramps, mild\"")

	var payload struct {
		Summary struct {
			TotalEntries int `json:"total_entries"`
		} `json:"summary"`
	}
	h.mustJSON(&payload, "export")
	require.Equal(t, 3, payload.Summary.TotalEntries)

	path := filepath.Join(t.TempDir(), "export.csv")
	h.mustExecute("export", "-o", path)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(written), "2024-01-01,Yes")

	_, err = h.execute("export", "--from", "2024-03-01", "--to", "2024-02-01")
	require.ErrorIs(t, err, services.ErrExportRangeInvalid)
}

func TestImportKeyValueBackup(t *testing.T) {
	h := newCLIHarness(t)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"periodHistory": "[\"2024-01-01\",\"2024-01-29\"]",
		"cycleLengthManual": "30",
		"unrelated": "ignored"
	}`), 0o600))

	out := h.mustExecute("import", path)
	require.Contains(t, out, "imported 2 keys")

	var listed struct {
		PeriodStarts []string `json:"period_starts"`
	}
	h.mustJSON(&listed, "period", "list")
	require.Equal(t, []string{"2024-01-01", "2024-01-29"}, listed.PeriodStarts)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))
	_, err := h.execute("import", path)
	require.Error(t, err)
}

func TestReminderPredictedFollowsHistory(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01", "2024-01-29", "2024-02-26")
	h.mustExecute("reminder", "time", "08:00")
	h.mustExecute("reminder", "predicted", "on")

	var pending []struct {
		Kind            string    `json:"kind"`
		FireAt          time.Time `json:"fire_at"`
		NextPeriodStart string    `json:"next_period_start"`
	}
	h.mustJSON(&pending, "reminder", "list")
	require.Len(t, pending, 1)
	require.Equal(t, "predicted_period", pending[0].Kind)
	require.Equal(t, "2024-03-25", pending[0].NextPeriodStart)
	require.Equal(t, time.Date(2024, time.March, 24, 8, 0, 0, 0, time.UTC), pending[0].FireAt.UTC())

	h.mustExecute("period", "add", "2024-03-04")
	h.mustJSON(&pending, "reminder", "list")
	require.Len(t, pending, 1)
	require.NotEqual(t, "2024-03-25", pending[0].NextPeriodStart)

	h.mustExecute("reminder", "predicted", "off")
	h.mustJSON(&pending, "reminder", "list")
	require.Empty(t, pending)
}

func TestReminderDailyDispatchOncePerDay(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("reminder", "time", "10:00")
	h.mustExecute("reminder", "daily", "on")

	require.Contains(t, h.mustExecute("reminder", "dispatch"), "sent 0 reminders")

	h.now = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
	require.Contains(t, h.mustExecute("reminder", "dispatch"), "sent 1 reminders")
	require.Contains(t, h.mustExecute("reminder", "dispatch"), "sent 0 reminders")

	_, err := h.execute("reminder", "daily", "maybe")
	require.Error(t, err)

	h.mustExecute("reminder", "daily", "off")
	require.Contains(t, h.mustExecute("reminder", "list"), "no reminders scheduled")
}

func TestResetRequiresConfirmation(t *testing.T) {
	h := newCLIHarness(t)
	h.mustExecute("period", "add", "2024-01-01")

	_, err := h.execute("reset")
	require.Error(t, err)

	h.mustExecute("reset", "--yes")
	require.Contains(t, h.mustExecute("period", "list"), "no period starts recorded")
}

func TestUnknownFormatIsRejected(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.execute("period", "list", "--format", "xml")
	require.Error(t, err)
}

func TestMetricsTextfileWrittenOnClose(t *testing.T) {
	h := newCLIHarness(t)
	path := filepath.Join(t.TempDir(), "cyclecast.prom")
	t.Setenv(config.EnvMetricsTextfile, path)

	h.mustExecute("period", "add", "2024-01-01", "2024-01-29")
	h.mustExecute("forecast")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "cyclecast_insights_computed_total 1")
}
