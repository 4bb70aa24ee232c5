package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/calendar"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

func newTestRepositories(t *testing.T, location *time.Location) *Repositories {
	t.Helper()

	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "cyclecast.db"))
	return NewRepositories(database, location)
}

func TestKVRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	_, found, err := repos.KV.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repos.KV.Set(ctx, "a", "1"))
	require.NoError(t, repos.KV.Set(ctx, "a", "2"))
	require.NoError(t, repos.KV.SetMany(ctx, map[string]string{"b": "x", "c": "y"}))

	value, found, err := repos.KV.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", value)

	values, err := repos.KV.GetMany(ctx, "a", "b", "zzz")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "2", "b": "x"}, values)

	require.NoError(t, repos.KV.Update(ctx, map[string]string{"d": "z"}, []string{"a", "c"}))
	keys, err := repos.KV.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "d"}, keys)
}

func TestPeriodHistoryRoundTripKeepsNewestAsPeriodStart(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	days := []calendar.Day{
		calendar.MustParseDay("2024-02-01"),
		calendar.MustParseDay("2024-01-04"),
		calendar.MustParseDay("2024-02-01"),
		calendar.MustParseDay("2024-02-29"),
	}
	require.NoError(t, repos.UserData.SavePeriodHistory(ctx, days))

	loaded, err := repos.UserData.LoadPeriodHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, []calendar.Day{
		calendar.MustParseDay("2024-01-04"),
		calendar.MustParseDay("2024-02-01"),
		calendar.MustParseDay("2024-02-29"),
	}, loaded)

	raw, found, err := repos.KV.Get(ctx, KeyPeriodHistory)
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `["2024-02-29","2024-02-01","2024-01-04"]`, raw)

	start, found, err := repos.KV.Get(ctx, KeyPeriodStart)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2024-02-29", start)

	require.NoError(t, repos.UserData.SavePeriodHistory(ctx, nil))
	_, found, err = repos.KV.Get(ctx, KeyPeriodStart)
	require.NoError(t, err)
	require.False(t, found)
}

func TestLoadPeriodHistoryReadsLegacyTimestampsAndDropsGarbage(t *testing.T) {
	ctx := context.Background()
	location, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	repos := newTestRepositories(t, location)

	require.NoError(t, repos.KV.Set(ctx, KeyPeriodHistory, `["2024-03-10T10:00:00.000Z","not-a-date","2024-02-11","2024-03-09T22:30:00.000Z"]`))

	loaded, err := repos.UserData.LoadPeriodHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, []calendar.Day{
		calendar.MustParseDay("2024-02-11"),
		calendar.MustParseDay("2024-03-10"),
	}, loaded)
}

func TestSymptomsRoundTripDropsEmptyRecords(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	timeline := models.SymptomTimeline{
		calendar.MustParseDay("2024-01-04"): {Flow: models.Ptr(models.FlowHeavy), BBT: models.Ptr(36.6)},
		calendar.MustParseDay("2024-01-18"): {OvulationTest: models.Ptr(models.OvulationTestPositive)},
		calendar.MustParseDay("2024-01-20"): {},
	}
	require.NoError(t, repos.UserData.SaveSymptoms(ctx, timeline))

	loaded, err := repos.UserData.LoadSymptoms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.True(t, loaded[calendar.MustParseDay("2024-01-04")].IsMediumOrHeavyFlow())
	require.True(t, loaded[calendar.MustParseDay("2024-01-18")].OvulationPositive())
}

func TestLoadSymptomsNormalisesLegacyOvulationSpellings(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.Set(ctx, KeySymptomsByDay, `{"2024-01-18":{"ovulationTest":"pos"},"bad-key":{"flow":"light"}}`))

	loaded, err := repos.UserData.LoadSymptoms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.True(t, loaded[calendar.MustParseDay("2024-01-18")].OvulationPositive())
}

func TestLoadSymptomsDropsOnlyUnreadableRecords(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.Set(ctx, KeySymptomsByDay, `{
		"2024-01-03":{"flow":"heavy"},
		"2024-01-12":{"ovulationTest":true},
		"2024-01-14":{"flow":"light","bbt":"36.6"},
		"2024-01-15":"garbage"
	}`))

	loaded, err := repos.UserData.LoadSymptoms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.True(t, loaded[calendar.MustParseDay("2024-01-03")].IsMediumOrHeavyFlow())
	require.True(t, loaded[calendar.MustParseDay("2024-01-12")].OvulationPositive())

	partial := loaded[calendar.MustParseDay("2024-01-14")]
	require.True(t, partial.IsBleeding())
	require.Nil(t, partial.BBT)
}

func TestSaveSymptomsKeepsStoredValuesItCouldNotRead(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.Set(ctx, KeySymptomsByDay, `{
		"2024-01-03":{"flow":"heavy"},
		"2024-01-14":{"flow":"light","bbt":"36.6"},
		"2024-01-15":"garbage",
		"someday":{"flow":"light"}
	}`))

	timeline, err := repos.UserData.LoadSymptoms(ctx)
	require.NoError(t, err)
	timeline[calendar.MustParseDay("2024-01-20")] = models.DaySymptoms{Pain: models.Ptr(models.PainMild)}
	require.NoError(t, repos.UserData.SaveSymptoms(ctx, timeline))

	raw, _, err := repos.KV.Get(ctx, KeySymptomsByDay)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"2024-01-03":{"flow":"heavy"},
		"2024-01-14":{"flow":"light","bbt":"36.6"},
		"2024-01-15":"garbage",
		"2024-01-20":{"pain":"mild"},
		"someday":{"flow":"light"}
	}`, raw)

	delete(timeline, calendar.MustParseDay("2024-01-14"))
	timeline[calendar.MustParseDay("2024-01-03")] = models.DaySymptoms{BBT: models.Ptr(36.5)}
	require.NoError(t, repos.UserData.SaveSymptoms(ctx, timeline))

	raw, _, err = repos.KV.Get(ctx, KeySymptomsByDay)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"2024-01-03":{"bbt":36.5},
		"2024-01-15":"garbage",
		"2024-01-20":{"pain":"mild"},
		"someday":{"flow":"light"}
	}`, raw)
}

func TestSaveSymptomsRefusesToOverwriteMalformedMap(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.Set(ctx, KeySymptomsByDay, `{not json`))

	loaded, err := repos.UserData.LoadSymptoms(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	err = repos.UserData.SaveSymptoms(ctx, models.SymptomTimeline{
		calendar.MustParseDay("2024-01-20"): {Pain: models.Ptr(models.PainMild)},
	})
	require.ErrorIs(t, err, ErrStoredValueUnreadable)

	raw, _, err := repos.KV.Get(ctx, KeySymptomsByDay)
	require.NoError(t, err)
	require.Equal(t, `{not json`, raw)
}

func TestSavePeriodHistoryKeepsUnreadableEntries(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.Set(ctx, KeyPeriodHistory, `["2024-02-11",5,"not-a-date"]`))

	loaded, err := repos.UserData.LoadPeriodHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, []calendar.Day{calendar.MustParseDay("2024-02-11")}, loaded)

	require.NoError(t, repos.UserData.SavePeriodHistory(ctx, append(loaded, calendar.MustParseDay("2024-03-10"))))

	raw, _, err := repos.KV.Get(ctx, KeyPeriodHistory)
	require.NoError(t, err)
	require.JSONEq(t, `["2024-03-10","2024-02-11",5,"not-a-date"]`, raw)

	require.NoError(t, repos.KV.Set(ctx, KeyPeriodHistory, `"2024-02-11"`))
	err = repos.UserData.SavePeriodHistory(ctx, loaded)
	require.ErrorIs(t, err, ErrStoredValueUnreadable)
}

func TestRecordServiceSymptomEditKeepsOtherStoredDays(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.Set(ctx, KeySymptomsByDay, `{
		"2024-01-03":{"flow":"heavy"},
		"2024-01-12":{"ovulationTest":true},
		"2024-01-14":{"bbt":"36.6"}
	}`))

	now := func() time.Time { return time.Date(2024, time.January, 20, 9, 0, 0, 0, time.UTC) }
	records := services.NewRecordService(repos.UserData, time.UTC).WithClock(now)

	_, err := records.SetSymptoms(ctx, calendar.MustParseDay("2024-01-20"), models.DaySymptoms{Mood: models.Ptr(models.MoodGood)})
	require.NoError(t, err)

	snapshot, err := records.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, snapshot.Symptoms[calendar.MustParseDay("2024-01-03")].IsMediumOrHeavyFlow())
	require.True(t, snapshot.Symptoms[calendar.MustParseDay("2024-01-12")].OvulationPositive())
	require.NotNil(t, snapshot.Symptoms[calendar.MustParseDay("2024-01-20")].Mood)

	raw, _, err := repos.KV.Get(ctx, KeySymptomsByDay)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"2024-01-03":{"flow":"heavy"},
		"2024-01-12":{"ovulationTest":"positive"},
		"2024-01-14":{"bbt":"36.6"},
		"2024-01-20":{"mood":"good"}
	}`, raw)
}

func TestSettingsDefaultsClampAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	loaded, err := repos.UserData.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultSettings(), loaded)

	require.NoError(t, repos.KV.SetMany(ctx, map[string]string{
		KeyCycleLengthManual: "99",
		KeyPeriodLength:      "1",
		KeyPhysioMode:        "stoppingPills",
		KeyBirthday:          "1994-05-20T12:00:00.000Z",
		KeyPeriodActive:      "true",
	}))
	loaded, err = repos.UserData.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, models.MaxManualCycleLength, loaded.ManualCycleLength)
	require.Equal(t, models.MinPeriodLength, loaded.PeriodLength)
	require.Equal(t, models.ModePostContraception, loaded.Mode)
	require.Equal(t, calendar.MustParseDay("1994-05-20"), loaded.Birthday)
	require.True(t, loaded.PeriodActive)

	loaded.Goal = "conceive"
	loaded.Birthday = calendar.Day{}
	require.NoError(t, repos.UserData.SaveSettings(ctx, loaded))

	reloaded, err := repos.UserData.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, loaded, reloaded)
}

func TestResetAllRemovesUserDataAndReminderState(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	require.NoError(t, repos.KV.SetMany(ctx, map[string]string{
		KeyGoal:                     "track",
		KeyPredictedReminderEnabled: "true",
		"unrelated":                 "kept",
	}))
	require.NoError(t, repos.UserData.ResetAll(ctx))

	keys, err := repos.KV.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"unrelated"}, keys)
}

func TestImportCopiesOnlyKnownKeys(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t, time.UTC)

	imported, err := repos.UserData.Import(ctx, map[string]string{
		KeyPeriodHistory: `["2024-01-04T10:00:00.000Z"]`,
		KeyGoal:          "track",
		"someOtherKey":   "x",
	})
	require.NoError(t, err)
	require.Equal(t, 2, imported)

	keys, err := repos.KV.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{KeyGoal, KeyPeriodHistory}, keys)
}
