package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/db"
	"github.com/terraincognita07/cyclecast/internal/i18n"
	"github.com/terraincognita07/cyclecast/internal/metrics"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/reminders"
	"github.com/terraincognita07/cyclecast/internal/services"
	"gorm.io/gorm"
)

type commandEnv struct {
	flags *rootFlags
	now   func() time.Time
}

// app is the wired object graph for one command invocation.
type app struct {
	cfg        *config.Config
	database   *gorm.DB
	repos      *db.Repositories
	location   *time.Location
	now        func() time.Time
	format     string
	translator i18n.Translator
	links      services.EducationLinks
	metrics    *metrics.Recorder

	records   *services.RecordService
	settings  *services.SettingsService
	stats     *services.StatsService
	reports   *services.ReportService
	exports   *services.ExportService
	reminders *reminders.Service
}

func (env *commandEnv) open(cmd *cobra.Command) (*app, error) {
	format := strings.ToLower(strings.TrimSpace(env.flags.format))
	switch format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", env.flags.format)
	}

	cfg, err := config.Load(env.flags.configPath)
	if err != nil {
		return nil, err
	}
	if env.flags.dbPath != "" {
		cfg.DBPath = env.flags.dbPath
	}
	if env.flags.language != "" {
		cfg.Language = env.flags.language
	}

	ctx := cmd.Context()
	database, err := db.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	manager, err := i18n.NewManager(cfg.Language)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	location := cfg.Location()
	repos := db.NewRepositories(database, location)
	recorder := metrics.NewRecorder()
	translator := manager.Translator(cfg.Language)

	notifier, err := buildNotifier(cfg, cmd)
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}

	reminderService := reminders.NewService(repos.Reminders, notifier, location).
		WithObserver(recorder).
		WithTranslator(translator)
	records := services.NewRecordService(repos.UserData, location).
		WithClock(env.now).
		WithPredictedPeriodSyncer(reminderService)

	a := &app{
		cfg:        cfg,
		database:   database,
		repos:      repos,
		location:   location,
		now:        env.now,
		format:     format,
		translator: translator,
		links:      services.NewEducationLinks(cfg.EducationBaseURL),
		metrics:    recorder,
		records:    records,
		settings: services.NewSettingsService(repos.UserData, location).
			WithClock(env.now).
			WithPredictedPeriodResyncer(records),
		stats:     services.NewStatsService(records, recorder),
		reports:   services.NewReportService(records).WithClock(env.now),
		exports:   services.NewExportService(records),
		reminders: reminderService,
	}

	if err := a.seedReminderPreferences(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Close flushes metrics and releases the database.
func (a *app) Close() error {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		log.Printf("cli: %v", err)
	}
	return db.Close(a.database)
}

// seedReminderPreferences copies configured reminder defaults into the store
// the first time only, so later CLI changes are not overwritten.
func (a *app) seedReminderPreferences(ctx context.Context) error {
	if raw := strings.TrimSpace(a.cfg.Reminder.Time); raw != "" {
		_, found, err := a.repos.KV.Get(ctx, db.KeyDailyReminderTime)
		if err != nil {
			return err
		}
		if !found {
			reminderTime, err := models.ParseReminderTime(raw)
			if err != nil {
				log.Printf("cli: ignoring configured reminder time %q: %v", raw, err)
			} else if err := a.repos.Reminders.SaveReminderTime(ctx, reminderTime); err != nil {
				return err
			}
		}
	}

	if enabled := a.cfg.Reminder.PredictedPeriodEnabled; enabled != nil {
		_, found, err := a.repos.KV.Get(ctx, db.KeyPredictedReminderEnabled)
		if err != nil {
			return err
		}
		if !found {
			if err := a.repos.Reminders.SavePredictedEnabled(ctx, *enabled); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildNotifier(cfg *config.Config, cmd *cobra.Command) (reminders.Notifier, error) {
	if cfg.Reminder.TelegramBotToken == "" && cfg.Reminder.TelegramChatID == "" {
		return reminders.NewLogNotifier(log.New(cmd.ErrOrStderr(), "", log.LstdFlags)), nil
	}
	notifier, err := reminders.NewTelegramNotifier(cfg.Reminder.TelegramBotToken, cfg.Reminder.TelegramChatID)
	if err != nil {
		return nil, err
	}
	return notifier, nil
}

// run opens the app, hands it to fn and always closes it.
func (env *commandEnv) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := env.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("cli: close database: %v", err)
		}
	}()
	return fn(cmd.Context(), a)
}

func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}
