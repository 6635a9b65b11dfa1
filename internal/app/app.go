package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"mindgarden/internal/config"
	"mindgarden/internal/database"
	"mindgarden/internal/logging"
	"mindgarden/internal/metrics"
	"mindgarden/internal/provider/aiservice"
	"mindgarden/internal/provider/spotify"
	"mindgarden/internal/provider/youtube"
	"mindgarden/internal/server"
	"mindgarden/internal/services"
	"mindgarden/internal/telegram"
)

// staleStreakAge стрик считается прерванным после 48 часов без чек-ина
const staleStreakAge = 48 * time.Hour

type Application struct {
	config     *config.Config
	db         *database.Database
	services   *services.ServiceManager
	server     *server.Server
	cron       *cron.Cron
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func New(cfg *config.Config) (*Application, error) {
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	renderer := services.NewLocalRenderer(cfg.Reports.Dir, cfg.Reports.BaseURL)
	serviceManager := services.NewServiceManager(db, buildProviders(cfg), renderer)

	if cfg.Telegram.Token != "" {
		notifier, err := telegram.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logging.Warn().Err(err).Msg("⚠️ Telegram-уведомления недоступны")
		} else {
			serviceManager.SetNotificationSender(notifier)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config:     cfg,
		db:         db,
		services:   serviceManager,
		server:     server.New(cfg, serviceManager),
		cron:       cron.New(),
		ctx:        ctx,
		cancelFunc: cancel,
	}

	app.setupCronJobs()

	return app, nil
}

// buildProviders собирает внешних коллабораторов; ярус без учётных
// данных остаётся nil и пропускается при оркестрации.
func buildProviders(cfg *config.Config) services.Providers {
	providers := services.Providers{
		ProviderTimeout: cfg.AIService.Timeout,
	}

	if cfg.AIService.URL != "" {
		ai := aiservice.New(cfg.AIService.URL, cfg.AIService.Timeout)
		providers.Personalization = ai
		providers.Enhanced = ai
		providers.Analyzer = ai
	}
	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		providers.Music = spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.Timeout)
	} else {
		logging.Warn().Msg("⚠️ Spotify не настроен, музыкальный каталог отключён")
	}
	if cfg.YouTube.APIKey != "" {
		providers.Video = youtube.New(cfg.YouTube.APIKey, cfg.YouTube.Timeout)
	} else {
		logging.Warn().Msg("⚠️ YouTube не настроен, видеокаталог отключён")
	}

	return providers
}

func (a *Application) Start() error {
	logging.Info().Msg("🚀 Запуск приложения...")

	if err := a.services.Repository().SeedIfEmpty(); err != nil {
		return err
	}

	go func() {
		if err := a.server.Start(); err != nil {
			logging.Fatal().Err(err).Msg("❌ Ошибка HTTP-сервера")
		}
	}()

	a.cron.Start()

	logging.Info().Str("port", a.config.Server.Port).Msg("✅ Приложение запущено")
	return nil
}

func (a *Application) Stop() error {
	logging.Info().Msg("🛑 Остановка приложения...")

	a.cancelFunc()

	cronCtx := a.cron.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("⚠️ Ошибка остановки HTTP-сервера")
	}

	if err := a.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("⚠️ Ошибка закрытия БД")
	}

	logging.Info().Msg("✅ Приложение остановлено")
	return nil
}

func (a *Application) setupCronJobs() {
	// Еженедельные отчёты в воскресенье 01:00 UTC
	_, err := a.cron.AddFunc("0 1 * * 0", func() {
		logging.Info().Msg("📊 Еженедельная генерация отчётов...")
		generated, failed := a.services.Report.GenerateAllDue(a.ctx)
		a.services.Notification.SendWeeklyDigest(generated, failed)
	})
	if err != nil {
		panic(err)
	}

	// Ежедневная чистка прерванных стриков в 02:00 UTC
	_, err = a.cron.AddFunc("0 2 * * *", func() {
		cutoff := time.Now().UTC().Add(-staleStreakAge)
		reset, err := a.services.Repository().ResetStaleStreaks(cutoff)
		if err != nil {
			logging.Error().Err(err).Msg("❌ Ошибка чистки стриков")
			return
		}
		if reset > 0 {
			metrics.StreaksResetTotal.Add(float64(reset))
			logging.Info().Int64("reset", reset).Msg("🌰 Прерванные стрики обнулены")
		}
		a.services.Notification.SendSweepSummary(reset)
	})
	if err != nil {
		panic(err)
	}
}
