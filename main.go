package main

import (
	"os"
	"os/signal"
	"syscall"

	"mindgarden/internal/app"
	"mindgarden/internal/config"
	"mindgarden/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("❌ Ошибка загрузки конфигурации")
	}

	application, err := app.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("❌ Ошибка создания приложения")
	}

	if err := application.Start(); err != nil {
		logging.Fatal().Err(err).Msg("❌ Ошибка запуска приложения")
	}
	defer application.Stop()

	waitForShutdown()
	logging.Info().Msg("👋 Приложение завершает работу")
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}
