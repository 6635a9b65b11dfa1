package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config полная конфигурация приложения.
// Загружается слоями: значения по умолчанию, затем переменные окружения MG_*.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	AIService AIServiceConfig `koanf:"aiservice"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	YouTube   YouTubeConfig   `koanf:"youtube"`
	Reports   ReportsConfig   `koanf:"reports"`
	Telegram  TelegramConfig  `koanf:"telegram"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	RequestLimit    int           `koanf:"request_limit"` // запросов в минуту на IP
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type AIServiceConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Timeout      time.Duration `koanf:"timeout"`
}

type YouTubeConfig struct {
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type ReportsConfig struct {
	Dir     string `koanf:"dir"`      // каталог для локально отрендеренных отчётов
	BaseURL string `koanf:"base_url"` // префикс публичных ссылок на отчёты
}

type TelegramConfig struct {
	Token  string `koanf:"token"` // пусто = уведомления выключены
	ChatID int64  `koanf:"chat_id"`
}

// EnvPrefix префикс переменных окружения: MG_SERVER_PORT -> server.port
const EnvPrefix = "MG_"

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			RequestLimit:    120,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "/data/mindgarden.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		AIService: AIServiceConfig{
			URL:     "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Spotify: SpotifyConfig{
			Timeout: 8 * time.Second,
		},
		YouTube: YouTubeConfig{
			Timeout: 8 * time.Second,
		},
		Reports: ReportsConfig{
			Dir:     "/data/reports",
			BaseURL: "/reports",
		},
	}
}

// Load собирает конфигурацию: defaults -> env
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("ошибка загрузки значений по умолчанию: %w", err)
	}

	// MG_SERVER_PORT -> server.port, MG_SPOTIFY_CLIENT_ID -> spotify.client_id
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envTransform переводит имя переменной в путь koanf:
// секция отделяется первым подчёркиванием, остальное - ключ внутри секции.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("MG_AUTH_JWT_SECRET не установлен")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("MG_DATABASE_PATH не может быть пустым")
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("MG_TELEGRAM_CHAT_ID обязателен при включённых уведомлениях")
	}
	return nil
}
