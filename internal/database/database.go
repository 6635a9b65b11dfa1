package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"mindgarden/internal/logging"
)

type Database struct {
	db *sql.DB
}

func New(path string) (*Database, error) {
	// busy_timeout: пишущие транзакции конкурентных обработчиков ждут, а не падают
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	d := &Database{db: db}
	if err := d.init(); err != nil {
		return nil, err
	}

	logging.Info().Str("path", path).Msg("✅ База данных инициализирована")
	return d, nil
}

func (d *Database) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			streak INTEGER NOT NULL DEFAULT 0 CHECK(streak >= 0),
			last_check_in DATETIME,
			plant_level TEXT NOT NULL DEFAULT 'seed',
			token_balance INTEGER NOT NULL DEFAULT 0 CHECK(token_balance >= 0),
			version INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS moods (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			recorded_at DATETIME NOT NULL,
			mood_score INTEGER NOT NULL CHECK(mood_score >= 1 AND mood_score <= 10),
			mood_label TEXT NOT NULL,
			transcription TEXT,
			sentiment_score REAL,
			sentiment_label TEXT,
			sentiment_emotions TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS recommendations (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			type TEXT NOT NULL,
			link TEXT,
			image_url TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			duration TEXT,
			source TEXT NOT NULL DEFAULT 'seed',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS recommendation_moods (
			recommendation_id TEXT NOT NULL REFERENCES recommendations(id),
			mood TEXT NOT NULL,
			PRIMARY KEY (recommendation_id, mood)
		)`,

		`CREATE TABLE IF NOT EXISTS completions (
			recommendation_id TEXT NOT NULL REFERENCES recommendations(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			completed_at DATETIME NOT NULL,
			UNIQUE(recommendation_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			week_number INTEGER NOT NULL,
			year INTEGER NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			average_mood REAL NOT NULL DEFAULT 0,
			streak_maintained BOOLEAN NOT NULL DEFAULT 0,
			plant_progress INTEGER NOT NULL DEFAULT 0,
			completed_count INTEGER NOT NULL DEFAULT 0,
			generated_at DATETIME NOT NULL,
			url TEXT,
			UNIQUE(user_id, week_number, year)
		)`,

		`CREATE TABLE IF NOT EXISTS community_groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			image_url TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			group_id TEXT NOT NULL REFERENCES community_groups(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			joined_at DATETIME NOT NULL,
			PRIMARY KEY (group_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES community_groups(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_moods_user_date ON moods(user_id, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_rec_moods_mood ON recommendation_moods(mood)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_user ON completions(user_id, completed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id, year, week_number)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_group ON messages(group_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_check_in ON users(last_check_in)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("ошибка создания таблицы: %w", err)
		}
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}
