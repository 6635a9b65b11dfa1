package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Recommendation repository methods

// AddRecommendation сохраняет рекомендацию вместе со связками настроений.
// Дедупликации по содержимому нет: повторная выдача провайдера даёт новую строку.
func (r *Repository) AddRecommendation(rec Recommendation) error {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return err
	}

	tx, err := r.Db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO recommendations (id, title, description, type, link, image_url, tags, duration, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Title, rec.Description, rec.Type, nullableString(rec.Link),
		nullableString(rec.ImageURL), string(tags), nullableString(rec.Duration), rec.Source)
	if err != nil {
		return err
	}

	for _, mood := range rec.ForMoods {
		_, err = tx.Exec(`
			INSERT OR IGNORE INTO recommendation_moods (recommendation_id, mood)
			VALUES (?, ?)
		`, rec.ID, mood)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindForMood возвращает до limit рекомендаций, помеченных данным настроением,
// каждая с отметкой, выполнена ли она пользователем userID
func (r *Repository) FindForMood(mood MoodLabel, userID string, limit int) ([]UserRecommendation, error) {
	rows, err := r.Db.db.Query(`
		SELECT r.id, r.title, r.description, r.type, r.link, r.image_url, r.tags, r.duration,
			r.source, r.created_at,
			(SELECT GROUP_CONCAT(mood) FROM recommendation_moods WHERE recommendation_id = r.id),
			EXISTS(SELECT 1 FROM completions c WHERE c.recommendation_id = r.id AND c.user_id = ?)
		FROM recommendations r
		JOIN recommendation_moods rm ON rm.recommendation_id = r.id
		WHERE rm.mood = ?
		LIMIT ?
	`, userID, mood, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []UserRecommendation
	for rows.Next() {
		rec, completed, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, UserRecommendation{Recommendation: *rec, Completed: completed})
	}
	return recs, rows.Err()
}

func (r *Repository) GetRecommendation(id string) (*Recommendation, error) {
	row := r.Db.db.QueryRow(`
		SELECT r.id, r.title, r.description, r.type, r.link, r.image_url, r.tags, r.duration,
			r.source, r.created_at,
			(SELECT GROUP_CONCAT(mood) FROM recommendation_moods WHERE recommendation_id = r.id),
			0
		FROM recommendations r
		WHERE r.id = ?
	`, id)

	rec, _, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("рекомендация %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// CompleteAndAward отмечает выполнение и начисляет токены одной транзакцией.
// Повторный вызов для той же пары (рекомендация, пользователь) ничего не меняет.
func (r *Repository) CompleteAndAward(recID, userID string, at time.Time, tokens int) (bool, int, error) {
	tx, err := r.Db.db.Begin()
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT OR IGNORE INTO completions (recommendation_id, user_id, completed_at)
		VALUES (?, ?, ?)
	`, recID, userID, at.UTC())
	if err != nil {
		return false, 0, err
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	if inserted == 1 {
		_, err = tx.Exec(`
			UPDATE users
			SET token_balance = token_balance + ?, version = version + 1
			WHERE id = ?
		`, tokens, userID)
		if err != nil {
			return false, 0, err
		}
	}

	var balance int
	if err := tx.QueryRow(`SELECT token_balance FROM users WHERE id = ?`, userID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, fmt.Errorf("пользователь %s: %w", userID, ErrNotFound)
		}
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return inserted == 1, balance, nil
}

// CountCompletionsInRange число выполненных пользователем рекомендаций за период
func (r *Repository) CountCompletionsInRange(userID string, start, end time.Time) (int, error) {
	var count int
	err := r.Db.db.QueryRow(`
		SELECT COUNT(*)
		FROM completions
		WHERE user_id = ? AND completed_at >= ? AND completed_at <= ?
	`, userID, start.UTC(), end.UTC()).Scan(&count)
	return count, err
}

// FindCompletedByUser все рекомендации, выполненные пользователем
func (r *Repository) FindCompletedByUser(userID string) ([]Recommendation, error) {
	rows, err := r.Db.db.Query(`
		SELECT r.id, r.title, r.description, r.type, r.link, r.image_url, r.tags, r.duration,
			r.source, r.created_at,
			(SELECT GROUP_CONCAT(mood) FROM recommendation_moods WHERE recommendation_id = r.id),
			1
		FROM recommendations r
		JOIN completions c ON c.recommendation_id = r.id
		WHERE c.user_id = ?
		ORDER BY c.completed_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		rec, _, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (r *Repository) CountRecommendations() (int, error) {
	var count int
	err := r.Db.db.QueryRow(`SELECT COUNT(*) FROM recommendations`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecommendation(row rowScanner) (*Recommendation, bool, error) {
	var rec Recommendation
	var link, imageURL, duration, moods sql.NullString
	var tags string
	var completed bool

	err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Type, &link, &imageURL,
		&tags, &duration, &rec.Source, &rec.CreatedAt, &moods, &completed)
	if err != nil {
		return nil, false, err
	}

	rec.Link = link.String
	rec.ImageURL = imageURL.String
	rec.Duration = duration.String

	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return nil, false, err
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	if moods.Valid && moods.String != "" {
		for _, m := range strings.Split(moods.String, ",") {
			rec.ForMoods = append(rec.ForMoods, MoodLabel(m))
		}
	}

	return &rec, completed, nil
}
