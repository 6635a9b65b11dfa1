package database

import (
	"database/sql"
	"time"

	json "github.com/goccy/go-json"
)

// Mood repository methods

func (r *Repository) AddMood(entry MoodEntry) error {
	var sentimentScore, sentimentLabel, emotions interface{}
	if entry.Sentiment != nil {
		sentimentScore = entry.Sentiment.Score
		sentimentLabel = entry.Sentiment.Label
		if len(entry.Sentiment.Emotions) > 0 {
			raw, err := json.Marshal(entry.Sentiment.Emotions)
			if err != nil {
				return err
			}
			emotions = string(raw)
		}
	}

	_, err := r.Db.db.Exec(`
		INSERT INTO moods (id, user_id, recorded_at, mood_score, mood_label, transcription,
			sentiment_score, sentiment_label, sentiment_emotions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.RecordedAt.UTC(), entry.MoodScore, entry.MoodLabel,
		nullableString(entry.Transcription), sentimentScore, sentimentLabel, emotions)
	return err
}

func (r *Repository) GetMoodsInRange(userID string, start, end time.Time) ([]MoodEntry, error) {
	rows, err := r.Db.db.Query(`
		SELECT id, user_id, recorded_at, mood_score, mood_label, transcription,
			sentiment_score, sentiment_label, sentiment_emotions
		FROM moods
		WHERE user_id = ? AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at DESC
	`, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMoods(rows)
}

// GetMoodHistory записи за последние days дней от опорного момента now
func (r *Repository) GetMoodHistory(userID string, now time.Time, days int) ([]MoodEntry, error) {
	since := now.UTC().AddDate(0, 0, -days)
	return r.GetMoodsInRange(userID, since, now.UTC())
}

// GetAverageMood среднее значение mood_score за период; 0 при отсутствии записей
func (r *Repository) GetAverageMood(userID string, start, end time.Time) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.Db.db.QueryRow(`
		SELECT AVG(mood_score), COUNT(*)
		FROM moods
		WHERE user_id = ? AND recorded_at >= ? AND recorded_at <= ?
	`, userID, start.UTC(), end.UTC()).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}

	if !avg.Valid {
		return 0, 0, nil
	}
	return avg.Float64, count, nil
}

func scanMoods(rows *sql.Rows) ([]MoodEntry, error) {
	var entries []MoodEntry
	for rows.Next() {
		var e MoodEntry
		var transcription sql.NullString
		var score sql.NullFloat64
		var label sql.NullString
		var emotions sql.NullString

		err := rows.Scan(&e.ID, &e.UserID, &e.RecordedAt, &e.MoodScore, &e.MoodLabel,
			&transcription, &score, &label, &emotions)
		if err != nil {
			return nil, err
		}

		e.Transcription = transcription.String
		if score.Valid || label.Valid {
			s := &Sentiment{Score: score.Float64, Label: label.String}
			if emotions.Valid {
				if err := json.Unmarshal([]byte(emotions.String), &s.Emotions); err != nil {
					return nil, err
				}
			}
			e.Sentiment = s
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
