package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// Report repository methods

// CreateReportIfAbsent атомарно вставляет отчёт под уникальным ключом
// (user_id, week_number, year). Проигравший гонку получает строку победителя.
func (r *Repository) CreateReportIfAbsent(report *Report) (*Report, bool, error) {
	res, err := r.Db.db.Exec(`
		INSERT INTO reports (id, user_id, week_number, year, start_date, end_date,
			average_mood, streak_maintained, plant_progress, completed_count, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_number, year) DO NOTHING
	`, report.ID, report.UserID, report.WeekNumber, report.Year,
		report.StartDate.UTC(), report.EndDate.UTC(), report.AverageMood,
		report.StreakMaintained, report.PlantProgress, report.CompletedRecsCount,
		report.GeneratedAt.UTC())
	if err != nil {
		return nil, false, err
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	stored, err := r.GetReport(report.UserID, report.WeekNumber, report.Year)
	if err != nil {
		return nil, false, err
	}
	return stored, inserted == 1, nil
}

func (r *Repository) GetReport(userID string, weekNumber, year int) (*Report, error) {
	row := r.Db.db.QueryRow(`
		SELECT id, user_id, week_number, year, start_date, end_date, average_mood,
			streak_maintained, plant_progress, completed_count, generated_at, url
		FROM reports
		WHERE user_id = ? AND week_number = ? AND year = ?
	`, userID, weekNumber, year)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("отчёт %s/%d/%d: %w", userID, year, weekNumber, ErrNotFound)
	}
	return report, err
}

func (r *Repository) ListReports(userID string, limit int) ([]Report, error) {
	rows, err := r.Db.db.Query(`
		SELECT id, user_id, week_number, year, start_date, end_date, average_mood,
			streak_maintained, plant_progress, completed_count, generated_at, url
		FROM reports
		WHERE user_id = ?
		ORDER BY year DESC, week_number DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

// SetReportURL выставляет ссылку один раз после рендеринга
func (r *Repository) SetReportURL(reportID, url string) error {
	_, err := r.Db.db.Exec(`
		UPDATE reports SET url = ? WHERE id = ? AND url IS NULL
	`, url, reportID)
	return err
}

func scanReport(row rowScanner) (*Report, error) {
	var report Report
	var url sql.NullString

	err := row.Scan(&report.ID, &report.UserID, &report.WeekNumber, &report.Year,
		&report.StartDate, &report.EndDate, &report.AverageMood, &report.StreakMaintained,
		&report.PlantProgress, &report.CompletedRecsCount, &report.GeneratedAt, &url)
	if err != nil {
		return nil, err
	}

	report.URL = url.String
	return &report, nil
}
