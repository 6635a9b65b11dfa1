package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"mindgarden/internal/database"
	"mindgarden/internal/logging"
	"mindgarden/internal/metrics"
	"mindgarden/internal/provider/aiservice"
	"mindgarden/internal/utils"
)

type ReportService struct {
	repository *database.Repository
	providers  Providers
	renderer   *LocalRenderer

	now func() time.Time
}

func NewReportService(repo *database.Repository, providers Providers, renderer *LocalRenderer) *ReportService {
	return &ReportService{
		repository: repo,
		providers:  providers,
		renderer:   renderer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GenerateIfAbsent возвращает отчёт за неделю, создавая его при отсутствии.
// Уникальность (user, week, year) гарантирует хранилище: проигравший
// гонку вызов получает строку победителя, а не ошибку.
func (rp *ReportService) GenerateIfAbsent(ctx context.Context, userID string, weekNumber, year int, trigger string) (*database.Report, error) {
	if existing, err := rp.repository.GetReport(userID, weekNumber, year); err == nil {
		return existing, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	user, err := rp.repository.GetUser(userID)
	if err != nil {
		return nil, err
	}

	startDate, endDate := utils.WeekRange(weekNumber, year)

	averageMood, _, err := rp.repository.GetAverageMood(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	completedCount, err := rp.repository.CountCompletionsInRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	report := &database.Report{
		ID:                 uuid.NewString(),
		UserID:             userID,
		WeekNumber:         weekNumber,
		Year:               year,
		StartDate:          startDate,
		EndDate:            endDate,
		AverageMood:        averageMood,
		StreakMaintained:   user.Streak > 0,
		PlantProgress:      database.PlantProgress[user.PlantLevel],
		CompletedRecsCount: completedCount,
		GeneratedAt:        rp.now(),
	}

	stored, created, err := rp.repository.CreateReportIfAbsent(report)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.ReportsGeneratedTotal.WithLabelValues(trigger).Inc()

		if url := rp.render(ctx, stored, user); url != "" {
			if err := rp.repository.SetReportURL(stored.ID, url); err != nil {
				logging.Error().Err(err).Str("report", stored.ID).Msg("❌ Ошибка сохранения ссылки отчёта")
			} else {
				stored.URL = url
			}
		}
	}

	return stored, nil
}

// GenerateCurrent отчёт за текущую неделю
func (rp *ReportService) GenerateCurrent(ctx context.Context, userID, trigger string) (*database.Report, error) {
	weekNumber, year := utils.CurrentWeek(rp.now())
	return rp.GenerateIfAbsent(ctx, userID, weekNumber, year, trigger)
}

func (rp *ReportService) List(userID string, limit int) ([]database.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	return rp.repository.ListReports(userID, limit)
}

// render пытается расширенный рендеринг, при отказе - локальный базовый.
// Отказ обоих оставляет отчёт без ссылки и не является ошибкой.
func (rp *ReportService) render(ctx context.Context, report *database.Report, user *database.User) string {
	moods, err := rp.repository.GetMoodsInRange(report.UserID, report.StartDate, report.EndDate)
	if err != nil {
		logging.Error().Err(err).Str("report", report.ID).Msg("❌ Ошибка чтения настроений для отчёта")
		moods = nil
	}

	if rp.providers.Enhanced != nil {
		callCtx, cancel := context.WithTimeout(ctx, rp.providers.ProviderTimeout)
		url, err := rp.providers.Enhanced.GenerateReport(callCtx, rp.buildPayload(report, user, moods))
		cancel()

		if err == nil && url != "" {
			metrics.ProviderRequestsTotal.WithLabelValues("renderer", "success").Inc()
			return url
		}
		metrics.ProviderRequestsTotal.WithLabelValues("renderer", "failure").Inc()
		logging.Warn().Err(err).Str("report", report.ID).
			Msg("⚠️ Внешний рендеринг недоступен, используем базовый")
	}

	if rp.renderer == nil {
		return ""
	}
	url, err := rp.renderer.Render(report, user, moods)
	if err != nil {
		logging.Warn().Err(err).Str("report", report.ID).Msg("⚠️ Базовый рендеринг тоже не удался")
		return ""
	}
	return url
}

func (rp *ReportService) buildPayload(report *database.Report, user *database.User, moods []database.MoodEntry) aiservice.ReportPayload {
	moodEntries := make([]map[string]interface{}, 0, len(moods))
	for _, m := range moods {
		moodEntries = append(moodEntries, map[string]interface{}{
			"date":      m.RecordedAt.Format(time.RFC3339),
			"moodScore": m.MoodScore,
			"moodLabel": string(m.MoodLabel),
		})
	}

	completed, err := rp.repository.FindCompletedByUser(report.UserID)
	if err != nil {
		logging.Warn().Err(err).Msg("⚠️ Ошибка чтения выполненных рекомендаций для отчёта")
	}
	completedPayload := make([]map[string]interface{}, 0, len(completed))
	for _, rec := range completed {
		completedPayload = append(completedPayload, map[string]interface{}{
			"title": rec.Title,
			"type":  string(rec.Type),
		})
	}

	return aiservice.ReportPayload{
		UserID:                   report.UserID,
		WeekNumber:               report.WeekNumber,
		Year:                     report.Year,
		StartDate:                report.StartDate.Format("2006-01-02"),
		EndDate:                  report.EndDate.Format("2006-01-02"),
		MoodEntries:              moodEntries,
		CompletedRecommendations: completedPayload,
		Streak: map[string]interface{}{
			"current":    user.Streak,
			"plantLevel": string(user.PlantLevel),
			"maintained": user.Streak > 0,
		},
	}
}

// GenerateAllDue еженедельный проход по всем пользователям.
// Ошибка одного пользователя логируется и не останавливает пакет.
func (rp *ReportService) GenerateAllDue(ctx context.Context) (generated, failed int) {
	userIDs, err := rp.repository.ListUserIDs()
	if err != nil {
		logging.Error().Err(err).Msg("❌ Ошибка перечисления пользователей для отчётов")
		return 0, 0
	}

	weekNumber, year := utils.CurrentWeek(rp.now())

	for _, userID := range userIDs {
		if _, err := rp.GenerateIfAbsent(ctx, userID, weekNumber, year, "scheduled"); err != nil {
			failed++
			logging.Error().Err(err).Str("user", userID).Msg("❌ Ошибка генерации отчёта")
			continue
		}
		generated++
	}

	logging.Info().Int("generated", generated).Int("failed", failed).
		Int("week", weekNumber).Int("year", year).Msg("📊 Еженедельная генерация отчётов завершена")
	return generated, failed
}
