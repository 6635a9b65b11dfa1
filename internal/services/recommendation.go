package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindgarden/internal/database"
	"mindgarden/internal/engine"
	"mindgarden/internal/logging"
	"mindgarden/internal/metrics"
	"mindgarden/internal/provider"
)

const (
	// minResults порог, ниже которого включаются внешние провайдеры
	minResults = 5
	// maxResults максимум элементов в ответе
	maxResults = 10
)

type RecommendationService struct {
	repository *database.Repository
	providers  Providers

	now func() time.Time
}

func NewRecommendationService(repo *database.Repository, providers Providers) *RecommendationService {
	return &RecommendationService{
		repository: repo,
		providers:  providers,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get рекомендации под настроение. Если в каталоге меньше minResults,
// движок поднимается по ярусам провайдеров: сперва персонализация,
// при её отказе - оба каталожных поиска параллельно. Отказ любого
// провайдера никогда не валит вызов: возвращается то, что есть в каталоге.
func (rs *RecommendationService) Get(ctx context.Context, userID string, mood database.MoodLabel) ([]database.UserRecommendation, error) {
	recs, err := rs.repository.FindForMood(mood, userID, maxResults)
	if err != nil {
		return nil, err
	}

	if len(recs) < minResults {
		previousIDs := make([]string, 0, len(recs))
		for _, rec := range recs {
			previousIDs = append(previousIDs, rec.ID)
		}

		rs.escalate(ctx, userID, mood, previousIDs)

		recs, err = rs.repository.FindForMood(mood, userID, maxResults)
		if err != nil {
			return nil, err
		}
	}

	return recs, nil
}

// escalate внешние ярусы; все ошибки гасятся здесь
func (rs *RecommendationService) escalate(ctx context.Context, userID string, mood database.MoodLabel, previousIDs []string) {
	if rs.providers.Personalization != nil {
		callCtx, cancel := context.WithTimeout(ctx, rs.providers.ProviderTimeout)
		items, err := rs.providers.Personalization.GetRecommendations(callCtx, userID, string(mood), previousIDs)
		cancel()

		if err == nil {
			metrics.ProviderRequestsTotal.WithLabelValues("personalization", "success").Inc()
			rs.persistItems(items, mood, "aiservice")
			return
		}

		metrics.ProviderRequestsTotal.WithLabelValues("personalization", "failure").Inc()
		logging.Warn().Err(err).Str("mood", string(mood)).
			Msg("⚠️ Персонализация недоступна, переходим к каталожным провайдерам")
	}

	rs.queryCatalogs(ctx, mood)
}

// queryCatalogs музыкальный и видео-поиск параллельно;
// отказ одного провайдера не мешает другому
func (rs *RecommendationService) queryCatalogs(ctx context.Context, mood database.MoodLabel) {
	type catalog struct {
		name   string
		client CatalogProvider
		source string
	}

	catalogs := []catalog{
		{"spotify", rs.providers.Music, "spotify"},
		{"youtube", rs.providers.Video, "youtube"},
	}

	results := make([][]provider.Item, len(catalogs))
	var wg sync.WaitGroup

	for i, cat := range catalogs {
		if cat.client == nil {
			continue
		}
		wg.Add(1)
		go func(i int, cat catalog) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, rs.providers.ProviderTimeout)
			defer cancel()

			items, err := cat.client.GetRecommendations(callCtx, string(mood))
			if err != nil {
				metrics.ProviderRequestsTotal.WithLabelValues(cat.name, "failure").Inc()
				logging.Warn().Err(err).Str("provider", cat.name).Msg("⚠️ Каталожный провайдер недоступен")
				return
			}
			metrics.ProviderRequestsTotal.WithLabelValues(cat.name, "success").Inc()
			results[i] = items
		}(i, cat)
	}
	wg.Wait()

	for i, items := range results {
		rs.persistItems(items, mood, catalogs[i].source)
	}
}

// persistItems нормализует и сохраняет элементы провайдера:
// пустой forMoods становится [mood], пустые теги - пустым списком
func (rs *RecommendationService) persistItems(items []provider.Item, mood database.MoodLabel, source string) {
	for _, item := range items {
		if item.Title == "" {
			continue
		}

		rec := database.Recommendation{
			ID:          uuid.NewString(),
			Title:       item.Title,
			Description: item.Description,
			Type:        normalizeType(item.Type),
			Link:        item.Link,
			ImageURL:    item.ImageURL,
			Duration:    item.Duration,
			Tags:        item.Tags,
			Source:      source,
		}
		if rec.Tags == nil {
			rec.Tags = []string{}
		}

		for _, m := range item.ForMoods {
			if database.ValidMoodLabel(m) {
				rec.ForMoods = append(rec.ForMoods, database.MoodLabel(m))
			}
		}
		if len(rec.ForMoods) == 0 {
			rec.ForMoods = []database.MoodLabel{mood}
		}

		if err := rs.repository.AddRecommendation(rec); err != nil {
			logging.Error().Err(err).Str("title", rec.Title).Msg("❌ Ошибка сохранения рекомендации")
		}
	}
}

func normalizeType(t string) database.RecommendationType {
	switch database.RecommendationType(t) {
	case database.Music, database.Video, database.Activity, database.Breathing,
		database.Meditation, database.Affirmation, database.Journaling:
		return database.RecommendationType(t)
	default:
		return database.Activity
	}
}

// MarkCompleted отмечает рекомендацию выполненной и начисляет токены.
// Идемпотентно: повторный вызов возвращает текущий баланс без начисления.
func (rs *RecommendationService) MarkCompleted(ctx context.Context, userID, recommendationID string) (int, error) {
	if _, err := rs.repository.GetRecommendation(recommendationID); err != nil {
		return 0, err
	}
	if _, err := rs.repository.GetOrCreateUser(userID); err != nil {
		return 0, err
	}

	awarded, balance, err := rs.repository.CompleteAndAward(
		recommendationID, userID, rs.now(), engine.CompletionTokens)
	if err != nil {
		return 0, err
	}

	if awarded {
		metrics.TokensAwardedTotal.WithLabelValues("completion").Add(engine.CompletionTokens)
	}
	return balance, nil
}
