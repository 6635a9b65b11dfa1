package services

import (
	"context"
	"time"

	"mindgarden/internal/database"
	"mindgarden/internal/provider"
	"mindgarden/internal/provider/aiservice"
)

// PersonalizationProvider первый ярус внешних рекомендаций
type PersonalizationProvider interface {
	GetRecommendations(ctx context.Context, userID, moodLabel string, previousIDs []string) ([]provider.Item, error)
}

// CatalogProvider каталожный поиск по настроению (музыка, видео)
type CatalogProvider interface {
	GetRecommendations(ctx context.Context, moodLabel string) ([]provider.Item, error)
}

// EnhancedRenderer внешний рендеринг отчёта
type EnhancedRenderer interface {
	GenerateReport(ctx context.Context, p aiservice.ReportPayload) (string, error)
}

// SentimentAnalyzer транскрипция и анализ голосовой записи
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, audio []byte, filename string) (*aiservice.SentimentResult, error)
}

// NotificationSender интерфейс для отправки уведомлений
type NotificationSender interface {
	SendMessage(text string) error
}

// Providers внешние зависимости движка; любое поле может быть nil -
// соответствующий ярус просто пропускается
type Providers struct {
	Personalization PersonalizationProvider
	Music           CatalogProvider
	Video           CatalogProvider
	Enhanced        EnhancedRenderer
	Analyzer        SentimentAnalyzer

	// ProviderTimeout ограничивает каждый внешний вызов
	ProviderTimeout time.Duration
}

type ServiceManager struct {
	Mood           *MoodService
	Recommendation *RecommendationService
	Report         *ReportService
	Reward         *RewardService
	Community      *CommunityService
	Notification   *NotificationService
	repository     *database.Repository
}

func NewServiceManager(db *database.Database, providers Providers, renderer *LocalRenderer) *ServiceManager {
	repo := database.NewRepository(db)

	if providers.ProviderTimeout <= 0 {
		providers.ProviderTimeout = 10 * time.Second
	}

	return &ServiceManager{
		Mood:           NewMoodService(repo, providers.Analyzer),
		Recommendation: NewRecommendationService(repo, providers),
		Report:         NewReportService(repo, providers, renderer),
		Reward:         NewRewardService(repo),
		Community:      NewCommunityService(repo),
		Notification:   nil,
		repository:     repo,
	}
}

func (sm *ServiceManager) SetNotificationSender(sender NotificationSender) {
	sm.Notification = NewNotificationService(sender)
}

func (sm *ServiceManager) Repository() *database.Repository {
	return sm.repository
}
