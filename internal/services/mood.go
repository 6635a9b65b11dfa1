package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindgarden/internal/database"
	"mindgarden/internal/engine"
	"mindgarden/internal/logging"
	"mindgarden/internal/metrics"
	"mindgarden/internal/provider/aiservice"
	"mindgarden/internal/utils"
)

type MoodService struct {
	repository *database.Repository
	analyzer   SentimentAnalyzer

	// now подменяется в тестах граничных случаев смены суток
	now func() time.Time
}

func NewMoodService(repo *database.Repository, analyzer SentimentAnalyzer) *MoodService {
	return &MoodService{
		repository: repo,
		analyzer:   analyzer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type CheckInInput struct {
	MoodScore     int
	MoodLabel     database.MoodLabel
	Transcription string
	Sentiment     *database.Sentiment
}

type CheckInResult struct {
	Entry        database.MoodEntry  `json:"entry"`
	Streak       int                 `json:"streak"`
	PlantLevel   database.PlantLevel `json:"plant_level"`
	TokenBalance int                 `json:"token_balance"`
}

// RecordCheckIn записывает настроение и проводит стрик через движок.
// Сначала сохраняется запись настроения, затем реестр: отказ на записи
// не оставляет начисленных токенов без самой записи. Реестр обновляется
// под контролем версии: повторный чек-ин того же дня не меняет стрик
// и не начисляет дневные токены.
func (ms *MoodService) RecordCheckIn(ctx context.Context, userID string, in CheckInInput) (*CheckInResult, error) {
	if _, err := ms.repository.GetOrCreateUser(userID); err != nil {
		return nil, err
	}

	now := ms.now()

	entry := database.MoodEntry{
		ID:            uuid.NewString(),
		UserID:        userID,
		RecordedAt:    now,
		MoodScore:     in.MoodScore,
		MoodLabel:     in.MoodLabel,
		Transcription: in.Transcription,
		Sentiment:     in.Sentiment,
	}
	if err := ms.repository.AddMood(entry); err != nil {
		return nil, fmt.Errorf("сохранение записи настроения: %w", err)
	}

	var outcome engine.Outcome
	user, err := ms.repository.UpdateUser(userID, func(u *database.User) error {
		updated, out := engine.Advance(*u, now)
		outcome = out

		if out.DayCounted {
			updated.TokenBalance += engine.CheckInTokens
		}
		updated.TokenBalance += out.MilestoneBonus

		*u = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CheckInsTotal.WithLabelValues(string(in.MoodLabel)).Inc()
	logging.Info().Str("user", userID).Str("mood", string(in.MoodLabel)).
		Int("streak", user.Streak).
		Msg(utils.GetMoodEmoji(in.MoodLabel) + " Чек-ин записан")
	if outcome.DayCounted {
		metrics.TokensAwardedTotal.WithLabelValues("checkin").Add(engine.CheckInTokens)
	}
	if outcome.MilestoneBonus > 0 {
		metrics.TokensAwardedTotal.WithLabelValues("milestone").Add(float64(outcome.MilestoneBonus))
		logging.Info().Str("user", userID).Int("streak", user.Streak).
			Int("bonus", outcome.MilestoneBonus).Msg("🏆 Бонус за серию чек-инов")
	}

	return &CheckInResult{
		Entry:        entry,
		Streak:       user.Streak,
		PlantLevel:   user.PlantLevel,
		TokenBalance: user.TokenBalance,
	}, nil
}

func (ms *MoodService) GetHistory(userID string, days int) ([]database.MoodEntry, error) {
	if days <= 0 {
		days = 7
	}
	return ms.repository.GetMoodHistory(userID, ms.now(), days)
}

// GetStreak текущее состояние стрика и растения
func (ms *MoodService) GetStreak(userID string) (*database.User, error) {
	return ms.repository.GetOrCreateUser(userID)
}

// AdvanceStreak проводит стрик без записи настроения: тот же движок,
// те же правила начисления токенов, что при обычном чек-ине.
func (ms *MoodService) AdvanceStreak(userID string) (*database.User, error) {
	if _, err := ms.repository.GetOrCreateUser(userID); err != nil {
		return nil, err
	}

	now := ms.now()
	var outcome engine.Outcome

	user, err := ms.repository.UpdateUser(userID, func(u *database.User) error {
		updated, out := engine.Advance(*u, now)
		outcome = out

		if out.DayCounted {
			updated.TokenBalance += engine.CheckInTokens
		}
		updated.TokenBalance += out.MilestoneBonus

		*u = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.DayCounted {
		metrics.TokensAwardedTotal.WithLabelValues("checkin").Add(engine.CheckInTokens)
	}
	if outcome.MilestoneBonus > 0 {
		metrics.TokensAwardedTotal.WithLabelValues("milestone").Add(float64(outcome.MilestoneBonus))
	}
	return user, nil
}

// BreakStreak явный сброс стрика по запросу пользователя
func (ms *MoodService) BreakStreak(userID string) (*database.User, error) {
	return ms.repository.UpdateUser(userID, func(u *database.User) error {
		*u = engine.Reset(*u)
		return nil
	})
}

// AnalyzeVoice передаёт аудиозапись коллаборатору анализа настроения.
// Результат - непрозрачный вход для последующего чек-ина.
func (ms *MoodService) AnalyzeVoice(ctx context.Context, audio []byte, filename string) (*aiservice.SentimentResult, error) {
	if ms.analyzer == nil {
		return nil, fmt.Errorf("анализ настроения не настроен")
	}
	result, err := ms.analyzer.AnalyzeSentiment(ctx, audio, filename)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("aiservice", "failure").Inc()
		return nil, fmt.Errorf("анализ настроения: %w", err)
	}
	metrics.ProviderRequestsTotal.WithLabelValues("aiservice", "success").Inc()
	return result, nil
}
