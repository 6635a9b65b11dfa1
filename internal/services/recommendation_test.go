package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mindgarden/internal/database"
	"mindgarden/internal/provider"
)

func newTestRepo(t *testing.T) *database.Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mindgarden.db")
	db, err := database.New(path)
	if err != nil {
		t.Fatalf("открытие БД: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return database.NewRepository(db)
}

type fakePersonalization struct {
	items       []provider.Item
	err         error
	calls       int
	previousIDs []string
}

func (f *fakePersonalization) GetRecommendations(ctx context.Context, userID, moodLabel string, previousIDs []string) ([]provider.Item, error) {
	f.calls++
	f.previousIDs = previousIDs
	return f.items, f.err
}

type fakeCatalog struct {
	items []provider.Item
	err   error
	calls int
}

func (f *fakeCatalog) GetRecommendations(ctx context.Context, moodLabel string) ([]provider.Item, error) {
	f.calls++
	return f.items, f.err
}

func seedRecommendations(t *testing.T, repo *database.Repository, mood database.MoodLabel, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := repo.AddRecommendation(database.Recommendation{
			ID:       string(rune('a' + i)),
			Title:    "Практика " + string(rune('a'+i)),
			Type:     database.Meditation,
			ForMoods: []database.MoodLabel{mood},
			Tags:     []string{},
			Source:   "seed",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestGetSkipsProvidersWhenCatalogSuffices(t *testing.T) {
	repo := newTestRepo(t)
	seedRecommendations(t, repo, database.Anxious, 6)

	personalization := &fakePersonalization{}
	rs := NewRecommendationService(repo, Providers{Personalization: personalization, ProviderTimeout: time.Second})

	recs, err := rs.Get(context.Background(), "u1", database.Anxious)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 6 {
		t.Fatalf("len = %d, want 6", len(recs))
	}
	if personalization.calls != 0 {
		t.Fatal("при достаточном каталоге провайдеры не должны вызываться")
	}
}

func TestGetUsesPersonalizationFirst(t *testing.T) {
	repo := newTestRepo(t)
	seedRecommendations(t, repo, database.Sad, 2)

	personalization := &fakePersonalization{
		items: []provider.Item{
			{Title: "Вечерняя прогулка", Type: "activity", ForMoods: []string{"sad"}},
			{Title: "Дневник благодарности", Type: "journaling"},
		},
	}
	music := &fakeCatalog{}
	rs := NewRecommendationService(repo, Providers{
		Personalization: personalization,
		Music:           music,
		ProviderTimeout: time.Second,
	})

	recs, err := rs.Get(context.Background(), "u1", database.Sad)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 {
		t.Fatalf("len = %d, want 4 (2 из каталога + 2 от персонализации)", len(recs))
	}
	if personalization.calls != 1 {
		t.Fatalf("personalization calls = %d, want 1", personalization.calls)
	}
	if len(personalization.previousIDs) != 2 {
		t.Fatalf("previousIDs = %v, want 2 элемента", personalization.previousIDs)
	}
	if music.calls != 0 {
		t.Fatal("каталожные провайдеры не должны вызываться при успехе персонализации")
	}
}

func TestGetFallsBackToCatalogsOnPersonalizationFailure(t *testing.T) {
	repo := newTestRepo(t)

	personalization := &fakePersonalization{err: errors.New("сервис недоступен")}
	music := &fakeCatalog{items: []provider.Item{
		{Title: "Спокойный плейлист", Type: "music"},
	}}
	video := &fakeCatalog{items: []provider.Item{
		{Title: "Йога для сна", Type: "video"},
	}}
	rs := NewRecommendationService(repo, Providers{
		Personalization: personalization,
		Music:           music,
		Video:           video,
		ProviderTimeout: time.Second,
	})

	recs, err := rs.Get(context.Background(), "u1", database.Stressed)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if music.calls != 1 || video.calls != 1 {
		t.Fatalf("каталоги должны опрашиваться оба: music=%d video=%d", music.calls, video.calls)
	}
}

func TestGetSurvivesAllProvidersFailing(t *testing.T) {
	repo := newTestRepo(t)
	seedRecommendations(t, repo, database.Depressed, 1)

	rs := NewRecommendationService(repo, Providers{
		Personalization: &fakePersonalization{err: errors.New("down")},
		Music:           &fakeCatalog{err: errors.New("down")},
		Video:           &fakeCatalog{err: errors.New("down")},
		ProviderTimeout: time.Second,
	})

	recs, err := rs.Get(context.Background(), "u1", database.Depressed)
	if err != nil {
		t.Fatalf("отказ провайдеров не должен быть ошибкой вызова: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1 (содержимое каталога)", len(recs))
	}
}

func TestGetNormalizesProviderItems(t *testing.T) {
	repo := newTestRepo(t)

	rs := NewRecommendationService(repo, Providers{
		Personalization: &fakePersonalization{items: []provider.Item{
			{Title: ""}, // пропускается
			{Title: "Практика", Type: "unknown-type", ForMoods: []string{"bogus", "calm"}},
			{Title: "Без настроений", Type: "music"},
		}},
		ProviderTimeout: time.Second,
	})

	recs, err := rs.Get(context.Background(), "u1", database.Calm)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2 (пустой заголовок отброшен)", len(recs))
	}

	for _, rec := range recs {
		switch rec.Title {
		case "Практика":
			if rec.Type != database.Activity {
				t.Fatalf("неизвестный тип должен стать activity, got %s", rec.Type)
			}
			if len(rec.ForMoods) != 1 || rec.ForMoods[0] != database.Calm {
				t.Fatalf("невалидные настроения должны отбрасываться: %v", rec.ForMoods)
			}
		case "Без настроений":
			if len(rec.ForMoods) != 1 || rec.ForMoods[0] != database.Calm {
				t.Fatalf("пустой forMoods должен стать [запрошенное]: %v", rec.ForMoods)
			}
			if rec.Tags == nil || len(rec.Tags) != 0 {
				t.Fatalf("tags = %v, want пустой список", rec.Tags)
			}
		}
	}
}

func TestMarkCompletedIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	seedRecommendations(t, repo, database.Neutral, 1)

	rs := NewRecommendationService(repo, Providers{})

	balance, err := rs.MarkCompleted(context.Background(), "u1", "a")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}

	balance, err = rs.MarkCompleted(context.Background(), "u1", "a")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 5 {
		t.Fatalf("повторное выполнение: balance = %d, want 5", balance)
	}
}

func TestMarkCompletedConcurrentAwardsOnce(t *testing.T) {
	repo := newTestRepo(t)
	seedRecommendations(t, repo, database.Neutral, 1)

	rs := NewRecommendationService(repo, Providers{})

	// одна и та же рекомендация из нескольких горутин: награда ровно одна
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := rs.MarkCompleted(context.Background(), "u1", "a"); err != nil {
				t.Errorf("выполнение: %v", err)
			}
		}()
	}
	wg.Wait()

	user, err := repo.GetUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.TokenBalance != 5 {
		t.Fatalf("balance = %d, want 5 (награда дважды не начисляется)", user.TokenBalance)
	}
}

func TestMarkCompletedUnknownRecommendation(t *testing.T) {
	repo := newTestRepo(t)
	rs := NewRecommendationService(repo, Providers{})

	_, err := rs.MarkCompleted(context.Background(), "u1", "ghost")
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
