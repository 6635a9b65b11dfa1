package services

import (
	"context"
	"testing"
	"time"

	"mindgarden/internal/database"
)

func TestRecordCheckInFirstOfDay(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)
	ms.now = fixedClock("2026-03-10T09:00:00Z")

	result, err := ms.RecordCheckIn(context.Background(), "u1", CheckInInput{
		MoodScore: 7,
		MoodLabel: database.Happy,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Streak != 1 {
		t.Fatalf("streak = %d, want 1", result.Streak)
	}
	if result.PlantLevel != database.Sprout {
		t.Fatalf("plant = %s, want sprout", result.PlantLevel)
	}
	if result.TokenBalance != 5 {
		t.Fatalf("balance = %d, want 5 за первый чек-ин дня", result.TokenBalance)
	}
	if result.Entry.MoodScore != 7 || result.Entry.MoodLabel != database.Happy {
		t.Fatalf("entry: %+v", result.Entry)
	}

	history, err := ms.GetHistory("u1", 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("записей: %d, want 1", len(history))
	}
}

func TestRecordCheckInSameDayNoDoubleAward(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)
	ms.now = fixedClock("2026-03-10T09:00:00Z")

	if _, err := ms.RecordCheckIn(context.Background(), "u1", CheckInInput{
		MoodScore: 7, MoodLabel: database.Happy,
	}); err != nil {
		t.Fatal(err)
	}

	ms.now = fixedClock("2026-03-10T20:00:00Z")
	result, err := ms.RecordCheckIn(context.Background(), "u1", CheckInInput{
		MoodScore: 4, MoodLabel: database.Anxious,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Streak != 1 {
		t.Fatalf("streak = %d, want 1 (тот же день)", result.Streak)
	}
	if result.TokenBalance != 5 {
		t.Fatalf("balance = %d, want 5: повтор дня не начисляет токены", result.TokenBalance)
	}

	// но запись настроения сохраняется
	history, _ := ms.GetHistory("u1", 7)
	if len(history) != 2 {
		t.Fatalf("записей: %d, want 2", len(history))
	}
}

func TestRecordCheckInMoodWriteFailureLeavesLedger(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)
	ms.now = fixedClock("2026-03-10T09:00:00Z")

	// оценка 0 нарушает CHECK в таблице moods: запись не сохраняется,
	// реестр при этом не должен быть проведён
	if _, err := ms.RecordCheckIn(context.Background(), "u1", CheckInInput{
		MoodScore: 0, MoodLabel: database.Happy,
	}); err == nil {
		t.Fatal("ожидалась ошибка сохранения записи")
	}

	user, err := repo.GetUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Streak != 0 || user.TokenBalance != 0 {
		t.Fatalf("реестр без записи настроения не проводится: %+v", user)
	}
}

func TestGetHistoryWindow(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)
	ms.now = fixedClock("2026-03-10T09:00:00Z")

	if _, err := repo.GetOrCreateUser("u1"); err != nil {
		t.Fatal(err)
	}
	for i, offset := range []int{-1, -8} {
		if err := repo.AddMood(database.MoodEntry{
			ID: string(rune('a' + i)), UserID: "u1",
			RecordedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset),
			MoodScore:  6, MoodLabel: database.Calm,
		}); err != nil {
			t.Fatal(err)
		}
	}

	// окно считается от часов сервиса, не от настоящего времени
	history, err := ms.GetHistory("u1", 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("записей: %d, want 1 (восьмидневная вне окна)", len(history))
	}
	if history[0].ID != "a" {
		t.Fatalf("id = %s, want a", history[0].ID)
	}
}

func TestRecordCheckInMilestoneWeek(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)

	// шестидневная серия, затем чек-ин седьмого дня
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	checkIn := start.AddDate(0, 0, 5)
	if _, err := repo.GetOrCreateUser("u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpdateUser("u1", func(u *database.User) error {
		u.Streak = 6
		u.PlantLevel = database.Leaf
		u.TokenBalance = 30
		u.LastCheckIn = &checkIn
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ms.now = func() time.Time { return start.AddDate(0, 0, 6) }
	result, err := ms.RecordCheckIn(context.Background(), "u1", CheckInInput{
		MoodScore: 8, MoodLabel: database.Joyful,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Streak != 7 {
		t.Fatalf("streak = %d, want 7", result.Streak)
	}
	if result.PlantLevel != database.Flower {
		t.Fatalf("plant = %s, want flower", result.PlantLevel)
	}
	// 30 + 5 за день + 15 за порог
	if result.TokenBalance != 50 {
		t.Fatalf("balance = %d, want 50", result.TokenBalance)
	}
}

func TestBreakStreak(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)
	ms.now = fixedClock("2026-03-10T09:00:00Z")

	if _, err := ms.RecordCheckIn(context.Background(), "u1", CheckInInput{
		MoodScore: 7, MoodLabel: database.Calm,
	}); err != nil {
		t.Fatal(err)
	}

	user, err := ms.BreakStreak("u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Streak != 0 || user.PlantLevel != database.Seed {
		t.Fatalf("после сброса: %+v", user)
	}
	// токены сброс не трогает
	if user.TokenBalance != 5 {
		t.Fatalf("balance = %d, want 5", user.TokenBalance)
	}
}

func TestAdvanceStreakWithoutMoodEntry(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)
	ms.now = fixedClock("2026-03-10T09:00:00Z")

	user, err := ms.AdvanceStreak("u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Streak != 1 || user.TokenBalance != 5 {
		t.Fatalf("после проводки: %+v", user)
	}

	history, _ := ms.GetHistory("u1", 7)
	if len(history) != 0 {
		t.Fatalf("проводка стрика не должна создавать записей настроения: %d", len(history))
	}
}

func TestAnalyzeVoiceWithoutAnalyzer(t *testing.T) {
	repo := newTestRepo(t)
	ms := NewMoodService(repo, nil)

	if _, err := ms.AnalyzeVoice(context.Background(), []byte("audio"), "note.webm"); err == nil {
		t.Fatal("без анализатора ожидается ошибка")
	}
}
