package engine

import (
	"testing"
	"time"

	"mindgarden/internal/database"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func userAt(streak int, lastCheckIn *time.Time) database.User {
	return database.User{
		ID:          "u1",
		Streak:      streak,
		LastCheckIn: lastCheckIn,
		PlantLevel:  PlantLevelFor(streak),
	}
}

func TestAdvanceFirstCheckIn(t *testing.T) {
	now := ts("2026-03-10T09:00:00Z")

	u, out := Advance(userAt(0, nil), now)

	if u.Streak != 1 {
		t.Fatalf("streak = %d, want 1", u.Streak)
	}
	if !out.DayCounted {
		t.Fatal("первый чек-ин должен считаться новым днём")
	}
	if u.PlantLevel != database.Sprout {
		t.Fatalf("plant = %s, want sprout", u.PlantLevel)
	}
	if u.LastCheckIn == nil || !u.LastCheckIn.Equal(now) {
		t.Fatalf("last check-in = %v, want %v", u.LastCheckIn, now)
	}
}

func TestAdvanceNextDayExtendsStreak(t *testing.T) {
	last := ts("2026-03-10T22:00:00Z")
	now := ts("2026-03-11T08:00:00Z") // через 10 часов, но дата сменилась

	u, out := Advance(userAt(3, &last), now)

	if u.Streak != 4 {
		t.Fatalf("streak = %d, want 4", u.Streak)
	}
	if !out.DayCounted {
		t.Fatal("чек-ин нового дня должен продлевать стрик")
	}
}

func TestAdvanceSameDayIsNoop(t *testing.T) {
	last := ts("2026-03-10T08:00:00Z")
	now := ts("2026-03-10T21:00:00Z")

	u, out := Advance(userAt(5, &last), now)

	if u.Streak != 5 {
		t.Fatalf("streak = %d, want 5 (повтор того же дня)", u.Streak)
	}
	if out.DayCounted {
		t.Fatal("повторный чек-ин того же дня не должен считаться новым днём")
	}
	if out.MilestoneBonus != 0 {
		t.Fatalf("bonus = %d, want 0", out.MilestoneBonus)
	}
	if !u.LastCheckIn.Equal(now) {
		t.Fatal("время чек-ина должно обновляться даже при повторе")
	}
}

func TestAdvanceGapOver48HoursResets(t *testing.T) {
	last := ts("2026-03-10T08:00:00Z")
	now := ts("2026-03-12T08:00:01Z") // 48 часов и секунда

	u, out := Advance(userAt(20, &last), now)

	if u.Streak != 1 {
		t.Fatalf("streak = %d, want 1 после разрыва", u.Streak)
	}
	if !out.DayCounted {
		t.Fatal("чек-ин после разрыва начинает новую серию")
	}
	if u.PlantLevel != database.Sprout {
		t.Fatalf("plant = %s, want sprout", u.PlantLevel)
	}
}

func TestAdvanceExactly48HoursKeepsStreak(t *testing.T) {
	last := ts("2026-03-10T08:00:00Z")
	now := ts("2026-03-12T08:00:00Z") // ровно 48 часов, граница включительно

	u, _ := Advance(userAt(2, &last), now)

	if u.Streak != 3 {
		t.Fatalf("streak = %d, want 3", u.Streak)
	}
}

func TestAdvanceMilestones(t *testing.T) {
	tests := []struct {
		name      string
		streak    int
		wantBonus int
	}{
		{"до порога", 5, 0},
		{"пересечение 7", 6, 15},
		{"уже за порогом 7", 7, 0},
		{"пересечение 14", 13, 25},
		{"пересечение 30", 29, 50},
		{"между порогами", 20, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			last := ts("2026-03-10T12:00:00Z")
			now := ts("2026-03-11T12:00:00Z")

			_, out := Advance(userAt(tc.streak, &last), now)

			if out.MilestoneBonus != tc.wantBonus {
				t.Fatalf("bonus = %d, want %d", out.MilestoneBonus, tc.wantBonus)
			}
		})
	}
}

func TestAdvanceMilestoneAfterLongGap(t *testing.T) {
	// после сгоревшего стрика порог 7 можно пересечь заново
	last := ts("2026-03-01T12:00:00Z")
	now := ts("2026-03-20T12:00:00Z")

	u, out := Advance(userAt(10, &last), now)

	if u.Streak != 1 {
		t.Fatalf("streak = %d, want 1", u.Streak)
	}
	if out.MilestoneBonus != 0 {
		t.Fatalf("bonus = %d, want 0: порог не пересекался снизу вверх", out.MilestoneBonus)
	}
}

func TestReset(t *testing.T) {
	last := ts("2026-03-10T12:00:00Z")

	u := Reset(userAt(15, &last))

	if u.Streak != 0 {
		t.Fatalf("streak = %d, want 0", u.Streak)
	}
	if u.PlantLevel != database.Seed {
		t.Fatalf("plant = %s, want seed", u.PlantLevel)
	}
}

func TestPlantLevelFor(t *testing.T) {
	tests := []struct {
		streak int
		want   database.PlantLevel
	}{
		{0, database.Seed},
		{1, database.Sprout},
		{2, database.Sprout},
		{3, database.Leaf},
		{6, database.Leaf},
		{7, database.Flower},
		{13, database.Flower},
		{14, database.Tree},
		{100, database.Tree},
	}

	for _, tc := range tests {
		if got := PlantLevelFor(tc.streak); got != tc.want {
			t.Errorf("PlantLevelFor(%d) = %s, want %s", tc.streak, got, tc.want)
		}
	}
}
