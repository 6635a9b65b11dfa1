package database

import (
	"errors"
	"testing"
	"time"
)

func testReport(id, userID string, week, year int) *Report {
	start, _ := time.Parse(time.RFC3339, "2026-03-08T00:00:00Z")
	return &Report{
		ID:                 id,
		UserID:             userID,
		WeekNumber:         week,
		Year:               year,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, 6),
		AverageMood:        6.5,
		StreakMaintained:   true,
		PlantProgress:      50,
		CompletedRecsCount: 3,
		GeneratedAt:        start.AddDate(0, 0, 7),
	}
}

func TestCreateReportIfAbsent(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetOrCreateUser("u1"); err != nil {
		t.Fatal(err)
	}

	stored, created, err := repo.CreateReportIfAbsent(testReport("rep1", "u1", 2, 2026))
	if err != nil {
		t.Fatalf("создание отчёта: %v", err)
	}
	if !created {
		t.Fatal("первый отчёт за неделю должен создаваться")
	}
	if stored.ID != "rep1" || stored.AverageMood != 6.5 {
		t.Fatalf("сохранённый отчёт: %+v", stored)
	}

	// вторая вставка той же недели возвращает строку победителя
	stored2, created2, err := repo.CreateReportIfAbsent(testReport("rep2", "u1", 2, 2026))
	if err != nil {
		t.Fatal(err)
	}
	if created2 {
		t.Fatal("повторная вставка не должна создавать строку")
	}
	if stored2.ID != "rep1" {
		t.Fatalf("проигравший должен получить отчёт победителя, got %s", stored2.ID)
	}

	// разные недели и пользователи живут независимо
	_, created3, err := repo.CreateReportIfAbsent(testReport("rep3", "u1", 3, 2026))
	if err != nil || !created3 {
		t.Fatalf("другая неделя: created=%v err=%v", created3, err)
	}
}

func TestGetReportNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetReport("u1", 1, 2026)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListReportsOrder(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetOrCreateUser("u1"); err != nil {
		t.Fatal(err)
	}

	for _, rep := range []*Report{
		testReport("a", "u1", 1, 2026),
		testReport("b", "u1", 5, 2025),
		testReport("c", "u1", 3, 2026),
	} {
		if _, _, err := repo.CreateReportIfAbsent(rep); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := repo.ListReports("u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 3 {
		t.Fatalf("len = %d, want 3", len(reports))
	}
	// свежие сверху: 2026/3, 2026/1, 2025/5
	if reports[0].ID != "c" || reports[1].ID != "a" || reports[2].ID != "b" {
		t.Fatalf("порядок: %s %s %s", reports[0].ID, reports[1].ID, reports[2].ID)
	}
}

func TestSetReportURLOnlyOnce(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetOrCreateUser("u1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.CreateReportIfAbsent(testReport("rep1", "u1", 2, 2026)); err != nil {
		t.Fatal(err)
	}

	if err := repo.SetReportURL("rep1", "/reports/report_rep1.html"); err != nil {
		t.Fatal(err)
	}

	// повторная запись не затирает существующую ссылку
	if err := repo.SetReportURL("rep1", "/reports/other.html"); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.GetReport("u1", 2, 2026)
	if err != nil {
		t.Fatal(err)
	}
	if stored.URL != "/reports/report_rep1.html" {
		t.Fatalf("url = %q", stored.URL)
	}
}
