package utils

import "time"

// Вся арифметика дат ведётся в UTC.

// SameCalendarDay сравнивает календарные даты (год, месяц, день)
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// WeekNumber номер недели по схеме отчётов: ceil(день месяца / 7).
// Схема не совпадает с ISO-неделями и сбрасывается каждое 1 января -
// сохранена как есть, см. DESIGN.md.
func WeekNumber(t time.Time) int {
	day := t.UTC().Day()
	return (day + 6) / 7
}

// WeekRange границы недели отчёта: 1 января + (week-1)*7 дней, конец через 6 дней
func WeekRange(weekNumber, year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, (weekNumber-1)*7)
	end := start.AddDate(0, 0, 6)
	return start, end
}

// CurrentWeek номер недели и год для «текущего» отчёта
func CurrentWeek(now time.Time) (int, int) {
	return WeekNumber(now), now.UTC().Year()
}
