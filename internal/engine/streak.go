package engine

import (
	"time"

	"mindgarden/internal/database"
	"mindgarden/internal/utils"
)

// Токены за действия пользователя
const (
	CheckInTokens    = 5 // первый чек-ин календарного дня
	CompletionTokens = 5 // выполненная рекомендация
	CommunityTokens  = 2 // сообщение в группе
)

// maxGap допустимый разрыв между чек-инами; больше - стрик сгорает
const maxGap = 48 * time.Hour

// milestone бонус начисляется один раз при пересечении порога снизу вверх
type milestone struct {
	Streak int
	Bonus  int
}

var milestones = []milestone{
	{Streak: 7, Bonus: 15},
	{Streak: 14, Bonus: 25},
	{Streak: 30, Bonus: 50},
}

// Outcome результат применения чек-ина к реестру
type Outcome struct {
	// DayCounted чек-ин засчитан как новый день (стрик начат или продлён)
	DayCounted bool
	// MilestoneBonus токены за пересечённый порог стрика, 0 если порога не было
	MilestoneBonus int
}

// Advance применяет чек-ин к реестру. Чистая функция: вызывающая сторона
// сама сохраняет результат и начисляет токены.
//
// Правила по порядку:
//  1. нет прошлого чек-ина или разрыв больше 2 суток - стрик становится 1;
//  2. иначе стрик растёт на 1, только если календарная дата сменилась
//     (повторный чек-ин того же дня ничего не меняет);
//  3. уровень растения пересчитывается из нового стрика;
//  4. время чек-ина запоминается.
func Advance(u database.User, now time.Time) (database.User, Outcome) {
	var out Outcome
	prev := u.Streak

	switch {
	case u.LastCheckIn == nil || now.Sub(*u.LastCheckIn) > maxGap:
		u.Streak = 1
		out.DayCounted = true
	case !utils.SameCalendarDay(now, *u.LastCheckIn):
		u.Streak++
		out.DayCounted = true
	}

	u.PlantLevel = PlantLevelFor(u.Streak)
	checkIn := now.UTC()
	u.LastCheckIn = &checkIn

	for _, m := range milestones {
		if prev < m.Streak && u.Streak >= m.Streak {
			out.MilestoneBonus += m.Bonus
		}
	}

	return u, out
}

// Reset принудительно обнуляет стрик (ежедневная чистка и явный запрос)
func Reset(u database.User) database.User {
	u.Streak = 0
	u.PlantLevel = database.Seed
	return u
}

// PlantLevelFor уровень растения - детерминированная функция стрика
func PlantLevelFor(streak int) database.PlantLevel {
	switch {
	case streak >= 14:
		return database.Tree
	case streak >= 7:
		return database.Flower
	case streak >= 3:
		return database.Leaf
	case streak >= 1:
		return database.Sprout
	default:
		return database.Seed
	}
}
