package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// maxCASAttempts предел повторов read-modify-write на реестре пользователя
const maxCASAttempts = 5

type Repository struct {
	Db *Database
}

func NewRepository(db *Database) *Repository {
	return &Repository{Db: db}
}

// User repository methods

func (r *Repository) GetUser(userID string) (*User, error) {
	var u User
	var lastCheckIn sql.NullTime
	err := r.Db.db.QueryRow(`
		SELECT id, streak, last_check_in, plant_level, token_balance, version, created_at
		FROM users
		WHERE id = ?
	`, userID).Scan(&u.ID, &u.Streak, &lastCheckIn, &u.PlantLevel, &u.TokenBalance, &u.Version, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("пользователь %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if lastCheckIn.Valid {
		t := lastCheckIn.Time
		u.LastCheckIn = &t
	}
	return &u, nil
}

// GetOrCreateUser создаёт реестр при первом обращении аутентифицированного пользователя
func (r *Repository) GetOrCreateUser(userID string) (*User, error) {
	_, err := r.Db.db.Exec(`
		INSERT OR IGNORE INTO users (id, streak, plant_level, token_balance, version)
		VALUES (?, 0, 'seed', 0, 0)
	`, userID)
	if err != nil {
		return nil, err
	}
	return r.GetUser(userID)
}

// UpdateUser применяет мутацию реестра с проверкой версии.
// При конкурентной записи перечитывает и повторяет, максимум maxCASAttempts раз.
func (r *Repository) UpdateUser(userID string, mutate func(*User) error) (*User, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		u, err := r.GetUser(userID)
		if err != nil {
			return nil, err
		}

		if err := mutate(u); err != nil {
			return nil, err
		}

		var lastCheckIn interface{}
		if u.LastCheckIn != nil {
			lastCheckIn = u.LastCheckIn.UTC()
		}

		res, err := r.Db.db.Exec(`
			UPDATE users
			SET streak = ?, last_check_in = ?, plant_level = ?, token_balance = ?, version = version + 1
			WHERE id = ? AND version = ?
		`, u.Streak, lastCheckIn, u.PlantLevel, u.TokenBalance, u.ID, u.Version)
		if err != nil {
			return nil, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 1 {
			u.Version++
			return u, nil
		}
		// версия ушла вперёд - перечитываем
	}

	return nil, fmt.Errorf("пользователь %s: %w", userID, ErrConflict)
}

// AddTokens начисляет токены одним атомарным UPDATE
func (r *Repository) AddTokens(userID string, amount int) (*User, error) {
	res, err := r.Db.db.Exec(`
		UPDATE users
		SET token_balance = token_balance + ?, version = version + 1
		WHERE id = ?
	`, amount, userID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("пользователь %s: %w", userID, ErrNotFound)
	}
	return r.GetUser(userID)
}

// SpendTokens списывает токены, если баланса хватает.
// Условный UPDATE исключает гонку проверки и списания.
func (r *Repository) SpendTokens(userID string, amount int) (int, bool, error) {
	res, err := r.Db.db.Exec(`
		UPDATE users
		SET token_balance = token_balance - ?, version = version + 1
		WHERE id = ? AND token_balance >= ?
	`, amount, userID, amount)
	if err != nil {
		return 0, false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	u, err := r.GetUser(userID)
	if err != nil {
		return 0, false, err
	}

	return u.TokenBalance, affected == 1, nil
}

func (r *Repository) ListUserIDs() ([]string, error) {
	rows, err := r.Db.db.Query(`SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ResetStaleStreaks массово обнуляет стрики пользователей,
// не отмечавшихся после cutoff. Возвращает число затронутых строк.
func (r *Repository) ResetStaleStreaks(cutoff time.Time) (int64, error) {
	res, err := r.Db.db.Exec(`
		UPDATE users
		SET streak = 0, plant_level = 'seed', version = version + 1
		WHERE last_check_in IS NOT NULL AND last_check_in < ? AND streak > 0
	`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
