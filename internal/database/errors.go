package database

import "errors"

var (
	// ErrNotFound запрошенная сущность отсутствует
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict исчерпаны попытки оптимистичного обновления
	ErrConflict = errors.New("конфликт версий при обновлении")
)
