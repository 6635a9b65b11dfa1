package server

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"mindgarden/internal/database"
	"mindgarden/internal/logging"
	"mindgarden/internal/services"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: status < 400, Data: data}); err != nil {
		logging.Error().Err(err).Msg("ошибка сериализации ответа")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Message: message})
}

// writeServiceError переводит ошибки хранилища и сервисов в HTTP-статусы
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrConflict):
		writeError(w, http.StatusConflict, "слишком много одновременных обновлений, повторите запрос")
	case errors.Is(err, services.ErrNotMember):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logging.Error().Err(err).Msg("внутренняя ошибка")
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
