package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"mindgarden/internal/database"
	"mindgarden/internal/services"
	"mindgarden/internal/utils"
)

const maxAudioSize = 10 << 20 // 10 МБ на аудиозапись

type checkInRequest struct {
	MoodScore     int                 `json:"moodScore" validate:"required,min=1,max=10"`
	MoodLabel     database.MoodLabel  `json:"moodLabel" validate:"required"`
	Transcription string              `json:"transcription"`
	Sentiment     *database.Sentiment `json:"sentiment"`
}

func (s *Server) handleRecordCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !database.ValidMoodLabel(string(req.MoodLabel)) {
		writeError(w, http.StatusBadRequest, "неизвестная метка настроения")
		return
	}

	result, err := s.services.Mood.RecordCheckIn(r.Context(), userID(r), services.CheckInInput{
		MoodScore:     req.MoodScore,
		MoodLabel:     req.MoodLabel,
		Transcription: req.Transcription,
		Sentiment:     req.Sentiment,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	entries, err := s.services.Mood.GetHistory(userID(r), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAnalyzeVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		writeError(w, http.StatusBadRequest, "ожидается multipart-форма с аудиофайлом")
		return
	}

	file, header, err := r.FormFile("audioFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "поле audioFile обязательно")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "не удалось прочитать аудиофайл")
		return
	}

	result, err := s.services.Mood.AnalyzeVoice(r.Context(), audio, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadGateway, "сервис анализа настроения недоступен")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	user, err := s.services.Mood.GetStreak(userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streakView(user))
}

type updateStreakRequest struct {
	Increment *bool `json:"increment" validate:"required"`
}

// handleUpdateStreak increment=true проводит стрик через движок,
// increment=false сбрасывает серию.
func (s *Server) handleUpdateStreak(w http.ResponseWriter, r *http.Request) {
	var req updateStreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		user *database.User
		err  error
	)
	if *req.Increment {
		user, err = s.services.Mood.AdvanceStreak(userID(r))
	} else {
		user, err = s.services.Mood.BreakStreak(userID(r))
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streakView(user))
}

func streakView(user *database.User) map[string]interface{} {
	return map[string]interface{}{
		"streak":        user.Streak,
		"plant_level":   user.PlantLevel,
		"plant_emoji":   utils.GetPlantEmoji(user.PlantLevel),
		"progress":      database.PlantProgress[user.PlantLevel],
		"token_balance": user.TokenBalance,
		"last_check_in": user.LastCheckIn,
	}
}

func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	mood := database.MoodLabel(r.URL.Query().Get("moodLabel"))
	if mood == "" {
		mood = database.Neutral
	}
	if !database.ValidMoodLabel(string(mood)) {
		writeError(w, http.StatusBadRequest, "неизвестная метка настроения")
		return
	}

	recs, err := s.services.Recommendation.Get(r.Context(), userID(r), mood)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCompleteRecommendation(w http.ResponseWriter, r *http.Request) {
	recommendationID := chi.URLParam(r, "id")

	balance, err := s.services.Recommendation.MarkCompleted(r.Context(), userID(r), recommendationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"token_balance": balance})
}

type generateReportRequest struct {
	WeekNumber int `json:"weekNumber" validate:"omitempty,min=1,max=5"`
	Year       int `json:"year" validate:"omitempty,min=2020"`
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "некорректное тело запроса")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var (
		report *database.Report
		err    error
	)
	if req.WeekNumber > 0 && req.Year > 0 {
		report, err = s.services.Report.GenerateIfAbsent(r.Context(), userID(r), req.WeekNumber, req.Year, "manual")
	} else {
		report, err = s.services.Report.GenerateCurrent(r.Context(), userID(r), "manual")
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reports, err := s.services.Report.List(userID(r), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.services.Reward.GetBalance(userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"token_balance": balance})
}

type redeemRequest struct {
	Amount int    `json:"amount" validate:"required,gt=0"`
	Reward string `json:"reward" validate:"required"`
}

func (s *Server) handleRedeemTokens(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.services.Reward.Redeem(userID(r), req.Amount, req.Reward)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.services.Community.ListGroups()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	group, joined, err := s.services.Community.JoinGroup(userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group":  group,
		"joined": joined,
	})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := s.services.Community.GetMessages(chi.URLParam(r, "id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type postMessageRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	Content string `json:"content" validate:"required,max=2000"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posted, err := s.services.Community.PostMessage(userID(r), req.GroupID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, posted)
}
