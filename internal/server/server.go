// Package server HTTP-поверхность движка: чек-ины, рекомендации,
// отчёты, награды и сообщество.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mindgarden/internal/config"
	"mindgarden/internal/logging"
	"mindgarden/internal/services"
)

type Server struct {
	cfg      *config.Config
	services *services.ServiceManager
	validate *validator.Validate
	http     *http.Server
}

func New(cfg *config.Config, sm *services.ServiceManager) *Server {
	s := &Server{
		cfg:      cfg,
		services: sm,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(httprate.LimitByIP(cfg.Server.RequestLimit, time.Minute))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// локально отрендеренные отчёты
	r.Handle(cfg.Reports.BaseURL+"/*", http.StripPrefix(cfg.Reports.BaseURL+"/",
		http.FileServer(http.Dir(cfg.Reports.Dir))))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/moods", func(r chi.Router) {
			r.Post("/", s.handleRecordCheckIn)
			r.Get("/history", s.handleMoodHistory)
			r.Post("/analyze", s.handleAnalyzeVoice)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/streak", s.handleGetStreak)
			r.Post("/streak", s.handleUpdateStreak)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", s.handleGetRecommendations)
			r.Post("/{id}/complete", s.handleCompleteRecommendation)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/generate", s.handleGenerateReport)
			r.Get("/", s.handleListReports)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/tokens", s.handleTokenBalance)
			r.Post("/redeem", s.handleRedeemTokens)
		})

		r.Route("/community", func(r chi.Router) {
			r.Get("/groups", s.handleListGroups)
			r.Post("/groups/{id}/join", s.handleJoinGroup)
			r.Get("/groups/{id}/messages", s.handleGetMessages)
			r.Post("/messages", s.handlePostMessage)
		})
	})

	s.http = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	logging.Info().Str("port", s.cfg.Server.Port).Msg("🌐 HTTP-сервер запущен")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
