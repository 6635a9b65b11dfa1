package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckInsTotal чек-ины по меткам настроения
	CheckInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindgarden_checkins_total",
		Help: "Number of mood check-ins recorded",
	}, []string{"mood"})

	// TokensAwardedTotal начисленные токены по причинам
	TokensAwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindgarden_tokens_awarded_total",
		Help: "Tokens awarded to users by reason",
	}, []string{"reason"})

	// ProviderRequestsTotal обращения к внешним провайдерам по исходу
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindgarden_provider_requests_total",
		Help: "External provider requests by outcome",
	}, []string{"provider", "outcome"})

	// ReportsGeneratedTotal созданные отчёты по источнику запуска
	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindgarden_reports_generated_total",
		Help: "Weekly reports generated by trigger",
	}, []string{"trigger"})

	// StreaksResetTotal стрики, обнулённые ежедневной чисткой
	StreaksResetTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindgarden_streaks_reset_total",
		Help: "Streaks reset by the daily staleness sweep",
	})
)
