package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики workflow бронирования. Регистрируются в default registry,
// отдаются через promhttp в main.
var (
	// BookingsStarted — число запущенных workflow.
	BookingsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railbot_bookings_started_total",
		Help: "Количество запущенных workflow бронирования.",
	})

	// BookingsFinished — число завершённых workflow по итоговому состоянию.
	BookingsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railbot_bookings_finished_total",
		Help: "Количество завершённых workflow по итоговому состоянию.",
	}, []string{"state"})

	// StateTransitions — число переходов машины состояний.
	StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railbot_state_transitions_total",
		Help: "Количество переходов машины состояний.",
	}, []string{"from", "to"})

	// CaptchaAttempts — попытки решения captcha по результату.
	CaptchaAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railbot_captcha_attempts_total",
		Help: "Попытки решения captcha по результату.",
	}, []string{"result"})

	// StepDuration — длительность шагов workflow.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "railbot_step_duration_seconds",
		Help:    "Длительность выполнения шагов workflow.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"state"})

	// WorkflowActive — 1, когда workflow выполняется.
	WorkflowActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "railbot_workflow_active",
		Help: "Признак активного workflow (единственный слот).",
	})
)
