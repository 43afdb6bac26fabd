package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
	"github.com/hackgods/clinic-appointment-engine/internal/auth"
	"github.com/hackgods/clinic-appointment-engine/internal/records"
)

type RouterConfig struct {
	Service  *appointment.Service
	Auth     auth.Authenticator
	Records  *records.Store
	PgPool   *pgxpool.Pool // nil with the memory store
	Redis    *redis.Client // nil with the in-process lock
	Registry *prometheus.Registry
	Logger   zerolog.Logger
	Env      string
	Version  string

	LoginRateLimit float64
	LoginBurst     int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	metrics := newHTTPMetrics(cfg.Registry)
	if cfg.Records == nil {
		cfg.Records = records.NewStore(time.Now)
	}

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(metrics.middleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	burst := cfg.LoginBurst
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(cfg.LoginRateLimit)
	if cfg.LoginRateLimit <= 0 {
		limit = rate.Inf
	}
	r.With(RateLimitMiddleware(rate.NewLimiter(limit, burst))).
		Post("/auth/login", loginHandler(cfg.Auth))

	r.Route("/doctors", func(r chi.Router) {
		r.Get("/", listDoctorsHandler(cfg.Service))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getDoctorHandler(cfg.Service))
			r.Put("/profile", updateDoctorProfileHandler(cfg.Service))
			r.Get("/availability/{weekday}", getAvailabilityHandler(cfg.Service))
			r.Put("/availability/{weekday}", updateAvailabilityHandler(cfg.Service))
			r.Get("/appointments", doctorAppointmentsHandler(cfg.Service))
			r.Get("/stats", doctorStatsHandler(cfg.Service))
			r.Get("/patients", doctorPatientsHandler(cfg.Service))
			r.Get("/patients/{patientID}", doctorPatientDetailHandler(cfg.Service))
		})
	})

	r.Route("/patients/{id}", func(r chi.Router) {
		r.Get("/", getPatientHandler(cfg.Service))
		r.Put("/profile", updatePatientProfileHandler(cfg.Service))
		r.Get("/appointments", patientAppointmentsHandler(cfg.Service))
		r.Get("/recommended-doctors", recommendedDoctorsHandler(cfg.Service))
		r.Get("/health-records/{kind}", healthRecordsHandler(cfg.Service, cfg.Records))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(cfg.Service))
		r.Get("/{id}/patient", appointmentPatientHandler(cfg.Service))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Service))
		r.Post("/{id}/reschedule", rescheduleAppointmentHandler(cfg.Service))
		r.Post("/{id}/status", updateStatusHandler(cfg.Service))
	})

	return r
}
