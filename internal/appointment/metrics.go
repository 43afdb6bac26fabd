package appointment

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	redisclient "github.com/hackgods/clinic-appointment-engine/internal/redis"
)

// Metrics counts scheduling operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduling_operations_total",
				Help: "Scheduling operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidTime):
		return "invalid_time"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotCancellable):
		return "not_cancellable"
	case errors.Is(err, ErrNotReschedulable):
		return "not_reschedulable"
	case errors.Is(err, ErrAlreadyPast):
		return "already_past"
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrInvalidStatus):
		return "invalid_transition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrScheduleBusy), errors.Is(err, redisclient.ErrLockNotAcquired):
		return "busy"
	case errors.Is(err, ErrInvalidProfile):
		return "invalid_profile"
	default:
		return "error"
	}
}
