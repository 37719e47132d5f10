package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RegistrationsTotal prometheus.Counter
	VerificationsTotal *prometheus.CounterVec
	TokensIssuedTotal  prometheus.Counter
	LockoutsTotal      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keypulse_registrations_total",
			Help: "Total number of clients registered",
		}),
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "keypulse_verifications_total",
			Help: "Total number of verification attempts by outcome",
		}, []string{"outcome"}),
		TokensIssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keypulse_tokens_issued_total",
			Help: "Total number of daily tokens issued",
		}),
		LockoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keypulse_lockouts_total",
			Help: "Total number of clients locked by the inactivity sweep",
		}),
	}
}

func (m *Metrics) IncrementRegistrations() {
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) ObserveVerification(outcome string) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddTokensIssued(count int) {
	m.TokensIssuedTotal.Add(float64(count))
}

func (m *Metrics) IncrementLockouts() {
	m.LockoutsTotal.Inc()
}
