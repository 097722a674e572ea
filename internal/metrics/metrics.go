package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ledger holds the ledger's Prometheus collectors.
type Ledger struct {
	Operations *prometheus.CounterVec
	Faults     *prometheus.CounterVec
	FundsMoved *prometheus.CounterVec
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_ledger_operations_total",
			Help: "Ledger operations by outcome (ok, rejected, fault, error).",
		}, []string{"operation", "outcome"}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_ledger_faults_total",
			Help: "Operations aborted by an invariant violation.",
		}, []string{"operation"}),
		FundsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_ledger_funds_moved_total",
			Help: "Value moved by committed transfers, in minor units.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.Operations, m.Faults, m.FundsMoved)
	return m
}

func (m *Ledger) ObserveOperation(op, outcome string) {
	m.Operations.WithLabelValues(op, outcome).Inc()
	if outcome == "fault" {
		m.Faults.WithLabelValues(op).Inc()
	}
}

func (m *Ledger) ObserveFunds(kind string, amount int64) {
	if amount <= 0 {
		return
	}
	m.FundsMoved.WithLabelValues(kind).Add(float64(amount))
}
