package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records counters for ledger-affecting mutations.
type LedgerMetrics struct {
	recordsCreated    *prometheus.CounterVec
	recordsDeleted    prometheus.Counter
	integrityWarnings prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_records_created_total",
		Help: "Sales records created, labelled by payment type.",
	}, []string{"payment_type"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_records_deleted_total",
		Help: "Sales records deleted.",
	})
	warnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_integrity_warnings_total",
		Help: "Balance reversals that clamped at zero, indicating ledger/record divergence.",
	})
	reg.MustRegister(created, deleted, warnings)
	return &LedgerMetrics{
		recordsCreated:    created,
		recordsDeleted:    deleted,
		integrityWarnings: warnings,
	}
}

// IncRecordCreated increments the creation counter for the payment type.
func (m *LedgerMetrics) IncRecordCreated(paymentType string) {
	if m == nil || m.recordsCreated == nil {
		return
	}
	m.recordsCreated.WithLabelValues(paymentType).Inc()
}

// IncRecordDeleted increments the deletion counter.
func (m *LedgerMetrics) IncRecordDeleted() {
	if m == nil || m.recordsDeleted == nil {
		return
	}
	m.recordsDeleted.Inc()
}

// IncIntegrityWarning increments the clamped-reversal counter.
func (m *LedgerMetrics) IncIntegrityWarning() {
	if m == nil || m.integrityWarnings == nil {
		return
	}
	m.integrityWarnings.Inc()
}
