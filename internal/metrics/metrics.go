package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects advance and repayment counters. A nil *Metrics records nothing.
type Metrics struct {
	advances       *prometheus.CounterVec
	advancedAmount prometheus.Counter
	installments   *prometheus.CounterVec
	reschedules    prometheus.Counter
	loansSettled   prometheus.Counter
	runDuration    prometheus.Histogram
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		advances: f.NewCounterVec(prometheus.CounterOpts{
			Name: "advances_total",
			Help: "Advance attempts by outcome",
		}, []string{"outcome"}),
		advancedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "advanced_amount_total",
			Help: "Sum of granted advance amounts",
		}),
		installments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "installments_total",
			Help: "Installment attempts by outcome",
		}, []string{"outcome"}),
		reschedules: f.NewCounter(prometheus.CounterOpts{
			Name: "installment_reschedules_total",
			Help: "Installments pushed to the end of the schedule after a failed attempt",
		}),
		loansSettled: f.NewCounter(prometheus.CounterOpts{
			Name: "loans_settled_total",
			Help: "Loans whose last installment settled",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "repayment_run_duration_seconds",
			Help:    "Duration of daily repayment runs",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300},
		}),
	}
}

func (m *Metrics) AdvanceGranted(amount float64) {
	if m == nil {
		return
	}
	m.advances.WithLabelValues("granted").Inc()
	m.advancedAmount.Add(amount)
}

// AdvanceFailed counts a refused advance; reason is a short label such as "account_not_found".
func (m *Metrics) AdvanceFailed(reason string) {
	if m == nil {
		return
	}
	m.advances.WithLabelValues(reason).Inc()
}

func (m *Metrics) InstallmentPaid() {
	if m == nil {
		return
	}
	m.installments.WithLabelValues("success").Inc()
}

func (m *Metrics) InstallmentFailed() {
	if m == nil {
		return
	}
	m.installments.WithLabelValues("fail").Inc()
	m.reschedules.Inc()
}

func (m *Metrics) LoanSettled() {
	if m == nil {
		return
	}
	m.loansSettled.Inc()
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}
