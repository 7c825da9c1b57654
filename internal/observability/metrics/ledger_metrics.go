package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	ServiceName string
	Environment string
}

type LedgerMetrics struct {
	transactionsAppended *prometheus.CounterVec
	reservationEvents    *prometheus.CounterVec
	lockWait             prometheus.Histogram
	lockBusy             prometheus.Counter
	replayChecks         *prometheus.CounterVec
	alertsRaised         *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerMetrics     *LedgerMetrics
)

func Ledger() *LedgerMetrics {
	return LedgerWithConfig(Config{})
}

func LedgerWithConfig(cfg Config) *LedgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerMetrics = newLedgerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return ledgerMetrics
}

func ResetLedgerMetricsForTest() {
	ledgerMetricsOnce = sync.Once{}
	ledgerMetrics = nil
}

func newLedgerMetrics(registerer prometheus.Registerer, cfg Config) *LedgerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "flowcredits"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	transactionsAppended := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "flowcredits_ledger_transactions_total",
			Help:        "Credit transactions appended to the ledger by type.",
			ConstLabels: constLabels,
		},
		[]string{"type"},
	)

	reservationEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "flowcredits_reservation_events_total",
			Help:        "Reservation lifecycle transitions.",
			ConstLabels: constLabels,
		},
		[]string{"event"}, // reserved | consumed | released
	)

	lockWait := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "flowcredits_tenant_lock_wait_seconds",
			Help:        "Time spent waiting for the per-tenant balance lock.",
			Buckets:     []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		},
	)

	lockBusy := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "flowcredits_tenant_lock_busy_total",
			Help:        "Lock acquisitions that timed out and returned busy.",
			ConstLabels: constLabels,
		},
	)

	replayChecks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "flowcredits_balance_replay_checks_total",
			Help:        "Reconciler replay verifications of cached balances.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // clean | drift | failed
	)

	alertsRaised := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "flowcredits_balance_alerts_total",
			Help:        "Balance alerts raised by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"}, // low | critical
	)

	registerer.MustRegister(
		transactionsAppended,
		reservationEvents,
		lockWait,
		lockBusy,
		replayChecks,
		alertsRaised,
	)

	return &LedgerMetrics{
		transactionsAppended: transactionsAppended,
		reservationEvents:    reservationEvents,
		lockWait:             lockWait,
		lockBusy:             lockBusy,
		replayChecks:         replayChecks,
		alertsRaised:         alertsRaised,
	}
}

func (m *LedgerMetrics) IncTransaction(txType string) {
	if m == nil {
		return
	}
	m.transactionsAppended.WithLabelValues(txType).Inc()
}

func (m *LedgerMetrics) IncReservationEvent(event string) {
	if m == nil {
		return
	}
	m.reservationEvents.WithLabelValues(event).Inc()
}

func (m *LedgerMetrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *LedgerMetrics) IncLockBusy() {
	if m == nil {
		return
	}
	m.lockBusy.Inc()
}

func (m *LedgerMetrics) IncReplayCheck(result string) {
	if m == nil {
		return
	}
	m.replayChecks.WithLabelValues(result).Inc()
}

func (m *LedgerMetrics) IncAlert(status string) {
	if m == nil {
		return
	}
	m.alertsRaised.WithLabelValues(status).Inc()
}
