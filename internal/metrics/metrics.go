package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// requestOutcomes counts processed queue rows.
	// Labels: outcome (booked, cancelled, already_reserved, ...)
	requestOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtbooking",
		Subsystem: "requests",
		Name:      "outcomes_total",
		Help:      "Request queue rows processed, by outcome",
	}, []string{"outcome"})

	// archivedRows counts rows moved to the archive tabs.
	// Labels: tab
	archivedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtbooking",
		Subsystem: "archive",
		Name:      "rows_total",
		Help:      "Rows moved from a live tab into its archive",
	}, []string{"tab"})

	ledgerConflicts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtbooking",
		Subsystem: "ledger",
		Name:      "conflicts",
		Help:      "Slot keys held by more than one booked reservation at the last scan",
	})

	// syncDuration measures a whole sync pass.
	// Labels: status (success, error, locked)
	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courtbooking",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Duration of a sync pass in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"status"})
)

func RecordOutcome(outcome string) {
	requestOutcomes.WithLabelValues(outcome).Inc()
}

func RecordArchived(tab string, n int) {
	if n > 0 {
		archivedRows.WithLabelValues(tab).Add(float64(n))
	}
}

func SetConflicts(n int) {
	ledgerConflicts.Set(float64(n))
}

func ObserveSync(status string, d time.Duration) {
	syncDuration.WithLabelValues(status).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
