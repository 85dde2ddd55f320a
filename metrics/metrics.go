// Package metrics exposes the engine's operational counters in Prometheus
// format. Counters are registered on the default registry and served by the
// launcher's metrics endpoint when enabled.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BatchesOpened counts successful OpenBatch operations.
	BatchesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veilgov_batches_opened_total",
		Help: "Number of batches opened",
	})

	// ProposalsSubmitted counts successful proposal submissions,
	// including overwrites of a pending proposal.
	ProposalsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veilgov_proposals_submitted_total",
		Help: "Number of encrypted proposals stored",
	})

	// DecryptionRequests counts successfully issued decryption requests.
	DecryptionRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veilgov_decryption_requests_total",
		Help: "Number of decryption requests issued to the oracle",
	})

	// Deliveries counts oracle callback deliveries by outcome. The result
	// label is "settled" for accepted deliveries and the rejection reason
	// (replay, state_mismatch, invalid_proof, malformed, unknown)
	// otherwise.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veilgov_deliveries_total",
		Help: "Number of oracle callback deliveries by outcome",
	}, []string{"result"})

	// RejectedOps counts protocol operations rejected before touching
	// state, by error class.
	RejectedOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veilgov_rejected_operations_total",
		Help: "Number of rejected protocol operations by reason",
	}, []string{"reason"})

	// Paused reflects the lifecycle pause flag (1 while paused).
	Paused = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "veilgov_paused",
		Help: "Whether the system is paused (1) or live (0)",
	})

	// CurrentBatch reflects the current batch id.
	CurrentBatch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "veilgov_current_batch",
		Help: "Current batch id",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
