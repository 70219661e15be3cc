// Package metrics exposes Prometheus instrumentation for provisioning and
// reconciliation outcomes, plus a standalone metrics HTTP server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provisioning result label values.
const (
	ResultSuccess          = "success"
	ResultValidationFailed = "validation_failed"
	ResultIdentityRejected = "identity_rejected"
	ResultProfileRejected  = "profile_rejected"
	ResultDuplicateProfile = "duplicate_profile"
)

var (
	// ProvisioningTotal counts provisioning attempts by outcome.
	ProvisioningTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counselor_provisioning_total",
		Help: "Counselor provisioning attempts partitioned by result.",
	}, []string{"result"})

	// CompensationFailures counts compensating identity deletes that failed,
	// leaving an orphaned identity behind for the backfill to repair.
	CompensationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "counselor_identity_compensation_failures_total",
		Help: "Failed rollback deletes of identities created during provisioning.",
	})

	// BackfillTotal counts identity backfill row outcomes.
	BackfillTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counselor_identity_backfill_total",
		Help: "Identity backfill rows partitioned by outcome.",
	}, []string{"outcome"})
)

// NewServer returns an HTTP server serving /metrics on the given address.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
