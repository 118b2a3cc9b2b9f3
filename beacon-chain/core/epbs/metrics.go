package epbs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bidsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "execution_payload_bids_processed_total",
		Help: "Count of execution payload bids successfully processed.",
	})
	envelopesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "execution_payload_envelopes_processed_total",
		Help: "Count of execution payload envelopes successfully processed.",
	})
	payloadAttestationsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payload_attestations_processed_total",
		Help: "Count of payload attestations successfully processed.",
	})
	pendingPaymentsPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "builder_pending_payments_promoted_total",
		Help: "Count of builder pending payments promoted to withdrawals at epoch boundaries.",
	})
	pendingPaymentsForfeited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "builder_pending_payments_forfeited_total",
		Help: "Count of builder pending payments dropped below quorum at epoch boundaries.",
	})
)
