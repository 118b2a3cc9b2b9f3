package gloas

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "forkchoice-gloas")

	headSlotNumber = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gloas_forkchoice_head_slot",
			Help: "The slot number of the current head.",
		},
	)
	nodeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gloas_forkchoice_node_count",
			Help: "The number of block nodes in the fork choice store.",
		},
	)
	headChangesCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gloas_forkchoice_head_changed_count",
			Help: "The number of times head changes.",
		},
	)
	calledHeadCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gloas_forkchoice_head_requested_count",
			Help: "The number of times someone called head.",
		},
	)
	processedBlockCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gloas_forkchoice_block_processed_count",
			Help: "The number of times a block is processed for fork choice.",
		},
	)
	processedAttestationCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gloas_forkchoice_attestation_processed_count",
			Help: "The number of times a payload attestation vote is processed.",
		},
	)
	processedPayloadCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gloas_forkchoice_payload_processed_count",
			Help: "The number of payload envelopes processed for fork choice.",
		},
	)
	prunedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gloas_forkchoice_pruned_count",
			Help: "The number of times pruning happened.",
		},
	)
)
