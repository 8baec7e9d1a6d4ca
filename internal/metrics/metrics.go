package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "earthbucks",
		Name:      "chain_height",
		Help:      "Number of headers in the longest chain.",
	})

	BuildingBlockNum = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "earthbucks",
		Name:      "building_block_num",
		Help:      "Block number the builder is currently assembling.",
	})

	LoopIterations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "earthbucks",
		Name:      "builder_loop_iterations_total",
		Help:      "Total builder loop iterations.",
	})

	HeadersValidated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "earthbucks",
		Name:      "headers_validated_total",
		Help:      "Candidate headers checked against the chain, by result.",
	}, []string{"result"})

	BlocksVerified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "earthbucks",
		Name:      "blocks_verified_total",
		Help:      "Announced blocks run through the block verifier, by result.",
	}, []string{"result"})

	CandidatesProduced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "earthbucks",
		Name:      "candidate_headers_produced_total",
		Help:      "Candidate headers published for miners.",
	})

	CoinbaseTxsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "earthbucks",
		Name:      "coinbase_txs_inserted_total",
		Help:      "Coinbase transactions inserted into storage.",
	})
)

func init() {
	prometheus.MustRegister(
		ChainHeight,
		BuildingBlockNum,
		LoopIterations,
		HeadersValidated,
		BlocksVerified,
		CandidatesProduced,
		CoinbaseTxsInserted,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
