package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cadmus", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cadmus", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// PinExtractions counts pin requests by outcome: computed, cached,
	// missing_type, unknown_type, malformed.
	PinExtractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cadmus", Name: "pin_extractions_total", Help: "Number of part pin extractions by outcome."},
		[]string{"outcome"},
	)
	PartWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cadmus", Name: "part_writes_total", Help: "Number of part upserts by result (created, updated, rejected)."},
		[]string{"result"},
	)
	ItemWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cadmus", Name: "item_writes_total", Help: "Number of item upserts by result (created, updated)."},
		[]string{"result"},
	)
)

// Pin extraction outcomes.
const (
	PinComputed    = "computed"
	PinCached      = "cached"
	PinMissingType = "missing_type"
	PinUnknownType = "unknown_type"
	PinMalformed   = "malformed"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(PinExtractions)
	reg.MustRegister(PartWrites)
	reg.MustRegister(ItemWrites)
}
