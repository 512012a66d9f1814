package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RegistrationTokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "verification", Name: "registration_tokens_issued_total", Help: "Number of registration tokens issued by source of trust."},
		[]string{"source_of_trust"},
	)
	RegistrationTokenConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "verification", Name: "registration_token_conflicts_total", Help: "Number of issuance requests refused because a session already existed for the proof."},
		[]string{"key_type"},
	)
	RegistrationTokenRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "verification", Name: "registration_token_rejected_total", Help: "Number of issuance requests rejected for invalid proofs."},
		[]string{"key_type"},
	)
	TeleTansGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "verification", Name: "teletans_generated_total", Help: "Number of TeleTAN codes minted."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "verification", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "verification", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RegistrationTokensIssued)
	reg.MustRegister(RegistrationTokenConflicts)
	reg.MustRegister(RegistrationTokenRejected)
	reg.MustRegister(TeleTansGenerated)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
