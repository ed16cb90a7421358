package metrics

import "time"

// AICall records one completion gateway round trip.
func AICall(provider, status string, duration time.Duration) {
	AIAPICalls.WithLabelValues(provider, status).Inc()
	AIRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// AITokens adds token usage reported by the provider.
func AITokens(input, output int) {
	if input > 0 {
		AITokensTotal.WithLabelValues("input").Add(float64(input))
	}
	if output > 0 {
		AITokensTotal.WithLabelValues("output").Add(float64(output))
	}
}
