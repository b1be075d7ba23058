package resilience

import "time"

// CircuitBreakerConfig tunes a CircuitBreaker. The zero value is unusable on
// purpose; run it through NormalizeCircuitBreakerConfig before use.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// NormalizeCircuitBreakerConfig replaces out-of-range values with defaults,
// leaving Enabled exactly as the caller set it.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	normalized := cfg
	if normalized.FailureThreshold < 1 {
		normalized.FailureThreshold = defaults.FailureThreshold
	}
	if normalized.OpenTimeout <= 0 {
		normalized.OpenTimeout = defaults.OpenTimeout
	}
	if normalized.HalfOpenMaxReq < 1 {
		normalized.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return normalized
}
