package httpclient

import (
	"ticketing-service/config"

	circuit "github.com/rubyist/circuitbreaker"
)

func InitCircuitBreaker(cfg *config.HttpClientConfig, breakerType string) *circuit.Breaker {
	switch breakerType {
	case "rate":
		return circuit.NewRateBreaker(cfg.ErrorRate, cfg.MinimumSamples)
	case "consecutive":
		return circuit.NewConsecutiveBreaker(cfg.ConsecutiveFailures)
	default:
		return circuit.NewThresholdBreaker(cfg.Threshold)
	}
}

func InitHttpClient(cfg *config.HttpClientConfig, cb *circuit.Breaker) *circuit.HTTPClient {
	client := circuit.NewHTTPClient(cfg.Timeout, cfg.Threshold, nil)
	client.BreakerLookup = func(c *circuit.HTTPClient, _ interface{}) *circuit.Breaker {
		return cb
	}
	return client
}
