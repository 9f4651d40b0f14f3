package graph

import (
	"fmt"
	"net/http"
	"strings"

	"graphkit/pkg/config"
	"graphkit/pkg/logger"
	"graphkit/pkg/ratelimit"
	"graphkit/pkg/retry"
)

// NewClientFromConfig builds a client of the configured variant with a
// requestor honouring the timeout, tracing, retry and rate limit settings.
func NewClientFromConfig(cfg *config.Config, log logger.Logger) (TokenClient, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	version, err := ParseVersion(cfg.Graph.APIVersion)
	if err != nil {
		return nil, err
	}

	opts := []RequestorOption{
		WithRequestorLogger(log),
		WithHTTPClient(&http.Client{Timeout: cfg.Graph.Timeout}),
	}
	if cfg.Graph.Tracing {
		opts = append(opts, WithTracing())
	}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLimiter(limiter))
	}
	if cfg.Retry.Enabled && cfg.Retry.MaxAttempts > 1 {
		if cfg.Retry.BaseDelay > 0 {
			opts = append(opts, WithRetryConfig(&retry.Config{
				MaxAttempts: cfg.Retry.MaxAttempts,
				Backoff: &retry.ExponentialBackoff{
					BaseDelay:    cfg.Retry.BaseDelay,
					MaxDelay:     cfg.Retry.MaxDelay,
					Multiplier:   2.0,
					JitterFactor: 0.1,
				},
				RetryIf: retry.DefaultRetryIf,
				Logger:  log,
			}))
		} else {
			opts = append(opts, WithRetry(cfg.Retry.MaxAttempts))
		}
	}

	endpoints := CustomEndpoints{
		Graph:          cfg.Graph.Endpoints.Graph,
		Facebook:       cfg.Graph.Endpoints.Facebook,
		InstagramAPI:   cfg.Graph.Endpoints.InstagramAPI,
		InstagramGraph: cfg.Graph.Endpoints.InstagramGraph,
	}
	clientOpts := []Option{
		WithWebRequestor(NewDefaultWebRequestor(opts...)),
		WithEndpoints(endpoints),
		WithLogger(log),
	}

	switch strings.ToLower(cfg.Graph.Variant) {
	case config.VariantFacebook, "":
		return NewClient(cfg.Graph.AccessToken, cfg.Graph.AppSecret, version, clientOpts...), nil
	case config.VariantInstagram:
		return NewInstagramClient(cfg.Graph.AccessToken, cfg.Graph.AppSecret, version, clientOpts...), nil
	default:
		return nil, fmt.Errorf("unknown graph variant %q", cfg.Graph.Variant)
	}
}
