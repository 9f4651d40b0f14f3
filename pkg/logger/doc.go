// Package logger provides the structured logging interface used across graphkit.
//
// It wraps zerolog behind a small Logger interface so the Graph client, the
// token stores and graphctl can share one configuration and tests can swap in
// NewNopLogger or NewTestLogger.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("variant", "instagram").Info("client ready")
//
// Query parameters that carry credentials (access_token, client_secret,
// appsecret_proof, code) are masked by RedactURL before a URL is logged.
package logger
