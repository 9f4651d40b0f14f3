package logger

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// sensitiveParams never reach the logs in clear text.
var sensitiveParams = []string{
	"access_token",
	"client_secret",
	"appsecret_proof",
	"fb_exchange_token",
	"code",
}

// RedactURL masks credential-bearing query parameters in rawURL.
// Unparsable input is returned as a fixed placeholder.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparsable url>"
	}
	q := u.Query()
	changed := false
	for _, name := range sensitiveParams {
		if values, ok := q[name]; ok {
			for i := range values {
				values[i] = MaskSecret(values[i])
			}
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// MaskSecret keeps the first and last four characters of long secrets.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", 8)
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// LogRequest logs a completed Graph API round trip at a level matching the status
func LogRequest(l Logger, method, rawURL string, statusCode int, durationMS float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         RedactURL(rawURL),
		"status_code": statusCode,
		"duration_ms": durationMS,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("graph request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("graph request client error", fields)
	default:
		l.DebugWithFields("graph request completed", fields)
	}
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
