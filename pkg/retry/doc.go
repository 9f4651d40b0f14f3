// Package retry provides backoff and retry logic for transient Graph API
// transport failures.
//
// Only network, rate-limit and server errors are retried by default. Token
// workflow errors (validation, unsupported, response content, OAuth) are
// deterministic and surface to the caller on the first attempt.
//
//	cfg := retry.ForHTTP(3, log)
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		resp, err = transport.roundTrip(ctx, req)
//		return err
//	}, cfg)
package retry
