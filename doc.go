// Package bankclient provides a resilient client for a remote banking API:
//
//   - Account validation, balance lookup, fund transfer and transaction history
//   - Retries with exponential backoff + jitter for network and 5xx failures
//   - Scoped JWT acquisition with time-boxed token caching
//   - Input sanitization and validation before anything touches the wire
//   - Optional circuit breaker and token-bucket rate limiting
//   - Prometheus metrics plus an on-demand performance snapshot
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - Client-side validation failures are never retried; only network and
//     server (5xx) failures are
//   - "Account not found" is a result, not an error
//   - Safe concurrent use of a single *Client instance
//
// Typical usage:
//
//	client, err := bankclient.New(
//	    bankclient.WithBaseURL("https://bank.example.com"),
//	    bankclient.WithMaxRetries(3),
//	    bankclient.WithMetrics(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := client.ValidateAccount(ctx, "acc1000", false)
//
// Failures surface as *ClientError values carrying a machine readable code,
// the server status/body where available, and the underlying cause for
// errors.Is / errors.As inspection.
//
// The library avoids opinionated logging: provide a Logger (e.g. via
// WithZapLogger) for insight into retry, auth and cache decisions without noise.
package bankclient
