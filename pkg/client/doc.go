// Package client is a Go client of the taskengine HTTP API.
//
// It wraps the /api/v1 routes served by internal/server:
//
//	c, err := client.NewClient("http://localhost:8000", client.WithToken(token))
//	id, err := c.SubmitLoad(ctx, "/var/log/messages")
//	load, err := c.WaitLoad(ctx, id, 200*time.Millisecond, nil)
//
// Error responses are mapped back to the typed errors of pkg/errors, so callers can test a
// 404 with errors.IsResourceNotFoundError. A POST /loads refused with 429 is retried with
// an exponential backoff that honors the Retry-After header; ErrRateLimited is returned
// once the retries are spent.
package client
