package interfaces

import "context"

// IndexerTransport performs a single request/response exchange with the
// GraphQL indexer. It takes a query document and returns the raw response
// body, or a *TransportError when the endpoint is unreachable or answers
// with a non-2xx status.
//
// The transport owns call latency bounds (timeouts); no retries are
// performed at any layer.
type IndexerTransport interface {
	Do(ctx context.Context, query string) ([]byte, error)
}
