package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// HTTPTransport is the default IndexerTransport: a single JSON POST per
// query to the configured GraphQL endpoint. The client timeout is the only
// latency bound; no retries are performed.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

// DefaultTimeout bounds a single indexer round trip unless overridden.
const DefaultTimeout = 30 * time.Second

// NewHTTPTransport creates a transport for the given indexer endpoint with
// the default timeout.
func NewHTTPTransport(endpoint string) *HTTPTransport {
	return NewHTTPTransportWithTimeout(endpoint, DefaultTimeout)
}

// NewHTTPTransportWithTimeout creates a transport with an explicit timeout.
func NewHTTPTransportWithTimeout(endpoint string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the configured indexer endpoint URL.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// Do sends the query document and returns the raw response body. A transport
// or non-2xx failure yields *interfaces.TransportError.
func (t *HTTPTransport) Do(ctx context.Context, query string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("could not marshal query payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create indexer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &interfaces.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &interfaces.TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &interfaces.TransportError{Err: fmt.Errorf("could not read response body: %w", err)}
	}

	return body, nil
}
