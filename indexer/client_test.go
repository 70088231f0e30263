package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(NewHTTPTransport(server.URL), nil), server
}

func attestationJSON(uid string, revocationTime uint64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"uid": %q,
		"schema": {"id": %q, "schema": "string name,uint256 age"},
		"recipient": %q,
		"attester": %q,
		"time": 1690000000,
		"timeCreated": 1690000000,
		"revocationTime": %d,
		"expirationTime": 0,
		"revocable": true,
		"data": "0x1234",
		"decodedDataJson": "[]"
	}`, uid, uid, "0x"+strings.Repeat("11", 32), "0x"+strings.Repeat("aa", 20), "0x"+strings.Repeat("bb", 20), revocationTime)
}

func TestClientAttestations_Success(t *testing.T) {
	uidHex := "0x" + strings.Repeat("ab", 32)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["query"], "attestations")

		fmt.Fprintf(w, `{"data": {"attestations": [%s]}}`, attestationJSON(uidHex, 1700000000))
	})

	records, err := client.Attestations(context.Background(), QueryPredicate{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, uidHex, record.UID.String())
	assert.Equal(t, "string name,uint256 age", record.Schema)
	assert.Equal(t, uint64(1700000000), record.RevocationTime)
	assert.Equal(t, uint64(0), record.ExpirationTime)
	assert.True(t, record.Revocable)
	assert.Equal(t, []byte{0x12, 0x34}, record.Data)
}

func TestClientAttestations_NoMatches(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"attestations": []}}`)
	})

	records, err := client.Attestations(context.Background(), QueryPredicate{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClientAttestations_MissingField(t *testing.T) {
	// "not found" is length zero, never a missing-field error
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {}}`)
	})

	records, err := client.Attestations(context.Background(), QueryPredicate{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClientAttestations_TransportError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.Attestations(context.Background(), QueryPredicate{})

	var transportErr *interfaces.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.Contains(t, transportErr.Error(), "502")
}

func TestClientAttestations_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(NewHTTPTransport(server.URL), nil)

	_, err := client.Attestations(context.Background(), QueryPredicate{})

	var transportErr *interfaces.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestClientAttestations_QueryError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "unknown field frobnicate"}]}`)
	})

	_, err := client.Attestations(context.Background(), QueryPredicate{})

	var queryErr *interfaces.IndexerQueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Contains(t, queryErr.Errors, "unknown field frobnicate")
}

func TestClientAttestations_InvalidPredicate(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Attestations(context.Background(), QueryPredicate{UIDs: []interfaces.UID{}})

	var invalidErr *interfaces.InvalidQueryError
	require.ErrorAs(t, err, &invalidErr)
	assert.False(t, called, "invalid predicate must fail before any request")
}

func TestClientSchemas_Success(t *testing.T) {
	schemaID := "0x" + strings.Repeat("11", 32)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["query"], "schemata")

		fmt.Fprintf(w, `{"data": {"schemata": [{
			"id": %q,
			"schema": "string eventName,uint256 prize",
			"resolver": %q,
			"revocable": true,
			"creator": %q
		}]}}`, schemaID, "0x"+strings.Repeat("00", 20), "0x"+strings.Repeat("cc", 20))
	})

	records, err := client.Schemas(context.Background(), QueryPredicate{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, schemaID, records[0].UID.String())
	assert.Equal(t, "string eventName,uint256 prize", records[0].Schema)
	assert.True(t, records[0].Revocable)
}

func TestClientRecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"attestations": []}}`)
	})
	client.SetMetrics(m)

	_, err := client.Attestations(context.Background(), QueryPredicate{})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.IndexerQueryDuration), "successful query must observe latency")

	down, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	down.SetMetrics(m)

	_, err = down.Attestations(context.Background(), QueryPredicate{})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexerErrorsTotal.WithLabelValues("transport")))

	rejected, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "unknown field"}]}`)
	})
	rejected.SetMetrics(m)

	_, err = rejected.Attestations(context.Background(), QueryPredicate{})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexerErrorsTotal.WithLabelValues("query")))
}

func TestClientAttestations_MalformedRecord(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"attestations": [{"id": "0x123", "uid": "0x123"}]}}`)
	})

	_, err := client.Attestations(context.Background(), QueryPredicate{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed attestation")
}
