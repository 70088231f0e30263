package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/attestkit/attestation-service-backend/indexer"
	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/registry"
	"github.com/attestkit/attestation-service-backend/verify"
)

// mockQuerier mocks the AttestationQuerier interface
type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Attestations(ctx context.Context, p indexer.QueryPredicate) ([]interfaces.AttestationRecord, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.AttestationRecord), args.Error(1)
}

func (m *mockQuerier) Schemas(ctx context.Context, p indexer.QueryPredicate) ([]interfaces.SchemaRecord, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.SchemaRecord), args.Error(1)
}

// mockVerifier mocks the Verifier interface
type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, uid interfaces.UID, opts verify.Options) (*verify.Result, error) {
	args := m.Called(ctx, uid, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verify.Result), args.Error(1)
}

func testUID(b byte) interfaces.UID {
	var uid interfaces.UID
	uid[31] = b
	return uid
}

func newTestServer(t *testing.T, querier AttestationQuerier, verifier Verifier, reg interfaces.AttestationRegistry) http.Handler {
	t.Helper()

	handler := NewHandler(querier, verifier, reg, nil, nil, slog.Default())
	srv, err := New(&HTTPServerConfig{
		ListenAddr:   "127.0.0.1:0",
		Log:          slog.Default(),
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}, handler)
	require.NoError(t, err)

	return srv.getRouter()
}

func TestHandleGetAttestation(t *testing.T) {
	uid := testUID(0x01)
	record := interfaces.AttestationRecord{UID: uid, SchemaUID: testUID(0x02), Time: 1700000000}

	querier := new(mockQuerier)
	querier.On("Attestations", mock.Anything, indexer.ByUID(uid)).Return([]interfaces.AttestationRecord{record}, nil)

	router := newTestServer(t, querier, new(mockVerifier), new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attestations/"+uid.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got interfaces.AttestationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uid, got.UID)
}

func TestHandleGetAttestationNotFound(t *testing.T) {
	querier := new(mockQuerier)
	querier.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{}, nil)

	router := newTestServer(t, querier, new(mockVerifier), new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attestations/"+testUID(0x03).String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetAttestationBadUID(t *testing.T) {
	router := newTestServer(t, new(mockQuerier), new(mockVerifier), new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attestations/0x1234", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListAttestationsFilters(t *testing.T) {
	recipient, err := interfaces.NewAddressFromHex("0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	querier := new(mockQuerier)
	querier.On("Attestations", mock.Anything, mock.MatchedBy(func(p indexer.QueryPredicate) bool {
		return p.Recipient != nil && *p.Recipient == recipient && p.Limit == 10
	})).Return([]interfaces.AttestationRecord{}, nil)

	router := newTestServer(t, querier, new(mockVerifier), new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attestations?recipient="+recipient.String()+"&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	querier.AssertExpectations(t)
}

func TestHandleListAttestationsRejectsBadFilters(t *testing.T) {
	router := newTestServer(t, new(mockQuerier), new(mockVerifier), new(registry.MockRegistry))

	for _, target := range []string{
		"/api/attestations?recipient=nothex",
		"/api/attestations?schema=0x12",
		"/api/attestations?limit=-1",
		"/api/attestations?limit=1000000",
		"/api/attestations?offset=-5",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandleListAttestationsIndexerDown(t *testing.T) {
	querier := new(mockQuerier)
	querier.On("Attestations", mock.Anything, mock.Anything).Return(nil, &interfaces.TransportError{StatusCode: 503, Status: "503 Service Unavailable"})

	router := newTestServer(t, querier, new(mockVerifier), new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attestations", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	// The upstream detail stays in the log; the response carries an error id.
	assert.NotContains(t, rec.Body.String(), "503")
	assert.Contains(t, rec.Body.String(), "error id")
}

func TestHandleGetSchema(t *testing.T) {
	uid := testUID(0x05)
	reg := new(registry.MockRegistry)
	reg.On("GetSchema", mock.Anything, uid).Return(&interfaces.SchemaRecord{UID: uid, Schema: "string name"}, nil)

	router := newTestServer(t, new(mockQuerier), new(mockVerifier), reg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schemas/"+uid.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got interfaces.SchemaRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "string name", got.Schema)
}

func TestHandleGetSchemaNotFound(t *testing.T) {
	reg := new(registry.MockRegistry)
	reg.On("GetSchema", mock.Anything, mock.Anything).Return(nil, interfaces.ErrSchemaNotFound)

	router := newTestServer(t, new(mockQuerier), new(mockVerifier), reg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schemas/"+testUID(0x06).String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleVerify(t *testing.T) {
	uid := testUID(0x07)
	verifier := new(mockVerifier)
	verifier.On("Verify", mock.Anything, uid, verify.AllChecks).Return(&verify.Result{
		UID:    uid,
		Valid:  true,
		Exists: true,
		Issues: []verify.Issue{{Severity: verify.SeverityInfo, Message: "All checks passed"}},
	}, nil)

	router := newTestServer(t, new(mockQuerier), verifier, new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/attestations/"+uid.String()+"/verify", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got verify.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Valid)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, verify.SeverityInfo, got.Issues[0].Severity)
}

func TestHandleVerifyOptions(t *testing.T) {
	uid := testUID(0x08)
	verifier := new(mockVerifier)
	verifier.On("Verify", mock.Anything, uid, verify.Options{CheckRevocation: true}).Return(&verify.Result{UID: uid, Exists: true, Valid: true}, nil)

	router := newTestServer(t, new(mockQuerier), verifier, new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/attestations/"+uid.String()+"/verify?check_expiration=false", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	verifier.AssertExpectations(t)
}

func TestHealthAndDrain(t *testing.T) {
	router := newTestServer(t, new(mockQuerier), new(mockVerifier), new(registry.MockRegistry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/drain", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "draining"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/undrain", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
