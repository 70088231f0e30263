package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/attestkit/attestation-service-backend/indexer"
	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/registry"
)

// mockSource mocks the AttestationSource interface
type mockSource struct {
	mock.Mock
}

func (m *mockSource) Attestations(ctx context.Context, p indexer.QueryPredicate) ([]interfaces.AttestationRecord, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.AttestationRecord), args.Error(1)
}

func testUID(b byte) interfaces.UID {
	var uid interfaces.UID
	uid[31] = b
	return uid
}

func testAddress(b byte) interfaces.Address {
	var addr interfaces.Address
	addr[19] = b
	return addr
}

// fixedNow is the pipeline's notion of the current time in these tests.
var fixedNow = time.Unix(1800000000, 0).UTC()

func testRecord(uid interfaces.UID) interfaces.AttestationRecord {
	return interfaces.AttestationRecord{
		UID:       uid,
		SchemaUID: testUID(0x55),
		Schema:    "string name,uint256 age",
		Recipient: testAddress(0x01),
		Attester:  testAddress(0x02),
		Time:      1700000000,
		Revocable: true,
	}
}

func matchingOnchain(record interfaces.AttestationRecord) *interfaces.OnchainAttestation {
	return &interfaces.OnchainAttestation{
		UID:            record.UID,
		SchemaUID:      record.SchemaUID,
		Time:           record.Time,
		ExpirationTime: record.ExpirationTime,
		RevocationTime: record.RevocationTime,
		Recipient:      record.Recipient,
		Attester:       record.Attester,
		Revocable:      record.Revocable,
	}
}

func testSchema(uid interfaces.UID) *interfaces.SchemaRecord {
	return &interfaces.SchemaRecord{
		UID:       uid,
		Schema:    "string name,uint256 age",
		Revocable: true,
	}
}

// newTestEngine wires an engine with a deterministic clock.
func newTestEngine(source AttestationSource, reg interfaces.AttestationRegistry) *Engine {
	e := NewEngine(source, reg, nil)
	e.now = func() time.Time { return fixedNow }
	return e
}

func issueMessages(issues []Issue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

func TestVerifyNonexistent(t *testing.T) {
	uid := testUID(0x01)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, indexer.ByUID(uid)).Return([]interfaces.AttestationRecord{}, nil)
	reg := new(registry.MockRegistry)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.False(t, result.Exists)
	assert.False(t, result.Valid)
	assert.False(t, result.Revoked)
	assert.False(t, result.Expired)
	assert.Nil(t, result.Attestation)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
	assert.Equal(t, "Attestation does not exist", result.Issues[0].Message)

	// The pipeline stops before any registry traffic.
	reg.AssertNotCalled(t, "GetAttestation", mock.Anything, mock.Anything)
	reg.AssertNotCalled(t, "GetSchema", mock.Anything, mock.Anything)
	source.AssertExpectations(t)
}

func TestVerifyIndexerErrorPropagates(t *testing.T) {
	uid := testUID(0x02)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return(nil, &interfaces.TransportError{StatusCode: 502, Status: "502 Bad Gateway"})

	engine := newTestEngine(source, new(registry.MockRegistry))
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.Error(t, err)
	assert.Nil(t, result)

	var transportErr *interfaces.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestVerifyAllChecksPass(t *testing.T) {
	uid := testUID(0x03)
	record := testRecord(uid)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, indexer.ByUID(uid)).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.True(t, result.Exists)
	assert.True(t, result.Valid)
	assert.False(t, result.Revoked)
	assert.False(t, result.Expired)
	require.NotNil(t, result.Attestation)
	assert.Equal(t, uid, result.Attestation.UID)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityInfo, result.Issues[0].Severity)
	assert.Equal(t, "All checks passed", result.Issues[0].Message)

	reg.AssertExpectations(t)
}

func TestVerifyRevoked(t *testing.T) {
	uid := testUID(0x04)
	record := testRecord(uid)
	record.RevocationTime = 1700000000
	record.ExpirationTime = 0

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.True(t, result.Revoked)
	assert.False(t, result.Expired, "zero expiration time must never count as expired")

	messages := issueMessages(result.Issues)
	assert.Contains(t, messages, "Attestation was revoked at 2023-11-14T22:13:20Z")
	for _, msg := range messages {
		assert.NotContains(t, msg, "expired")
	}
}

func TestVerifyExpired(t *testing.T) {
	uid := testUID(0x05)
	record := testRecord(uid)
	record.ExpirationTime = uint64(fixedNow.Unix()) - 3600

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.True(t, result.Expired)
	assert.False(t, result.Revoked)

	require.NotEmpty(t, result.Issues)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
	assert.Contains(t, result.Issues[0].Message, "Attestation expired at")
}

func TestVerifyExpirationAtNowStillValid(t *testing.T) {
	uid := testUID(0x06)
	record := testRecord(uid)
	record.ExpirationTime = uint64(fixedNow.Unix())

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	// Expiration is strict: an attestation expiring exactly now is still valid.
	assert.True(t, result.Valid)
	assert.False(t, result.Expired)
}

func TestVerifyOptionsDisableChecks(t *testing.T) {
	uid := testUID(0x07)
	record := testRecord(uid)
	record.RevocationTime = 1700000000
	record.ExpirationTime = uint64(fixedNow.Unix()) - 1

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, Options{})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.False(t, result.Revoked)
	assert.False(t, result.Expired)
}

func TestVerifyRegistryUnavailableIsWarning(t *testing.T) {
	uid := testUID(0x08)
	record := testRecord(uid)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(nil, &interfaces.RegistryError{Op: "getAttestation", Err: context.DeadlineExceeded})
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	// A transiently unreachable registry must not invalidate the attestation.
	assert.True(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	assert.Contains(t, result.Issues[0].Message, "could not verify against on-chain registry")
}

func TestVerifyCrossSourceMismatchIsFatal(t *testing.T) {
	uid := testUID(0x09)
	record := testRecord(uid)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	// The authoritative source has never seen this attestation.
	reg.On("GetAttestation", mock.Anything, uid).Return(nil, interfaces.ErrAttestationNotFound)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	messages := issueMessages(result.Issues)
	assert.Contains(t, messages, "Attestation data mismatch between on-chain and indexer")
}

func TestVerifySchemaResolutionFailureIsFatal(t *testing.T) {
	uid := testUID(0x0a)
	record := testRecord(uid)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(nil, interfaces.ErrSchemaNotFound)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
	assert.Contains(t, result.Issues[0].Message, "Referenced schema could not be resolved")
}

func TestVerifyEmptySchemaDefinitionIsFatal(t *testing.T) {
	uid := testUID(0x0b)
	record := testRecord(uid)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(&interfaces.SchemaRecord{UID: record.SchemaUID}, nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	messages := issueMessages(result.Issues)
	assert.Contains(t, messages, "Referenced schema has an empty definition")
}

func TestVerifyRegistryPanicIsContained(t *testing.T) {
	uid := testUID(0x0d)
	record := testRecord(uid)

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Run(func(args mock.Arguments) {
		panic("registry client state corrupted")
	}).Return(nil, nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)
	result, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	// The caller still gets a well-formed terminal verdict.
	assert.False(t, result.Valid)
	assert.False(t, result.Revoked)
	assert.False(t, result.Expired)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
	assert.Equal(t, "Verification failed: registry client state corrupted", result.Issues[0].Message)
}

func TestVerifyIdempotent(t *testing.T) {
	uid := testUID(0x0c)
	record := testRecord(uid)
	record.RevocationTime = 1700000000

	source := new(mockSource)
	source.On("Attestations", mock.Anything, mock.Anything).Return([]interfaces.AttestationRecord{record}, nil)

	reg := new(registry.MockRegistry)
	reg.On("GetAttestation", mock.Anything, uid).Return(matchingOnchain(record), nil)
	reg.On("GetSchema", mock.Anything, record.SchemaUID).Return(testSchema(record.SchemaUID), nil)

	engine := newTestEngine(source, reg)

	first, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)
	second, err := engine.Verify(context.Background(), uid, AllChecks)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSeverityRoundTrip(t *testing.T) {
	for _, severity := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		data, err := severity.MarshalJSON()
		require.NoError(t, err)

		var parsed Severity
		require.NoError(t, parsed.UnmarshalJSON(data))
		assert.Equal(t, severity, parsed)
	}

	var parsed Severity
	assert.Error(t, parsed.UnmarshalJSON([]byte(`"critical"`)))
}
