package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

func testUID(b byte) interfaces.UID {
	var uid interfaces.UID
	uid[31] = b
	return uid
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, slog.Default())
	require.NoError(t, err)

	uid := testUID(0x01)
	payload := []byte(`{"valid":true}`)

	require.NoError(t, backend.Store(context.Background(), uid, interfaces.ReportEntry, payload))

	got, err := backend.Fetch(context.Background(), uid, interfaces.ReportEntry)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Kinds are separate namespaces.
	_, err = backend.Fetch(context.Background(), uid, interfaces.PayloadEntry)
	assert.ErrorIs(t, err, interfaces.ErrEntryNotFound)

	assert.True(t, backend.Available(context.Background()))
	assert.Equal(t, "file-"+filepath.Base(dir), backend.Name())
	assert.Equal(t, "file://"+dir, backend.LocationURI())
}

func TestFileBackendNotFound(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	_, err = backend.Fetch(context.Background(), testUID(0x02), interfaces.ReportEntry)
	assert.ErrorIs(t, err, interfaces.ErrEntryNotFound)
}

func TestFileBackendOverwrite(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	uid := testUID(0x03)
	require.NoError(t, backend.Store(context.Background(), uid, interfaces.PayloadEntry, []byte("v1")))
	require.NoError(t, backend.Store(context.Background(), uid, interfaces.PayloadEntry, []byte("v2")))

	got, err := backend.Fetch(context.Background(), uid, interfaces.PayloadEntry)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestFactorySchemes(t *testing.T) {
	factory := NewFactory(slog.Default())

	backend, err := factory.BackendFor("file://" + t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, backend)

	backend, err = factory.BackendFor("ipfs://localhost:5001/?timeout=10s")
	require.NoError(t, err)
	assert.Equal(t, "ipfs-localhost-5001", backend.Name())

	backend, err = factory.BackendFor("s3://test-bucket/reports/?region=us-west-2")
	require.NoError(t, err)
	assert.Equal(t, "s3-test-bucket", backend.Name())

	backend, err = factory.BackendFor("vault://token@localhost:8200/secret/attestations?tls=false")
	require.NoError(t, err)
	assert.Equal(t, "vault-secret-attestations", backend.Name())
}

func TestFactoryRejectsInvalidURIs(t *testing.T) {
	factory := NewFactory(slog.Default())

	_, err := factory.BackendFor("ftp://example.com/archive")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	_, err = factory.BackendFor("vault://localhost:8200/secretonly")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	_, err = factory.BackendFor("file://")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestFactoryMultiBackend(t *testing.T) {
	factory := NewFactory(slog.Default())

	backend, err := factory.CreateMultiBackend([]string{
		"file://" + t.TempDir(),
		"ftp://invalid.example.com", // skipped with a warning
		"file://" + t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, "multi-archive", backend.Name())

	_, err = factory.CreateMultiBackend([]string{"ftp://invalid.example.com"})
	assert.Error(t, err)
}

// unavailableBackend simulates a backend that is never reachable.
type unavailableBackend struct{}

func (unavailableBackend) Fetch(context.Context, interfaces.UID, interfaces.EntryKind) ([]byte, error) {
	return nil, interfaces.ErrBackendUnavailable
}

func (unavailableBackend) Store(context.Context, interfaces.UID, interfaces.EntryKind, []byte) error {
	return interfaces.ErrBackendUnavailable
}

func (unavailableBackend) Available(context.Context) bool { return false }
func (unavailableBackend) Name() string                   { return "unavailable" }
func (unavailableBackend) LocationURI() string            { return "test://unavailable" }

func TestMultiBackendFallback(t *testing.T) {
	healthy, err := NewFileBackend(t.TempDir(), slog.Default())
	require.NoError(t, err)

	multi := NewMultiBackend([]interfaces.ArchiveBackend{unavailableBackend{}, healthy}, slog.Default())

	uid := testUID(0x10)
	payload := []byte("report")

	require.NoError(t, multi.Store(context.Background(), uid, interfaces.ReportEntry, payload))

	got, err := multi.Fetch(context.Background(), uid, interfaces.ReportEntry)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.True(t, multi.Available(context.Background()))
}

func TestMultiBackendAllUnavailable(t *testing.T) {
	multi := NewMultiBackend([]interfaces.ArchiveBackend{unavailableBackend{}}, slog.Default())

	uid := testUID(0x11)
	assert.Error(t, multi.Store(context.Background(), uid, interfaces.ReportEntry, []byte("x")))

	_, err := multi.Fetch(context.Background(), uid, interfaces.ReportEntry)
	assert.Error(t, err)
	assert.False(t, multi.Available(context.Background()))
}

func TestEntryKindString(t *testing.T) {
	assert.Equal(t, "payload", interfaces.PayloadEntry.String())
	assert.Equal(t, "report", interfaces.ReportEntry.String())
	assert.Equal(t, "unknown", interfaces.EntryKind(42).String())
}

func TestMultiBackendLocationURI(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, slog.Default())
	require.NoError(t, err)

	multi := NewMultiBackend([]interfaces.ArchiveBackend{backend}, slog.Default())
	assert.Equal(t, fmt.Sprintf("multi:[file://%s]", dir), multi.LocationURI())
}
