package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// IPFSBackend implements an archive backend using the InterPlanetary File
// System. Entries are pinned under the MFS path /attestations/<kind>s/<uid>
// so they remain addressable by UID.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a new IPFS archive backend connected to the
// specified host and port.
func NewIPFSBackend(host, port, timeout string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
	}, nil
}

// Fetch retrieves an archived entry from IPFS by UID and kind. Returns
// ErrEntryNotFound if the entry doesn't exist or ErrBackendUnavailable if
// the IPFS node is not accessible.
func (b *IPFSBackend) Fetch(ctx context.Context, uid interfaces.UID, kind interfaces.EntryKind) ([]byte, error) {
	start := time.Now()
	path := b.entryPath(uid, kind)

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.FilesRead(ctx, path)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "no link named") {
			b.log.Debug("Entry not found in IPFS",
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrEntryNotFound
		}

		b.log.Error("Failed to fetch entry from IPFS",
			slog.String("path", path),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to fetch entry from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry from IPFS: %w", err)
	}

	b.log.Debug("Fetched entry from IPFS",
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Store adds an entry to IPFS under its UID-derived MFS path. Returns
// ErrBackendUnavailable if the IPFS node is not accessible.
func (b *IPFSBackend) Store(ctx context.Context, uid interfaces.UID, kind interfaces.EntryKind, data []byte) error {
	if !b.shell.IsUp() {
		return interfaces.ErrBackendUnavailable
	}

	path := b.entryPath(uid, kind)
	err := b.shell.FilesWrite(ctx, path, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true))
	if err != nil {
		return fmt.Errorf("failed to write entry to IPFS: %w", err)
	}

	b.log.Debug("Stored entry in IPFS",
		slog.String("path", path),
		slog.String("uid", uid.String()))

	return nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this archive backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this archive backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

// entryPath generates the MFS path for a UID and entry kind.
func (b *IPFSBackend) entryPath(uid interfaces.UID, kind interfaces.EntryKind) string {
	return fmt.Sprintf("/attestations/%ss/%s", kind, uid)
}
