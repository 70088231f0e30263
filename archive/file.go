package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// FileBackend implements an archive backend using the local file system.
// Entries are stored in a directory per entry kind, named by attestation UID.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file archive backend using the specified base
// directory, creating the per-kind subdirectories if they don't exist.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	for _, kind := range []interfaces.EntryKind{interfaces.PayloadEntry, interfaces.ReportEntry} {
		if err := os.MkdirAll(filepath.Join(baseDir, kind.String()+"s"), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", kind, err)
		}
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch retrieves an archived entry from the file system by UID and kind.
// Returns ErrEntryNotFound if the file doesn't exist.
func (b *FileBackend) Fetch(ctx context.Context, uid interfaces.UID, kind interfaces.EntryKind) ([]byte, error) {
	filePath := b.entryPath(uid, kind)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, interfaces.ErrEntryNotFound
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	b.log.Debug("Fetched entry from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return data, nil
}

// Store saves an entry to the file system under its UID and kind.
func (b *FileBackend) Store(ctx context.Context, uid interfaces.UID, kind interfaces.EntryKind, data []byte) error {
	filePath := b.entryPath(uid, kind)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	b.log.Debug("Stored entry in file",
		slog.String("path", filePath),
		slog.String("uid", uid.String()))

	return nil
}

// Available checks if the file backend is accessible by verifying the base directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this archive backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this archive backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

// entryPath generates a file path for a UID and entry kind.
func (b *FileBackend) entryPath(uid interfaces.UID, kind interfaces.EntryKind) string {
	return filepath.Join(b.baseDir, kind.String()+"s", uid.String())
}
