package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrEntryNotFound is returned when an archived entry cannot be found in
	// the archive backend.
	ErrEntryNotFound = errors.New("archive entry not found")

	// ErrBackendUnavailable is returned when an archive backend is not
	// accessible, e.g. due to network issues or authentication failures.
	ErrBackendUnavailable = errors.New("archive backend unavailable")

	// ErrInvalidLocationURI is returned when an archive location URI is
	// malformed or uses an unsupported scheme.
	ErrInvalidLocationURI = errors.New("invalid archive location URI")
)

// EntryKind indicates the archive namespace an entry belongs to.
type EntryKind int

const (
	// PayloadEntry holds raw schema-encoded attestation payload bytes.
	PayloadEntry EntryKind = iota
	// ReportEntry holds JSON verification reports.
	ReportEntry
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case PayloadEntry:
		return "payload"
	case ReportEntry:
		return "report"
	default:
		return "unknown"
	}
}

// ArchiveBackend stores attestation payloads and verification reports keyed
// by attestation UID. The archive is strictly write-behind audit material:
// nothing in the verification pipeline reads it back for trust decisions.
type ArchiveBackend interface {
	// Fetch retrieves an archived entry by UID and kind.
	Fetch(ctx context.Context, uid UID, kind EntryKind) ([]byte, error)

	// Store saves an entry under the given UID and kind.
	Store(ctx context.Context, uid UID, kind EntryKind, data []byte) error

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns a unique identifier for this backend.
	Name() string

	// LocationURI returns the URI this backend was created from.
	LocationURI() string
}
