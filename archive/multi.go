package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// MultiBackend implements interfaces.ArchiveBackend over multiple backends
// with fallback. Entries are stored to every available backend and fetched
// from the first one that has them.
type MultiBackend struct {
	backends []interfaces.ArchiveBackend
	log      *slog.Logger
}

// NewMultiBackend creates a new multi-archive backend with fallback.
func NewMultiBackend(backends []interfaces.ArchiveBackend, log *slog.Logger) *MultiBackend {
	if log == nil {
		log = slog.Default()
	}

	return &MultiBackend{
		backends: backends,
		log:      log,
	}
}

// Fetch retrieves an entry from the first available backend that has it.
func (m *MultiBackend) Fetch(ctx context.Context, uid interfaces.UID, kind interfaces.EntryKind) ([]byte, error) {
	start := time.Now()
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend_name", backend.Name()),
				slog.String("uid", uid.String()))
			continue
		}

		data, err := backend.Fetch(ctx, uid, kind)
		if err == nil {
			m.log.Debug("Fetched entry",
				slog.String("backend_name", backend.Name()),
				slog.String("uid", uid.String()),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		m.log.Debug("Failed to fetch from backend",
			slog.String("backend_name", backend.Name()),
			slog.String("uid", uid.String()),
			"err", err)
	}

	m.log.Error("All backends failed to fetch entry",
		slog.String("uid", uid.String()),
		slog.Int("failed_backends", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("all backends failed to fetch %s: %v", uid, errs)
}

// Store saves an entry to all available backends. The write succeeds as
// long as at least one backend accepted it.
func (m *MultiBackend) Store(ctx context.Context, uid interfaces.UID, kind interfaces.EntryKind, data []byte) error {
	start := time.Now()
	var success bool
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			continue
		}

		if err := backend.Store(ctx, uid, kind, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
			continue
		}

		if !success {
			success = true
			m.log.Debug("Stored entry",
				slog.String("backend_name", backend.Name()),
				slog.String("uid", uid.String()),
				slog.Duration("duration", time.Since(start)))
		}
	}

	if !success {
		m.log.Error("All backends failed to store entry",
			slog.String("uid", uid.String()),
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("all backends failed to store %s: %v", uid, errs)
	}

	return nil
}

// Available checks if any backend is available.
func (m *MultiBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this backend.
func (m *MultiBackend) Name() string {
	return "multi-archive"
}

// LocationURI returns the combined URI of all wrapped backends.
func (m *MultiBackend) LocationURI() string {
	var locations []string
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
