package archive

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// Factory creates archive backends from URI strings and manages
// multi-backend configurations for redundant archival.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a new factory instance that can create archive backends.
func NewFactory(log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{log: log}
}

// BackendFor creates an archive backend from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem archival
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS distributed storage
//   - vault:// - HashiCorp Vault KV v2 secrets engine
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *Factory) BackendFor(locationURI string) (interfaces.ArchiveBackend, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return f.createFileBackend(u)
	case "ipfs":
		return f.createIPFSBackend(u)
	case "s3":
		return f.createS3Backend(u)
	case "vault":
		return f.createVaultBackend(u)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiBackend creates a multi-archive backend from a list of location
// URIs. The multi-backend aggregates all valid backends: entries are stored
// to every available backend and fetched from the first one that has them.
// Returns an error if no valid backends could be created.
func (f *Factory) CreateMultiBackend(locationURIs []string) (interfaces.ArchiveBackend, error) {
	backends := make([]interfaces.ArchiveBackend, 0, len(locationURIs))

	for _, uri := range locationURIs {
		backend, err := f.BackendFor(uri)
		if err != nil {
			f.log.Warn("Failed to create archive backend",
				"err", err,
				slog.String("locationURI", uri))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid archive backends created")
	}

	return NewMultiBackend(backends, f.log), nil
}

// createFileBackend creates a file system archive backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (f *Factory) createFileBackend(u *url.URL) (interfaces.ArchiveBackend, error) {
	f.log.Debug("Creating file backend", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileBackend(path, f.log)
}

// createIPFSBackend creates an IPFS archive backend.
// URI format: ipfs://host:port/?timeout=30s
func (f *Factory) createIPFSBackend(u *url.URL) (interfaces.ArchiveBackend, error) {
	f.log.Debug("Creating IPFS backend", slog.String("uri", u.String()))

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5001" // Default IPFS API port
	}

	timeout := u.Query().Get("timeout")
	if timeout == "" {
		timeout = "30s"
	}

	return NewIPFSBackend(host, port, timeout, f.log)
}

// createS3Backend creates an S3 or S3-compatible archive backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
func (f *Factory) createS3Backend(u *url.URL) (interfaces.ArchiveBackend, error) {
	f.log.Debug("Creating S3 backend", slog.String("uri", u.String()))

	bucketName := u.Host
	path := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}

	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
		f.log.Debug("Using embedded credentials for write access")
	} else {
		f.log.Debug("No credentials provided, S3 bucket assumed to be public, write operations may fail")
	}

	return NewS3Backend(bucketName, path, region, endpoint, accessKey, secretKey, f.log)
}

// createVaultBackend creates a HashiCorp Vault archive backend.
// URI format: vault://[TOKEN@]host:port/mount/path?tls=true
func (f *Factory) createVaultBackend(u *url.URL) (interfaces.ArchiveBackend, error) {
	f.log.Debug("Creating Vault backend", slog.String("uri", u.String()))

	scheme := "https"
	if u.Query().Get("tls") == "false" {
		scheme = "http"
	}
	address := fmt.Sprintf("%s://%s", scheme, u.Host)

	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: vault URI must be vault://host:port/mount/path", interfaces.ErrInvalidLocationURI)
	}

	var token string
	if u.User != nil {
		token = u.User.Username()
	}

	return NewVaultBackend(address, parts[0], parts[1], token, f.log)
}
