// Package config loads service configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// Config holds the attestation service configuration. Every field can be set
// through the environment; Load applies a .env file first if one exists.
type Config struct {
	// IndexerURL is the GraphQL endpoint of the attestation indexer.
	IndexerURL string `env:"ATTESTOR_INDEXER_URL" envDefault:"https://sepolia.easscan.org/graphql"`

	// RPCURL is the JSON-RPC endpoint of the chain node.
	RPCURL string `env:"ATTESTOR_RPC_URL" envDefault:"http://127.0.0.1:8545"`

	// AttestationContract is the address of the attestation contract.
	AttestationContract string `env:"ATTESTOR_ATTESTATION_CONTRACT"`

	// SchemaContract is the address of the schema registry contract.
	SchemaContract string `env:"ATTESTOR_SCHEMA_CONTRACT"`

	// ListenAddr is the HTTP API listen address.
	ListenAddr string `env:"ATTESTOR_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`

	// MetricsAddr is the Prometheus metrics listen address.
	MetricsAddr string `env:"ATTESTOR_METRICS_ADDR" envDefault:"127.0.0.1:8090"`

	// ArchiveURIs lists archive backend location URIs. Empty disables archival.
	ArchiveURIs []string `env:"ATTESTOR_ARCHIVE_URIS" envSeparator:","`

	// IndexerTimeout bounds a single indexer round trip.
	IndexerTimeout time.Duration `env:"ATTESTOR_INDEXER_TIMEOUT" envDefault:"30s"`

	// LogJSON switches logs to JSON output.
	LogJSON bool `env:"ATTESTOR_LOG_JSON" envDefault:"false"`

	// LogDebug enables debug logging.
	LogDebug bool `env:"ATTESTOR_LOG_DEBUG" envDefault:"false"`
}

// Load reads configuration from the environment. If envFile is non-empty the
// file is loaded first without overriding variables already set.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate performs basic sanity checks on the configuration.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.IndexerURL); err != nil {
		return fmt.Errorf("indexer URL is not a valid URL <%s>: %w", c.IndexerURL, err)
	}

	if _, err := url.ParseRequestURI(c.RPCURL); err != nil {
		return fmt.Errorf("RPC URL is not a valid URL <%s>: %w", c.RPCURL, err)
	}

	if c.AttestationContract != "" {
		if _, err := interfaces.NewAddressFromHex(c.AttestationContract); err != nil {
			return fmt.Errorf("invalid attestation contract address: %w", err)
		}
	}

	if c.SchemaContract != "" {
		if _, err := interfaces.NewAddressFromHex(c.SchemaContract); err != nil {
			return fmt.Errorf("invalid schema contract address: %w", err)
		}
	}

	if c.IndexerTimeout <= 0 {
		return errors.New("indexer timeout must be positive")
	}

	return nil
}

// ContractAddresses returns the parsed contract address pair. Both must be
// configured for registry-backed operations.
func (c *Config) ContractAddresses() (attestation, schema interfaces.Address, err error) {
	if c.AttestationContract == "" || c.SchemaContract == "" {
		return interfaces.Address{}, interfaces.Address{}, errors.New("attestation and schema contract addresses must be configured")
	}

	attestation, err = interfaces.NewAddressFromHex(c.AttestationContract)
	if err != nil {
		return interfaces.Address{}, interfaces.Address{}, err
	}

	schema, err = interfaces.NewAddressFromHex(c.SchemaContract)
	if err != nil {
		return interfaces.Address{}, interfaces.Address{}, err
	}

	return attestation, schema, nil
}
