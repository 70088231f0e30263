// Package flags holds the CLI flags and logger wiring shared by the attestor
// commands.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/attestkit/attestation-service-backend/common"
	"github.com/attestkit/attestation-service-backend/httpserver"
)

// SetupLogger builds the service logger from the common logging flags.
func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJSONFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUIDFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer builds the HTTP server config from the server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var RPCAddrFlag = &cli.StringFlag{
	Name:  "rpc-addr",
	Value: "http://127.0.0.1:8545",
	Usage: "address to connect to RPC",
}

var IndexerURLFlag = &cli.StringFlag{
	Name:  "indexer-url",
	Value: "https://sepolia.easscan.org/graphql",
	Usage: "GraphQL endpoint of the attestation indexer",
}

var AttestationContractFlag = &cli.StringFlag{
	Name:  "attestation-contract",
	Usage: "Attestation contract address. 0x-prefixed 40-char hex string",
}

var SchemaContractFlag = &cli.StringFlag{
	Name:  "schema-contract",
	Usage: "Schema registry contract address. 0x-prefixed 40-char hex string",
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "signer key for attest/revoke/register transactions. 64-char hex string with no 0x prefix",
	EnvVars: []string{"ATTESTOR_PRIVATE_KEY"},
}

var ChainIDFlag = &cli.Int64Flag{
	Name:  "chain-id",
	Value: 11155111,
	Usage: "chain id for the EIP-155 transactor",
}

var ArchiveURIFlag = &cli.StringSliceFlag{
	Name:  "archive-uri",
	Usage: "archive backend location URI (repeatable): file://, ipfs://, s3://, vault://",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "attestor",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

// CommonFlags are shared by every attestor command.
var CommonFlags = []cli.Flag{
	LogJSONFlag,
	LogDebugFlag,
	LogUIDFlag,
	LogServiceFlag,
}

// ServerFlags extend CommonFlags for the long-running server.
var ServerFlags = []cli.Flag{
	ArchiveURIFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
