// The attestor-server command serves the attestation query and verification
// API backed by the indexer and the on-chain registry.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/attestkit/attestation-service-backend/archive"
	"github.com/attestkit/attestation-service-backend/cmd/flags"
	"github.com/attestkit/attestation-service-backend/config"
	"github.com/attestkit/attestation-service-backend/httpserver"
	"github.com/attestkit/attestation-service-backend/indexer"
	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/metrics"
	"github.com/attestkit/attestation-service-backend/registry"
	"github.com/attestkit/attestation-service-backend/verify"
)

var envFileFlag = &cli.StringFlag{
	Name:  "env-file",
	Value: "",
	Usage: "optional .env file applied before reading the environment",
}

func main() {
	app := &cli.App{
		Name:  "attestor-server",
		Usage: "Serve the attestation query and verification API",
		Flags: append(append([]cli.Flag{envFileFlag}, flags.CommonFlags...), flags.ServerFlags...),
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String(envFileFlag.Name))
	if err != nil {
		return err
	}

	logger := flags.SetupLogger(cCtx)

	logger.Info("Connecting to Ethereum RPC", "address", cfg.RPCURL)
	ethClient, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		logger.Error("Failed to dial RPC", "err", err)
		return err
	}

	attestationContract, schemaContract, err := cfg.ContractAddresses()
	if err != nil {
		logger.Error("Invalid contract configuration", "err", err)
		return err
	}

	serviceMetrics := metrics.New(prometheus.DefaultRegisterer)

	registryClient, err := registry.NewOnchainRegistryClient(ethClient, ethClient, attestationContract, schemaContract, logger)
	if err != nil {
		logger.Error("Failed to create registry client", "err", err)
		return err
	}
	registryClient.SetMetrics(serviceMetrics)

	transport := indexer.NewHTTPTransportWithTimeout(cfg.IndexerURL, cfg.IndexerTimeout)
	indexerClient := indexer.NewClient(transport, logger)
	indexerClient.SetMetrics(serviceMetrics)
	engine := verify.NewEngine(indexerClient, registryClient, logger)

	// The archive-uri flag overrides the environment when given.
	if uris := cCtx.StringSlice(flags.ArchiveURIFlag.Name); len(uris) > 0 {
		cfg.ArchiveURIs = uris
	}

	var archiveBackend interfaces.ArchiveBackend
	if len(cfg.ArchiveURIs) > 0 {
		archiveBackend, err = archive.NewFactory(logger).CreateMultiBackend(cfg.ArchiveURIs)
		if err != nil {
			logger.Error("Failed to create archive backends", "err", err)
			return err
		}
		logger.Info("Verification report archive enabled", "location", archiveBackend.LocationURI())
	}

	handler := httpserver.NewHandler(indexerClient, engine, registryClient, archiveBackend, serviceMetrics, logger)

	serverCfg := flags.ConfigureServer(cCtx, logger, cfg.ListenAddr)
	serverCfg.MetricsAddr = cfg.MetricsAddr

	server, err := httpserver.New(serverCfg, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}
