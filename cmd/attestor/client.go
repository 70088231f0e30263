package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/attestkit/attestation-service-backend/cmd/flags"
	"github.com/attestkit/attestation-service-backend/indexer"
	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/registry"
	"github.com/attestkit/attestation-service-backend/schemacodec"
	"github.com/attestkit/attestation-service-backend/verify"
)

// Client bundles the indexer, registry, and codec behind the CLI commands.
// The registry connector is created lazily because read-only commands
// (query, verify without contracts) don't need contract addresses.
type Client struct {
	cCtx    *cli.Context
	log     *slog.Logger
	indexer *indexer.Client
	codec   *schemacodec.Codec
}

func newClient(cCtx *cli.Context) (*Client, error) {
	logger := flags.SetupLogger(cCtx)

	transport := indexer.NewHTTPTransport(cCtx.String(flags.IndexerURLFlag.Name))

	return &Client{
		cCtx:    cCtx,
		log:     logger,
		indexer: indexer.NewClient(transport, logger),
		codec:   schemacodec.New(logger),
	}, nil
}

// registryClient dials the RPC endpoint and binds the configured contracts.
// When withSigner is set, the private-key flag is required and the resulting
// client can submit transactions.
func (c *Client) registryClient(withSigner bool) (*registry.OnchainRegistryClient, error) {
	attestationContract, err := interfaces.NewAddressFromHex(c.cCtx.String(flags.AttestationContractFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("could not parse attestation contract address: %w", err)
	}

	schemaContract, err := interfaces.NewAddressFromHex(c.cCtx.String(flags.SchemaContractFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("could not parse schema contract address: %w", err)
	}

	ethClient, err := ethclient.Dial(c.cCtx.String(flags.RPCAddrFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("could not dial RPC: %w", err)
	}

	client, err := registry.NewOnchainRegistryClient(ethClient, ethClient, attestationContract, schemaContract, c.log)
	if err != nil {
		return nil, err
	}

	if withSigner {
		keyHex := c.cCtx.String(flags.PrivateKeyFlag.Name)
		if keyHex == "" {
			return nil, errors.New("private-key is required for transactions")
		}

		key, err := crypto.HexToECDSA(keyHex)
		if err != nil {
			return nil, fmt.Errorf("could not parse private key: %w", err)
		}

		chainID := big.NewInt(c.cCtx.Int64(flags.ChainIDFlag.Name))
		auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return nil, fmt.Errorf("could not create transactor: %w", err)
		}
		client.SetTransactOpts(auth)
	}

	return client, nil
}

// Attest encodes the data against the schema definition and submits a new
// attestation. The definition comes from the --definition flag, the on-chain
// schema record, or type inference over the data, in that order.
func (c *Client) Attest(cCtx *cli.Context) error {
	ctx := context.Background()

	schemaUID, err := interfaces.NewUIDFromHex(cCtx.String("schema-uid"))
	if err != nil {
		return fmt.Errorf("could not parse schema UID: %w", err)
	}

	var recipient interfaces.Address
	if s := cCtx.String("recipient"); s != "" {
		recipient, err = interfaces.NewAddressFromHex(s)
		if err != nil {
			return fmt.Errorf("could not parse recipient address: %w", err)
		}
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(cCtx.String("data")), &values); err != nil {
		return fmt.Errorf("data must be a JSON object: %w", err)
	}

	reg, err := c.registryClient(true)
	if err != nil {
		return err
	}

	definition := cCtx.String("definition")
	if definition == "" {
		schema, err := reg.GetSchema(ctx, schemaUID)
		switch {
		case err == nil:
			definition = schema.Schema
		case errors.Is(err, interfaces.ErrSchemaNotFound):
			definition = schemacodec.InferDefinition(values)
			c.log.Warn("Schema not found on registry, inferring definition from data",
				slog.String("definition", definition))
		default:
			return err
		}
	}

	data, err := c.codec.Encode(definition, values)
	if err != nil {
		return fmt.Errorf("could not encode attestation data: %w", err)
	}

	uid, err := reg.Attest(ctx, interfaces.AttestationRequest{
		SchemaUID:      schemaUID,
		Recipient:      recipient,
		ExpirationTime: cCtx.Uint64("expiration"),
		Revocable:      cCtx.Bool("revocable"),
		Data:           data,
	})
	if err != nil {
		return err
	}

	fmt.Println(uid.String())
	return nil
}

// Revoke submits a revocation for an existing attestation.
func (c *Client) Revoke(cCtx *cli.Context) error {
	schemaUID, err := interfaces.NewUIDFromHex(cCtx.String("schema-uid"))
	if err != nil {
		return fmt.Errorf("could not parse schema UID: %w", err)
	}

	uid, err := interfaces.NewUIDFromHex(cCtx.String("uid"))
	if err != nil {
		return fmt.Errorf("could not parse attestation UID: %w", err)
	}

	reg, err := c.registryClient(true)
	if err != nil {
		return err
	}

	if err := reg.Revoke(context.Background(), schemaUID, uid); err != nil {
		return err
	}

	fmt.Printf("revoked %s\n", uid)
	return nil
}

// Verify runs the verification pipeline and prints the result.
func (c *Client) Verify(cCtx *cli.Context) error {
	uid, err := interfaces.NewUIDFromHex(cCtx.String("uid"))
	if err != nil {
		return fmt.Errorf("could not parse attestation UID: %w", err)
	}

	reg, err := c.registryClient(false)
	if err != nil {
		return err
	}

	opts := verify.Options{
		CheckExpiration: !cCtx.Bool("skip-expiration-check"),
		CheckRevocation: !cCtx.Bool("skip-revocation-check"),
	}

	engine := verify.NewEngine(c.indexer, reg, c.log)
	result, err := engine.Verify(context.Background(), uid, opts)
	if err != nil {
		return err
	}

	if cCtx.Bool("json") {
		return printJSON(result)
	}

	printResultText(result)
	if !result.Valid {
		os.Exit(1)
	}
	return nil
}

// printResultText renders the verification result for terminals. Issue icons
// come from the explicit severity tag.
func printResultText(result *verify.Result) {
	verdict := "INVALID"
	if result.Valid {
		verdict = "VALID"
	}
	fmt.Printf("%s  %s\n", result.UID, verdict)

	for _, issue := range result.Issues {
		var icon string
		switch issue.Severity {
		case verify.SeverityError:
			icon = "✗"
		case verify.SeverityWarning:
			icon = "⚠"
		default:
			icon = "✓"
		}
		fmt.Printf("  %s %s\n", icon, issue.Message)
	}
}

// QueryAttestations lists attestations matching the given filters.
func (c *Client) QueryAttestations(cCtx *cli.Context) error {
	var predicate indexer.QueryPredicate

	if s := cCtx.String("schema-uid"); s != "" {
		uid, err := interfaces.NewUIDFromHex(s)
		if err != nil {
			return fmt.Errorf("could not parse schema UID: %w", err)
		}
		predicate.SchemaUID = &uid
	}

	if s := cCtx.String("recipient"); s != "" {
		addr, err := interfaces.NewAddressFromHex(s)
		if err != nil {
			return fmt.Errorf("could not parse recipient address: %w", err)
		}
		predicate.Recipient = &addr
	}

	if s := cCtx.String("attester"); s != "" {
		addr, err := interfaces.NewAddressFromHex(s)
		if err != nil {
			return fmt.Errorf("could not parse attester address: %w", err)
		}
		predicate.Attester = &addr
	}

	predicate.Limit = cCtx.Int("limit")
	predicate.Offset = cCtx.Int("offset")

	records, err := c.indexer.Attestations(context.Background(), predicate)
	if err != nil {
		return err
	}

	return printJSON(records)
}

// QuerySchemas lists schemas known to the indexer.
func (c *Client) QuerySchemas(cCtx *cli.Context) error {
	predicate := indexer.QueryPredicate{
		Limit:  cCtx.Int("limit"),
		Offset: cCtx.Int("offset"),
	}

	records, err := c.indexer.Schemas(context.Background(), predicate)
	if err != nil {
		return err
	}

	return printJSON(records)
}

// RegisterSchema registers a new schema definition on the registry.
func (c *Client) RegisterSchema(cCtx *cli.Context) error {
	definition := cCtx.String("definition")
	if _, err := schemacodec.ParseDefinition(definition); err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	var resolver interfaces.Address
	if s := cCtx.String("resolver"); s != "" {
		var err error
		resolver, err = interfaces.NewAddressFromHex(s)
		if err != nil {
			return fmt.Errorf("could not parse resolver address: %w", err)
		}
	}

	reg, err := c.registryClient(true)
	if err != nil {
		return err
	}

	uid, err := reg.RegisterSchema(context.Background(), definition, resolver, cCtx.Bool("revocable"))
	if err != nil {
		return err
	}

	fmt.Println(uid.String())
	return nil
}

// GetSchema fetches a schema record from the registry.
func (c *Client) GetSchema(cCtx *cli.Context) error {
	uid, err := interfaces.NewUIDFromHex(cCtx.String("uid"))
	if err != nil {
		return fmt.Errorf("could not parse schema UID: %w", err)
	}

	reg, err := c.registryClient(false)
	if err != nil {
		return err
	}

	schema, err := reg.GetSchema(context.Background(), uid)
	if err != nil {
		return err
	}

	return printJSON(schema)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
