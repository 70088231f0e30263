// The attestor command issues, revokes, queries, and verifies attestations
// from the command line.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/attestkit/attestation-service-backend/cmd/flags"
)

var (
	uidFlag = &cli.StringFlag{
		Name:     "uid",
		Required: true,
		Usage:    "attestation or schema UID. 0x-prefixed 64-char hex string",
	}
	schemaUIDFlag = &cli.StringFlag{
		Name:     "schema-uid",
		Required: true,
		Usage:    "schema UID. 0x-prefixed 64-char hex string",
	}
	recipientFlag = &cli.StringFlag{
		Name:  "recipient",
		Usage: "recipient address. 0x-prefixed 40-char hex string",
	}
	attesterFlag = &cli.StringFlag{
		Name:  "attester",
		Usage: "attester address filter. 0x-prefixed 40-char hex string",
	}
	dataFlag = &cli.StringFlag{
		Name:     "data",
		Required: true,
		Usage:    "attestation data as a JSON object keyed by field name",
	}
	definitionFlag = &cli.StringFlag{
		Name:  "definition",
		Usage: "schema definition string, e.g. 'string name,uint256 age'. Fetched from the registry when omitted, inferred from the data when the registry has no schema",
	}
	expirationFlag = &cli.Uint64Flag{
		Name:  "expiration",
		Usage: "expiration time as unix seconds, 0 for no expiration",
	}
	revocableFlag = &cli.BoolFlag{
		Name:  "revocable",
		Value: true,
		Usage: "whether the attestation can be revoked",
	}
	resolverFlag = &cli.StringFlag{
		Name:  "resolver",
		Usage: "resolver contract address for the schema, zero address for none",
	}
	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "maximum number of records to return",
	}
	offsetFlag = &cli.IntFlag{
		Name:  "offset",
		Usage: "number of records to skip",
	}
	jsonOutputFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "print the result as JSON",
	}
	skipExpirationFlag = &cli.BoolFlag{
		Name:  "skip-expiration-check",
		Usage: "do not check the expiration timestamp",
	}
	skipRevocationFlag = &cli.BoolFlag{
		Name:  "skip-revocation-check",
		Usage: "do not check the revocation timestamp",
	}
)

func main() {
	globalFlags := append([]cli.Flag{
		flags.RPCAddrFlag,
		flags.IndexerURLFlag,
		flags.AttestationContractFlag,
		flags.SchemaContractFlag,
		flags.PrivateKeyFlag,
		flags.ChainIDFlag,
	}, flags.CommonFlags...)

	app := &cli.App{
		Name:  "attestor",
		Usage: "Issue, revoke, query, and verify attestations",
		Flags: globalFlags,
		Commands: []*cli.Command{
			{
				Name:  "attest",
				Usage: "Encode data against a schema and submit a new attestation",
				Flags: []cli.Flag{schemaUIDFlag, recipientFlag, dataFlag, definitionFlag, expirationFlag, revocableFlag},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return c.Attest(cCtx)
				},
			},
			{
				Name:  "revoke",
				Usage: "Revoke an existing attestation",
				Flags: []cli.Flag{schemaUIDFlag, uidFlag},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return c.Revoke(cCtx)
				},
			},
			{
				Name:  "verify",
				Usage: "Run the verification pipeline for an attestation",
				Flags: []cli.Flag{uidFlag, jsonOutputFlag, skipExpirationFlag, skipRevocationFlag},
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return c.Verify(cCtx)
				},
			},
			{
				Name:  "query",
				Usage: "Query the indexer",
				Subcommands: []*cli.Command{
					{
						Name:  "attestations",
						Usage: "List attestations matching the given filters",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "schema-uid", Usage: "schema UID filter"},
							recipientFlag, attesterFlag, limitFlag, offsetFlag,
						},
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							return c.QueryAttestations(cCtx)
						},
					},
					{
						Name:  "schemas",
						Usage: "List registered schemas",
						Flags: []cli.Flag{limitFlag, offsetFlag},
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							return c.QuerySchemas(cCtx)
						},
					},
				},
			},
			{
				Name:  "schema",
				Usage: "Manage schemas on the registry",
				Subcommands: []*cli.Command{
					{
						Name:  "register",
						Usage: "Register a new schema definition",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "definition", Required: true, Usage: "schema definition string"},
							resolverFlag,
							revocableFlag,
						},
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							return c.RegisterSchema(cCtx)
						},
					},
					{
						Name:  "get",
						Usage: "Fetch a schema from the registry",
						Flags: []cli.Flag{uidFlag},
						Action: func(cCtx *cli.Context) error {
							c, err := newClient(cCtx)
							if err != nil {
								return err
							}
							return c.GetSchema(cCtx)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
