package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/attestkit/attestation-service-backend/bindings/eas"
	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/metrics"
)

// ErrNoTransactOpts is returned when a transaction is attempted without first
// setting transaction options.
var ErrNoTransactOpts = errors.New("no authorized transactor available")

var (
	_ interfaces.AttestationRegistry = (*OnchainRegistryClient)(nil)
	_ interfaces.RegistryFactory     = (*RegistryFactory)(nil)
)

// OnchainRegistryClient implements interfaces.AttestationRegistry against the
// attestation contract and its companion schema registry contract.
type OnchainRegistryClient struct {
	attestation *eas.EAS
	schemas     *eas.SchemaRegistry
	client      bind.ContractBackend
	backend     bind.DeployBackend
	auth        *bind.TransactOpts
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// NewOnchainRegistryClient creates a client for the contracts at the given
// addresses. It requires a ContractBackend for reads and a DeployBackend for
// waiting on transactions.
func NewOnchainRegistryClient(client bind.ContractBackend, backend bind.DeployBackend, attestationContract, schemaContract interfaces.Address, log *slog.Logger) (*OnchainRegistryClient, error) {
	if log == nil {
		log = slog.Default()
	}

	attestation, err := eas.NewEAS(common.BytesToAddress(attestationContract.Bytes()), client)
	if err != nil {
		return nil, err
	}

	schemas, err := eas.NewSchemaRegistry(common.BytesToAddress(schemaContract.Bytes()), client)
	if err != nil {
		return nil, err
	}

	return &OnchainRegistryClient{
		attestation: attestation,
		schemas:     schemas,
		client:      client,
		backend:     backend,
		log:         log,
	}, nil
}

// SetTransactOpts sets the transaction options required for state-modifying
// methods (Attest, Revoke, RegisterSchema). Read methods work without them.
func (c *OnchainRegistryClient) SetTransactOpts(auth *bind.TransactOpts) {
	c.auth = auth
}

// SetMetrics attaches service metrics. Calls are unobserved when unset.
func (c *OnchainRegistryClient) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// GetAttestation reads the authoritative attestation state by UID. A zero
// UID in the returned contract struct means the attestation does not exist
// and is reported as interfaces.ErrAttestationNotFound.
func (c *OnchainRegistryClient) GetAttestation(ctx context.Context, uid interfaces.UID) (*interfaces.OnchainAttestation, error) {
	opts := &bind.CallOpts{Context: ctx}

	att, err := c.attestation.GetAttestation(opts, uid)
	c.metrics.IncrementRegistryCalls("getAttestation", err)
	if err != nil {
		return nil, &interfaces.RegistryError{Op: "getAttestation", Err: err}
	}

	if att.Uid == [32]byte{} {
		return nil, interfaces.ErrAttestationNotFound
	}

	return &interfaces.OnchainAttestation{
		UID:            interfaces.UID(att.Uid),
		SchemaUID:      interfaces.UID(att.Schema),
		Time:           att.Time,
		ExpirationTime: att.ExpirationTime,
		RevocationTime: att.RevocationTime,
		RefUID:         interfaces.UID(att.RefUID),
		Recipient:      interfaces.Address(att.Recipient),
		Attester:       interfaces.Address(att.Attester),
		Revocable:      att.Revocable,
		Data:           att.Data,
	}, nil
}

// GetSchema reads a schema record by UID. A zero UID in the returned
// contract struct is reported as interfaces.ErrSchemaNotFound.
func (c *OnchainRegistryClient) GetSchema(ctx context.Context, uid interfaces.UID) (*interfaces.SchemaRecord, error) {
	opts := &bind.CallOpts{Context: ctx}

	record, err := c.schemas.GetSchema(opts, uid)
	c.metrics.IncrementRegistryCalls("getSchema", err)
	if err != nil {
		return nil, &interfaces.RegistryError{Op: "getSchema", Err: err}
	}

	if record.Uid == [32]byte{} {
		return nil, interfaces.ErrSchemaNotFound
	}

	return &interfaces.SchemaRecord{
		UID:       interfaces.UID(record.Uid),
		Schema:    record.Schema,
		Resolver:  interfaces.Address(record.Resolver),
		Revocable: record.Revocable,
	}, nil
}

// Attest submits a new attestation and waits for the transaction to be
// mined. The new attestation's UID is recovered from the Attested event log.
func (c *OnchainRegistryClient) Attest(ctx context.Context, req interfaces.AttestationRequest) (_ interfaces.UID, err error) {
	if c.auth == nil {
		return interfaces.UID{}, ErrNoTransactOpts
	}
	defer func() { c.metrics.IncrementRegistryCalls("attest", err) }()

	request := eas.AttestationRequest{
		Schema: req.SchemaUID,
		Data: eas.AttestationRequestData{
			Recipient:      common.BytesToAddress(req.Recipient.Bytes()),
			ExpirationTime: req.ExpirationTime,
			Revocable:      req.Revocable,
			RefUID:         req.RefUID,
			Data:           req.Data,
			Value:          big.NewInt(0),
		},
	}

	tx, err := c.attestation.Attest(c.auth, request)
	if err != nil {
		return interfaces.UID{}, &interfaces.RegistryError{Op: "attest", Err: err}
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return interfaces.UID{}, &interfaces.RegistryError{Op: "attest", Err: err}
	}

	for _, logEntry := range receipt.Logs {
		event, err := c.attestation.ParseAttested(*logEntry)
		if err != nil {
			continue
		}
		uid := interfaces.UID(event.Uid)
		c.log.Info("Attestation submitted",
			slog.String("uid", uid.String()),
			slog.String("tx", tx.Hash().Hex()))
		return uid, nil
	}

	return interfaces.UID{}, &interfaces.RegistryError{Op: "attest", Err: errors.New("transaction mined but no Attested event found")}
}

// Revoke revokes an attestation issued under the given schema and waits for
// the transaction to be mined.
func (c *OnchainRegistryClient) Revoke(ctx context.Context, schemaUID, uid interfaces.UID) (err error) {
	if c.auth == nil {
		return ErrNoTransactOpts
	}
	defer func() { c.metrics.IncrementRegistryCalls("revoke", err) }()

	request := eas.RevocationRequest{
		Schema: schemaUID,
		Data: eas.RevocationRequestData{
			Uid:   uid,
			Value: big.NewInt(0),
		},
	}

	tx, err := c.attestation.Revoke(c.auth, request)
	if err != nil {
		return &interfaces.RegistryError{Op: "revoke", Err: err}
	}

	if _, err := c.waitMined(ctx, tx); err != nil {
		return &interfaces.RegistryError{Op: "revoke", Err: err}
	}

	c.log.Info("Attestation revoked",
		slog.String("uid", uid.String()),
		slog.String("tx", tx.Hash().Hex()))
	return nil
}

// RegisterSchema registers a new schema definition and returns its UID,
// recovered from the Registered event log.
func (c *OnchainRegistryClient) RegisterSchema(ctx context.Context, definition string, resolver interfaces.Address, revocable bool) (_ interfaces.UID, err error) {
	if c.auth == nil {
		return interfaces.UID{}, ErrNoTransactOpts
	}
	defer func() { c.metrics.IncrementRegistryCalls("registerSchema", err) }()

	tx, err := c.schemas.Register(c.auth, definition, common.BytesToAddress(resolver.Bytes()), revocable)
	if err != nil {
		return interfaces.UID{}, &interfaces.RegistryError{Op: "registerSchema", Err: err}
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return interfaces.UID{}, &interfaces.RegistryError{Op: "registerSchema", Err: err}
	}

	for _, logEntry := range receipt.Logs {
		event, err := c.schemas.ParseRegistered(*logEntry)
		if err != nil {
			continue
		}
		uid := interfaces.UID(event.Uid)
		c.log.Info("Schema registered",
			slog.String("uid", uid.String()),
			slog.String("tx", tx.Hash().Hex()))
		return uid, nil
	}

	return interfaces.UID{}, &interfaces.RegistryError{Op: "registerSchema", Err: errors.New("transaction mined but no Registered event found")}
}

func (c *OnchainRegistryClient) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// RegistryFactory creates registry connectors for different contract
// deployments sharing one RPC connection.
type RegistryFactory struct {
	client  bind.ContractBackend
	backend bind.DeployBackend
	log     *slog.Logger
}

// NewRegistryFactory creates a factory for registry clients.
func NewRegistryFactory(client bind.ContractBackend, backend bind.DeployBackend, log *slog.Logger) *RegistryFactory {
	return &RegistryFactory{client: client, backend: backend, log: log}
}

// RegistryFor returns an AttestationRegistry for the given contract pair.
func (f *RegistryFactory) RegistryFor(attestationContract, schemaContract interfaces.Address) (interfaces.AttestationRegistry, error) {
	return NewOnchainRegistryClient(f.client, f.backend, attestationContract, schemaContract, f.log)
}
