package interfaces

import "context"

// AttestationRegistry is the ledger connector: read and write access to the
// on-chain attestation registry and its companion schema registry. Connection
// management, transaction signing, and gas handling are entirely the
// implementation's responsibility.
//
// Read methods return ErrAttestationNotFound / ErrSchemaNotFound for missing
// entries; all other failures are wrapped in *RegistryError.
type AttestationRegistry interface {
	// GetAttestation reads the authoritative attestation state by UID.
	GetAttestation(ctx context.Context, uid UID) (*OnchainAttestation, error)

	// GetSchema reads a schema record by its UID.
	GetSchema(ctx context.Context, uid UID) (*SchemaRecord, error)

	// Attest submits a new attestation and returns its identifier once the
	// transaction is mined.
	Attest(ctx context.Context, req AttestationRequest) (UID, error)

	// Revoke revokes an attestation issued under the given schema.
	Revoke(ctx context.Context, schemaUID, uid UID) error

	// RegisterSchema registers a new schema definition and returns its UID.
	RegisterSchema(ctx context.Context, definition string, resolver Address, revocable bool) (UID, error)
}

// RegistryFactory creates registry connectors for different contract deployments.
type RegistryFactory interface {
	RegistryFor(attestationContract, schemaContract Address) (AttestationRegistry, error)
}
