// Package interfaces defines the core interfaces and types shared by the
// attestation service components.
//
// The package holds the value types every component speaks (UID, Address,
// AttestationRecord, SchemaRecord), the error taxonomy, and the capability
// interfaces through which the core reaches its external collaborators:
//
// AttestationRegistry is the ledger connector giving authoritative but slow
// access to the on-chain attestation and schema registries:
//
//	type AttestationRegistry interface {
//	    GetAttestation(ctx context.Context, uid UID) (*OnchainAttestation, error)
//	    GetSchema(ctx context.Context, uid UID) (*SchemaRecord, error)
//	    Attest(ctx context.Context, req AttestationRequest) (UID, error)
//	    Revoke(ctx context.Context, schemaUID, uid UID) error
//	    RegisterSchema(ctx context.Context, definition string, resolver Address, revocable bool) (UID, error)
//	}
//
// IndexerTransport is the single request/response exchange with the fast but
// potentially stale GraphQL indexer.
//
// ArchiveBackend is the optional audit archive for verification reports and
// raw payloads.
//
// Error types follow a fixed taxonomy: TransportError (indexer unreachable or
// non-2xx), IndexerQueryError (query rejected), EncodingError (schema/value
// mismatch), InvalidQueryError (malformed predicate), RegistryError (ledger
// connector failure, underlying error surfaced unchanged).
package interfaces
