// Package registry implements the on-chain side of the attestation service:
// authoritative reads of attestation and schema state, plus the transaction
// paths for issuing attestations, revoking them, and registering schemas.
//
// OnchainRegistryClient wraps the two contract bindings behind the
// interfaces.AttestationRegistry capability. Reads work with just an RPC
// connection; writes additionally require transaction options supplied via
// SetTransactOpts and block until the transaction is mined, recovering the
// resulting UID from the emitted event.
//
// The contract reports nonexistence by returning zero-valued structs; the
// client translates that into interfaces.ErrAttestationNotFound and
// interfaces.ErrSchemaNotFound so callers can distinguish "not there" from
// transport failures, which arrive as *interfaces.RegistryError.
//
// MockRegistry provides a testify-based mock for tests of components that
// consume the registry capability.
package registry
