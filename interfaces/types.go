// Package interfaces defines the core types and capability interfaces for the
// attestation service. It provides the contract between components without
// implementation details.
package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UID is the 32-byte identifier naming an attestation or a schema,
// rendered as 0x + 64 hex characters.
type UID [32]byte

// ZeroUID is the all-zero identifier. The registry returns it for
// attestations and schemas that do not exist on chain.
var ZeroUID UID

// NewUIDFromBytes creates a UID from a 32-byte slice.
func NewUIDFromBytes(b []byte) (UID, error) {
	if len(b) != 32 {
		return UID{}, errors.New("invalid UID length: must be 32 bytes")
	}

	var uid UID
	copy(uid[:], b)
	return uid, nil
}

// NewUIDFromHex creates a UID from a hex string, with or without 0x prefix.
func NewUIDFromHex(s string) (UID, error) {
	clean := strings.TrimPrefix(s, "0x")
	if len(clean) != 64 {
		return UID{}, errors.New("invalid UID length: hex string must be 64 characters")
	}

	b, err := hex.DecodeString(clean)
	if err != nil {
		return UID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewUIDFromBytes(b)
}

// String returns the 0x-prefixed hex representation.
func (uid UID) String() string {
	return "0x" + hex.EncodeToString(uid[:])
}

// Bytes returns the raw 32-byte identifier.
func (uid UID) Bytes() []byte {
	return uid[:]
}

// IsZero reports whether the UID is the all-zero identifier.
func (uid UID) IsZero() bool {
	return uid == ZeroUID
}

// Equal compares two UIDs for equality.
func (uid UID) Equal(other UID) bool {
	return uid == other
}

// MarshalJSON renders the UID as a 0x-prefixed hex string.
func (uid UID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uid.String())
}

// UnmarshalJSON parses a 0x-prefixed hex string.
func (uid *UID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := NewUIDFromHex(s)
	if err != nil {
		return err
	}
	*uid = parsed
	return nil
}

// Address is a 20-byte account or contract address.
type Address [20]byte

// NewAddressFromBytes creates an address from a 20-byte slice.
func NewAddressFromBytes(b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, errors.New("invalid address length: must be 20 bytes")
	}

	var addr Address
	copy(addr[:], b)
	return addr, nil
}

// NewAddressFromHex creates an address from a hex string, with or without 0x prefix.
func NewAddressFromHex(s string) (Address, error) {
	clean := strings.TrimPrefix(s, "0x")
	if len(clean) != 40 {
		return Address{}, errors.New("invalid address length: hex string must be 40 characters")
	}

	b, err := hex.DecodeString(clean)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewAddressFromBytes(b)
}

// String returns the 0x-prefixed hex representation.
func (addr Address) String() string {
	return "0x" + hex.EncodeToString(addr[:])
}

// Bytes returns the raw 20-byte address.
func (addr Address) Bytes() []byte {
	return addr[:]
}

// IsZero reports whether the address is the zero address.
func (addr Address) IsZero() bool {
	return addr == Address{}
}

// Short returns the truncated display form (first 6 and last 4 hex characters),
// matching the redaction applied by the logging layer.
func (addr Address) Short() string {
	full := addr.String()
	return full[:6] + "..." + full[len(full)-4:]
}

// MarshalJSON renders the address as a 0x-prefixed hex string.
func (addr Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addr.String())
}

// UnmarshalJSON parses a 0x-prefixed hex string.
func (addr *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := NewAddressFromHex(s)
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}

// AttestationRecord is an immutable snapshot of an attestation as reported by
// the indexer. It is owned by whichever call produced it and never mutated
// after construction. Timestamps are unix seconds; zero means unset.
type AttestationRecord struct {
	UID             UID     `json:"uid"`
	SchemaUID       UID     `json:"schemaUid"`
	Schema          string  `json:"schema,omitempty"`
	Recipient       Address `json:"recipient"`
	Attester        Address `json:"attester"`
	Time            uint64  `json:"time"`
	TimeCreated     uint64  `json:"timeCreated"`
	RevocationTime  uint64  `json:"revocationTime"`
	ExpirationTime  uint64  `json:"expirationTime"`
	Revocable       bool    `json:"revocable"`
	Data            []byte  `json:"data"`
	DecodedDataJSON string  `json:"decodedDataJson,omitempty"`
}

// IsRevoked reports whether the indexer recorded a revocation for this attestation.
func (r *AttestationRecord) IsRevoked() bool {
	return r.RevocationTime != 0
}

// IsExpired reports whether the attestation carries an expiration time in the
// past relative to now. Attestations without an expiration never expire.
func (r *AttestationRecord) IsExpired(now time.Time) bool {
	return r.ExpirationTime != 0 && r.ExpirationTime < uint64(now.Unix())
}

// SchemaRecord describes a registered schema: its identifier, the
// human-readable field-type definition string (e.g. "string eventName,uint256
// prize"), the resolver contract, and whether attestations under it may be
// revoked.
type SchemaRecord struct {
	UID       UID     `json:"uid"`
	Schema    string  `json:"schema"`
	Resolver  Address `json:"resolver"`
	Revocable bool    `json:"revocable"`
	Creator   Address `json:"creator,omitempty"`
}

// AttestationRequest carries the parameters for issuing a new attestation.
type AttestationRequest struct {
	SchemaUID      UID
	Recipient      Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         UID
	Data           []byte
}

// OnchainAttestation is the authoritative attestation state read directly from
// the registry contract.
type OnchainAttestation struct {
	UID            UID
	SchemaUID      UID
	Time           uint64
	ExpirationTime uint64
	RevocationTime uint64
	RefUID         UID
	Recipient      Address
	Attester       Address
	Revocable      bool
	Data           []byte
}
