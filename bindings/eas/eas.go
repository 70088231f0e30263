// Package eas contains lean contract bindings for the attestation service
// contract and its companion schema registry.
package eas

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Attestation mirrors the contract's attestation struct.
type Attestation struct {
	Uid            [32]byte
	Schema         [32]byte
	Time           uint64
	ExpirationTime uint64
	RevocationTime uint64
	RefUID         [32]byte
	Recipient      common.Address
	Attester       common.Address
	Revocable      bool
	Data           []byte
}

// AttestationRequestData mirrors the contract's per-attestation request payload.
type AttestationRequestData struct {
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         [32]byte
	Data           []byte
	Value          *big.Int
}

// AttestationRequest mirrors the contract's attest() argument.
type AttestationRequest struct {
	Schema [32]byte
	Data   AttestationRequestData
}

// RevocationRequestData mirrors the contract's per-revocation request payload.
type RevocationRequestData struct {
	Uid   [32]byte
	Value *big.Int
}

// RevocationRequest mirrors the contract's revoke() argument.
type RevocationRequest struct {
	Schema [32]byte
	Data   RevocationRequestData
}

const easABI = `[
  {"type":"function","name":"getAttestation","stateMutability":"view",
   "inputs":[{"name":"uid","type":"bytes32"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"uid","type":"bytes32"},
     {"name":"schema","type":"bytes32"},
     {"name":"time","type":"uint64"},
     {"name":"expirationTime","type":"uint64"},
     {"name":"revocationTime","type":"uint64"},
     {"name":"refUID","type":"bytes32"},
     {"name":"recipient","type":"address"},
     {"name":"attester","type":"address"},
     {"name":"revocable","type":"bool"},
     {"name":"data","type":"bytes"}]}]},
  {"type":"function","name":"isAttestationValid","stateMutability":"view",
   "inputs":[{"name":"uid","type":"bytes32"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"attest","stateMutability":"payable",
   "inputs":[{"name":"request","type":"tuple","components":[
     {"name":"schema","type":"bytes32"},
     {"name":"data","type":"tuple","components":[
       {"name":"recipient","type":"address"},
       {"name":"expirationTime","type":"uint64"},
       {"name":"revocable","type":"bool"},
       {"name":"refUID","type":"bytes32"},
       {"name":"data","type":"bytes"},
       {"name":"value","type":"uint256"}]}]}],
   "outputs":[{"name":"","type":"bytes32"}]},
  {"type":"function","name":"revoke","stateMutability":"payable",
   "inputs":[{"name":"request","type":"tuple","components":[
     {"name":"schema","type":"bytes32"},
     {"name":"data","type":"tuple","components":[
       {"name":"uid","type":"bytes32"},
       {"name":"value","type":"uint256"}]}]}],
   "outputs":[]},
  {"type":"event","name":"Attested","anonymous":false,"inputs":[
     {"name":"recipient","type":"address","indexed":true},
     {"name":"attester","type":"address","indexed":true},
     {"name":"uid","type":"bytes32","indexed":false},
     {"name":"schemaUID","type":"bytes32","indexed":true}]},
  {"type":"event","name":"Revoked","anonymous":false,"inputs":[
     {"name":"recipient","type":"address","indexed":true},
     {"name":"attester","type":"address","indexed":true},
     {"name":"uid","type":"bytes32","indexed":false},
     {"name":"schemaUID","type":"bytes32","indexed":true}]}
]`

// EASMetaData contains the parsed ABI used to bind the attestation contract.
var EASMetaData = &bind.MetaData{ABI: easABI}

// EAS is a Go binding around the deployed attestation contract.
type EAS struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewEAS binds the attestation contract at the given address.
func NewEAS(address common.Address, backend bind.ContractBackend) (*EAS, error) {
	parsed, err := EASMetaData.GetAbi()
	if err != nil {
		return nil, err
	}

	return &EAS{
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
		address:  address,
	}, nil
}

// Address returns the bound contract address.
func (c *EAS) Address() common.Address {
	return c.address
}

// GetAttestation is a free data retrieval call returning the full
// attestation struct. A nonexistent UID returns the zero-value struct.
func (c *EAS) GetAttestation(opts *bind.CallOpts, uid [32]byte) (Attestation, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getAttestation", uid)
	if err != nil {
		return Attestation{}, err
	}

	return *abi.ConvertType(out[0], new(Attestation)).(*Attestation), nil
}

// IsAttestationValid reports whether an attestation with the UID exists.
func (c *EAS) IsAttestationValid(opts *bind.CallOpts, uid [32]byte) (bool, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "isAttestationValid", uid)
	if err != nil {
		return false, err
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Attest is a paid mutator transaction submitting a new attestation.
func (c *EAS) Attest(opts *bind.TransactOpts, request AttestationRequest) (*types.Transaction, error) {
	return c.contract.Transact(opts, "attest", request)
}

// Revoke is a paid mutator transaction revoking an existing attestation.
func (c *EAS) Revoke(opts *bind.TransactOpts, request RevocationRequest) (*types.Transaction, error) {
	return c.contract.Transact(opts, "revoke", request)
}

// EASAttested represents an Attested event raised by the contract.
type EASAttested struct {
	Recipient common.Address
	Attester  common.Address
	Uid       [32]byte
	SchemaUID [32]byte
	Raw       types.Log
}

// ParseAttested decodes an Attested event from a transaction log.
func (c *EAS) ParseAttested(log types.Log) (*EASAttested, error) {
	event := new(EASAttested)
	if err := c.contract.UnpackLog(event, "Attested", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
