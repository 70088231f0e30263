package eas

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SchemaRecord mirrors the schema registry's record struct.
type SchemaRecord struct {
	Uid       [32]byte
	Resolver  common.Address
	Revocable bool
	Schema    string
}

const schemaRegistryABI = `[
  {"type":"function","name":"register","stateMutability":"nonpayable",
   "inputs":[
     {"name":"schema","type":"string"},
     {"name":"resolver","type":"address"},
     {"name":"revocable","type":"bool"}],
   "outputs":[{"name":"","type":"bytes32"}]},
  {"type":"function","name":"getSchema","stateMutability":"view",
   "inputs":[{"name":"uid","type":"bytes32"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"uid","type":"bytes32"},
     {"name":"resolver","type":"address"},
     {"name":"revocable","type":"bool"},
     {"name":"schema","type":"string"}]}]},
  {"type":"event","name":"Registered","anonymous":false,"inputs":[
     {"name":"uid","type":"bytes32","indexed":true},
     {"name":"registerer","type":"address","indexed":true}]}
]`

// SchemaRegistryMetaData contains the parsed ABI for the schema registry.
var SchemaRegistryMetaData = &bind.MetaData{ABI: schemaRegistryABI}

// SchemaRegistry is a Go binding around the deployed schema registry contract.
type SchemaRegistry struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewSchemaRegistry binds the schema registry contract at the given address.
func NewSchemaRegistry(address common.Address, backend bind.ContractBackend) (*SchemaRegistry, error) {
	parsed, err := SchemaRegistryMetaData.GetAbi()
	if err != nil {
		return nil, err
	}

	return &SchemaRegistry{
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
		address:  address,
	}, nil
}

// Address returns the bound contract address.
func (c *SchemaRegistry) Address() common.Address {
	return c.address
}

// GetSchema is a free data retrieval call returning the schema record. A
// nonexistent UID returns the zero-value record.
func (c *SchemaRegistry) GetSchema(opts *bind.CallOpts, uid [32]byte) (SchemaRecord, error) {
	var out []interface{}
	err := c.contract.Call(opts, &out, "getSchema", uid)
	if err != nil {
		return SchemaRecord{}, err
	}

	return *abi.ConvertType(out[0], new(SchemaRecord)).(*SchemaRecord), nil
}

// Register is a mutator transaction registering a new schema definition.
func (c *SchemaRegistry) Register(opts *bind.TransactOpts, schema string, resolver common.Address, revocable bool) (*types.Transaction, error) {
	return c.contract.Transact(opts, "register", schema, resolver, revocable)
}

// SchemaRegistryRegistered represents a Registered event raised by the contract.
type SchemaRegistryRegistered struct {
	Uid        [32]byte
	Registerer common.Address
	Raw        types.Log
}

// ParseRegistered decodes a Registered event from a transaction log.
func (c *SchemaRegistry) ParseRegistered(log types.Log) (*SchemaRegistryRegistered, error) {
	event := new(SchemaRegistryRegistered)
	if err := c.contract.UnpackLog(event, "Registered", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
