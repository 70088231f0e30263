// Package schemacodec turns a mapping of named values into the ABI byte
// layout implied by a schema definition string.
//
// A schema definition is a comma-separated list of `type name` pairs using
// Solidity ABI type names, e.g.:
//
//	"string eventName,uint256 prize,address winner"
//
// Encode looks up each declared field by name in the input map, coerces the
// runtime value to the declared ABI type, and packs all fields with
// go-ethereum's ABI encoder. A missing field or an unrepresentable value
// yields *interfaces.EncodingError; encoding is deterministic given
// identical inputs.
//
// For callers holding raw values without declared types, InferType maps a
// runtime value onto a closed set of primitive kinds (address, bytes32,
// string, uint256, bool) and InferDefinition builds a whole definition from
// a value map. Inference is a heuristic convenience, not validation.
package schemacodec
