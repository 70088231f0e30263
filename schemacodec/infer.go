package schemacodec

import (
	"math/big"
	"regexp"
	"sort"
	"strings"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// InferType maps a runtime value to one of a closed set of primitive schema
// kinds: address, bytes32, string, uint256, bool.
//
// This is a best-effort heuristic for callers supplying raw values without
// explicit typing, not a validator. Ambiguous values always take the generic
// branch: a numeric string infers as string, any number as uint256. Callers
// needing bespoke field types must supply them explicitly.
func InferType(value any) string {
	switch v := value.(type) {
	case bool:
		return "bool"
	case string:
		switch {
		case addressPattern.MatchString(v):
			return "address"
		case strings.HasPrefix(v, "0x"):
			return "bytes32"
		default:
			return "string"
		}
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, *big.Int:
		return "uint256"
	default:
		return "string"
	}
}

// InferDefinition builds a schema definition string from raw values, with
// field types inferred per InferType. Field order is alphabetical by name so
// the result is deterministic.
func InferDefinition(values map[string]any) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, InferType(values[name])+" "+name)
	}
	return strings.Join(pairs, ",")
}
