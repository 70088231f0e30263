// Package schemacodec encodes loosely-typed field values into the binary
// layout declared by a schema definition string.
package schemacodec

import (
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// Field is a single `type name` pair from a schema definition.
type Field struct {
	Type string
	Name string
}

// ParseDefinition splits a schema definition string of comma-separated
// `type name` pairs, e.g. "string eventName,uint256 prize".
func ParseDefinition(definition string) ([]Field, error) {
	if strings.TrimSpace(definition) == "" {
		return nil, &interfaces.EncodingError{Reason: "empty schema definition"}
	}

	parts := strings.Split(definition, ",")
	fields := make([]Field, 0, len(parts))
	for _, part := range parts {
		tokens := strings.Fields(strings.TrimSpace(part))
		if len(tokens) != 2 {
			return nil, &interfaces.EncodingError{Reason: fmt.Sprintf("malformed schema field %q, expected \"type name\"", part)}
		}
		fields = append(fields, Field{Type: tokens[0], Name: tokens[1]})
	}
	return fields, nil
}

// Codec encodes named values according to a schema definition. Encoding is
// deterministic for identical inputs and has no side effects beyond logging.
type Codec struct {
	log *slog.Logger
}

// New creates a codec. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Codec {
	if log == nil {
		log = slog.Default()
	}
	return &Codec{log: log}
}

// Encode produces the ABI encoding of values laid out per the schema
// definition. It fails with *interfaces.EncodingError when a declared field
// is missing from the value map or a value cannot be represented in its
// declared type.
func (c *Codec) Encode(definition string, values map[string]any) ([]byte, error) {
	fields, err := ParseDefinition(definition)
	if err != nil {
		return nil, err
	}

	args := make(abi.Arguments, 0, len(fields))
	packed := make([]any, 0, len(fields))

	for _, field := range fields {
		value, ok := values[field.Name]
		if !ok {
			return nil, &interfaces.EncodingError{Field: field.Name, Reason: "missing from input values"}
		}

		abiType, err := abi.NewType(field.Type, "", nil)
		if err != nil {
			return nil, &interfaces.EncodingError{Field: field.Name, Reason: fmt.Sprintf("unsupported type %q: %v", field.Type, err)}
		}

		converted, err := convert(value, abiType)
		if err != nil {
			return nil, &interfaces.EncodingError{Field: field.Name, Reason: err.Error()}
		}

		args = append(args, abi.Argument{Name: field.Name, Type: abiType})
		packed = append(packed, converted)
	}

	encoded, err := args.Pack(packed...)
	if err != nil {
		return nil, &interfaces.EncodingError{Reason: fmt.Sprintf("abi packing failed: %v", err)}
	}

	c.log.Debug("Encoded schema data",
		slog.Int("fields", len(fields)),
		slog.Int("size", len(encoded)))

	return encoded, nil
}

// convert coerces a runtime value into the Go representation the ABI packer
// expects for the declared type.
func convert(value any, t abi.Type) (any, error) {
	switch t.T {
	case abi.AddressTy:
		return convertAddress(value)
	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return b, nil
	case abi.StringTy:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	case abi.UintTy, abi.IntTy:
		return convertInteger(value, t)
	case abi.FixedBytesTy:
		return convertFixedBytes(value, t.Size)
	case abi.BytesTy:
		return convertBytes(value)
	case abi.SliceTy:
		return convertSlice(value, t)
	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

func convertAddress(value any) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case interfaces.Address:
		return common.BytesToAddress(v.Bytes()), nil
	case string:
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("invalid address %q", v)
		}
		return common.HexToAddress(v), nil
	default:
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
}

func convertInteger(value any, t abi.Type) (any, error) {
	n := new(big.Int)
	switch v := value.(type) {
	case *big.Int:
		n.Set(v)
	case int:
		n.SetInt64(int64(v))
	case int64:
		n.SetInt64(v)
	case uint64:
		n.SetUint64(v)
	case float64:
		// JSON numbers arrive as float64; reject anything non-integral.
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("non-integral number %v for %s", v, t.String())
		}
		n.SetInt64(int64(v))
	case string:
		if _, ok := n.SetString(strings.TrimPrefix(v, "0x"), numericBase(v)); !ok {
			return nil, fmt.Errorf("cannot parse %q as %s", v, t.String())
		}
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}

	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for %s", n, t.String())
	}
	if n.BitLen() > t.Size {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}

	// The packer expects the native word type for sizes up to 64 bits.
	switch {
	case t.Size > 64:
		return n, nil
	case t.T == abi.UintTy:
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		default:
			return n.Uint64(), nil
		}
	default:
		switch t.Size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		default:
			return n.Int64(), nil
		}
	}
}

func numericBase(s string) int {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return 16
	}
	return 10
}

func convertFixedBytes(value any, size int) (any, error) {
	raw, err := convertBytes(value)
	if err != nil {
		return nil, err
	}
	if len(raw) > size {
		return nil, fmt.Errorf("value of %d bytes overflows bytes%d", len(raw), size)
	}

	arr := reflect.New(reflect.ArrayOf(size, reflect.TypeOf(byte(0)))).Elem()
	reflect.Copy(arr, reflect.ValueOf(raw))
	return arr.Interface(), nil
}

func convertBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		if !strings.HasPrefix(v, "0x") {
			return nil, fmt.Errorf("expected 0x-prefixed hex string, got %q", v)
		}
		return common.FromHex(v), nil
	default:
		return nil, fmt.Errorf("expected bytes, got %T", value)
	}
}

func convertSlice(value any, t abi.Type) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %T", value)
	}

	sample, err := convert(zeroElement(*t.Elem), *t.Elem)
	if err != nil {
		return nil, err
	}

	out := reflect.MakeSlice(reflect.SliceOf(reflect.TypeOf(sample)), rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		converted, err := convert(rv.Index(i).Interface(), *t.Elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(converted))
	}
	return out.Interface(), nil
}

// zeroElement returns a representative zero value accepted by convert for the
// element type, used to discover the slice's concrete Go element type.
func zeroElement(t abi.Type) any {
	switch t.T {
	case abi.AddressTy:
		return common.Address{}
	case abi.BoolTy:
		return false
	case abi.StringTy:
		return ""
	case abi.UintTy, abi.IntTy:
		return big.NewInt(0)
	case abi.FixedBytesTy, abi.BytesTy:
		return []byte{}
	default:
		return nil
	}
}
