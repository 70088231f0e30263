package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrAttestationNotFound is returned by the registry when the requested
	// attestation does not exist on chain.
	ErrAttestationNotFound = errors.New("attestation not found on chain")

	// ErrSchemaNotFound is returned by the registry when the requested schema
	// does not exist on chain.
	ErrSchemaNotFound = errors.New("schema not found on chain")
)

// TransportError indicates the indexer endpoint was unreachable or answered
// with a non-success status. The request never produced a usable body.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("indexer transport failed: %v", e.Err)
	}
	return fmt.Sprintf("indexer returned non-success status: %s", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IndexerQueryError indicates the indexer accepted the request at the
// protocol level but rejected the query itself: the response body carried an
// errors array. Distinct from TransportError.
type IndexerQueryError struct {
	Errors string
}

func (e *IndexerQueryError) Error() string {
	return fmt.Sprintf("indexer rejected query: %s", e.Errors)
}

// EncodingError indicates a schema/value mismatch during data encoding: a
// declared field is missing from the input, or a value cannot be represented
// in its declared type.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cannot encode field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("cannot encode data: %s", e.Reason)
}

// InvalidQueryError indicates a malformed query predicate, e.g. an empty UID
// list, that would otherwise silently match everything.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// RegistryError wraps a failure of the on-chain registry connector. The
// underlying error is surfaced unchanged.
type RegistryError struct {
	Op  string
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry %s failed: %v", e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }
