// Package indexer builds and executes queries against the off-chain GraphQL
// attestation indexer.
//
// A QueryPredicate is pure data: optional equality filters (schema,
// recipient, attester), an explicit UID membership list, and pagination.
// Building a predicate never touches the network; rendering it yields a
// GraphQL document whose shape must stay structurally compatible with the
// upstream indexer schema (attestations with id, uid, schema{id,schema},
// recipient, attester, time, timeCreated, revocationTime, expirationTime,
// revocable, data, decodedDataJson).
//
// Rendering rules:
//   - Absent filters are omitted entirely; no null or wildcard clause is
//     emitted.
//   - Interpolated values are quoted and escaped so embedded quotes cannot
//     alter the query structure.
//   - The page size defaults to 100 for attestations and 50 for schemas;
//     skip is omitted when the offset is zero.
//   - An explicitly empty UID list is rejected with InvalidQueryError
//     instead of silently matching everything.
//
// Client executes a rendered predicate through an IndexerTransport exactly
// once (no retries) and normalizes the response: transport failures and
// non-2xx statuses surface as TransportError, a GraphQL errors array as
// IndexerQueryError, and zero matches as an empty slice rather than an
// error.
package indexer
