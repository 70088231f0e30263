// Package httpserver exposes the attestation service over HTTP.
//
// API endpoints:
//
//	GET  /api/attestations                 - list attestations (schema,
//	                                         recipient, attester, limit,
//	                                         offset query parameters)
//	GET  /api/attestations/{uid}           - fetch one attestation
//	POST /api/attestations/{uid}/verify    - run the verification pipeline
//	GET  /api/schemas/{uid}                - fetch a schema from the registry
//
// Operational endpoints: /livez, /readyz, /drain, /undrain, and optionally
// pprof under /debug. Prometheus metrics are served on a separate listener.
//
// Indexer failures map to 502 with an opaque error id (the detail goes to
// the log), malformed input to 400, and missing records to 404.
package httpserver
