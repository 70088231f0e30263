// Package archive stores attestation payloads and verification reports as
// write-behind audit material, keyed by attestation UID.
//
// Backends are created from location URIs by Factory:
//
//	file:///var/lib/attestor/archive
//	ipfs://localhost:5001/?timeout=30s
//	s3://ACCESS:SECRET@bucket/prefix/?region=us-west-2
//	vault://TOKEN@vault.example.com:8200/secret/attestations?tls=true
//
// Multiple URIs can be aggregated into a MultiBackend that writes to every
// available backend and reads from the first one holding the entry.
//
// Archived entries never feed back into verification: every verify call
// re-derives its verdict from the indexer and the on-chain registry.
package archive
