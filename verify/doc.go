// Package verify merges the indexer's and the on-chain registry's views of
// an attestation into a single trust determination.
//
// The engine runs a linear pipeline with early exit on non-existence:
//
//  1. Existence - query the indexer by UID. Zero matches is terminal: the
//     result reports exists=false, valid=false and no registry calls are
//     made.
//  2. Revocation (optional) - a nonzero revocation timestamp invalidates.
//  3. Expiration (optional) - a nonzero expiration timestamp strictly in
//     the past invalidates.
//  4. Cross-source consistency - the on-chain registry is consulted
//     independently. An unreachable registry only adds a warning (the
//     on-chain source is best-effort corroboration here); a factual
//     mismatch between the sources is fatal.
//  5. Schema existence - the referenced schema must resolve on chain with a
//     non-empty definition.
//
// Checks only ever downgrade validity; nothing restores it. A result whose
// checks all pass carries the single informational issue "All checks
// passed", so the issues list is never empty. Every issue carries an
// explicit severity; callers render issues without inspecting message text.
//
// The registry lookups in steps 4 and 5 read disjoint state and run
// concurrently; their outcomes are folded into the result in fixed order so
// identical inputs always produce structurally identical results.
package verify
