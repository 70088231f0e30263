package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/attestkit/attestation-service-backend/indexer"
	"github.com/attestkit/attestation-service-backend/interfaces"
)

// AttestationSource is the indexer-backed view of attestation state consumed
// by the engine.
type AttestationSource interface {
	Attestations(ctx context.Context, p indexer.QueryPredicate) ([]interfaces.AttestationRecord, error)
}

// Options selects which local checks the engine runs. The existence,
// cross-source, and schema checks always run.
type Options struct {
	CheckExpiration bool
	CheckRevocation bool
}

// AllChecks enables every optional check.
var AllChecks = Options{CheckExpiration: true, CheckRevocation: true}

// Engine reconciles the two independently-maintained views of attestation
// state - the fast but potentially stale indexer and the authoritative but
// slow on-chain registry - into a single trust determination.
type Engine struct {
	source   AttestationSource
	registry interfaces.AttestationRegistry
	log      *slog.Logger
	now      func() time.Time
}

// NewEngine creates a verification engine. A nil logger falls back to
// slog.Default.
func NewEngine(source AttestationSource, registry interfaces.AttestationRegistry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		source:   source,
		registry: registry,
		log:      log,
		now:      time.Now,
	}
}

// Verify runs the verification pipeline for one attestation UID and returns
// a fully populated Result. Each check can only ever downgrade validity.
//
// An indexer failure during the initial existence check propagates to the
// caller: it indicates a broken request, not a verification verdict. Once
// past that gate the call never fails; any unexpected condition yields a
// well-formed invalid Result instead.
func (e *Engine) Verify(ctx context.Context, uid interfaces.UID, opts Options) (*Result, error) {
	records, err := e.source.Attestations(ctx, indexer.ByUID(uid))
	if err != nil {
		return nil, err
	}

	result := &Result{UID: uid, Valid: true}

	if len(records) == 0 {
		result.Exists = false
		result.fail("Attestation does not exist")
		e.log.Debug("Attestation not found in indexer", slog.String("uid", uid.String()))
		return result, nil
	}

	record := records[0]
	result.Exists = true
	result.Attestation = &record

	e.runChecks(ctx, result, &record, opts)

	if len(result.Issues) == 0 {
		result.info("All checks passed")
	}

	e.log.Info("Verification completed",
		slog.String("uid", uid.String()),
		slog.Bool("valid", result.Valid),
		slog.Int("issues", len(result.Issues)))

	return result, nil
}

// runChecks executes the revocation, expiration, cross-source, and schema
// checks. A panic anywhere in the pipeline is converted into a terminal
// invalid result so the caller always receives a well-formed verdict.
func (e *Engine) runChecks(ctx context.Context, result *Result, record *interfaces.AttestationRecord, opts Options) {
	defer func() {
		if r := recover(); r != nil {
			result.Valid = false
			result.Revoked = false
			result.Expired = false
			result.Issues = []Issue{{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Verification failed: %v", r),
			}}
			e.log.Error("Verification pipeline failed unexpectedly",
				slog.String("uid", record.UID.String()),
				slog.Any("panic", r))
		}
	}()

	if opts.CheckRevocation && record.IsRevoked() {
		result.Revoked = true
		result.fail(fmt.Sprintf("Attestation was revoked at %s", instant(record.RevocationTime)))
	}

	if opts.CheckExpiration && record.IsExpired(e.now()) {
		result.Expired = true
		result.fail(fmt.Sprintf("Attestation expired at %s", instant(record.ExpirationTime)))
	}

	// The registry attestation and schema lookups read disjoint on-chain
	// state and have no ordering dependency, so they are issued
	// concurrently. Outcomes are aggregated in fixed order below. A panic
	// inside either lookup is captured on its goroutine and re-raised here
	// so the recover above sees the original panic value.
	var (
		onchain    *interfaces.OnchainAttestation
		onchainErr error
		schema     *interfaces.SchemaRecord
		schemaErr  error

		attestationPanic, schemaPanic any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer capturePanic(&attestationPanic)
		onchain, onchainErr = e.registry.GetAttestation(gctx, record.UID)
		return nil
	})
	g.Go(func() error {
		defer capturePanic(&schemaPanic)
		schema, schemaErr = e.registry.GetSchema(gctx, record.SchemaUID)
		return nil
	})
	_ = g.Wait()

	for _, p := range []any{attestationPanic, schemaPanic} {
		if p != nil {
			panic(p)
		}
	}

	e.checkCrossSource(result, record, onchain, onchainErr)
	e.checkSchema(result, schema, schemaErr)
}

// capturePanic stashes a recovered panic value for re-raising on the calling
// goroutine. Must be deferred directly.
func capturePanic(slot *any) {
	if r := recover(); r != nil {
		*slot = r
	}
}

// checkCrossSource corroborates the indexer record against the on-chain
// registry. The registry being unreachable is a soft failure (warning only);
// a factual mismatch between the two sources is fatal.
func (e *Engine) checkCrossSource(result *Result, record *interfaces.AttestationRecord, onchain *interfaces.OnchainAttestation, err error) {
	switch {
	case errors.Is(err, interfaces.ErrAttestationNotFound):
		// The authoritative source disagrees about existence.
		result.fail("Attestation data mismatch between on-chain and indexer")
	case err != nil:
		result.warn(fmt.Sprintf("Warning: could not verify against on-chain registry: %v", err))
		e.log.Warn("On-chain corroboration unavailable",
			slog.String("uid", record.UID.String()),
			"err", err)
	case onchain == nil || !onchain.UID.Equal(record.UID):
		result.fail("Attestation data mismatch between on-chain and indexer")
	}
}

// checkSchema verifies the referenced schema exists on chain and carries a
// non-empty definition. Unlike the cross-source check, a fetch failure here
// is fatal: an attestation under an unresolvable schema cannot be trusted.
func (e *Engine) checkSchema(result *Result, schema *interfaces.SchemaRecord, err error) {
	switch {
	case err != nil:
		result.fail(fmt.Sprintf("Referenced schema could not be resolved: %v", err))
	case schema == nil || schema.Schema == "":
		result.fail("Referenced schema has an empty definition")
	}
}

// instant renders a unix-seconds timestamp as an ISO-8601 instant.
func instant(unixSeconds uint64) string {
	return time.Unix(int64(unixSeconds), 0).UTC().Format(time.RFC3339)
}
