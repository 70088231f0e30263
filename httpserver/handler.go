package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/attestkit/attestation-service-backend/indexer"
	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/metrics"
	"github.com/attestkit/attestation-service-backend/verify"
)

// maxListLimit caps the page size accepted through the HTTP API.
const maxListLimit = 1000

// AttestationQuerier is the indexer-backed read surface used by the handler.
type AttestationQuerier interface {
	Attestations(ctx context.Context, p indexer.QueryPredicate) ([]interfaces.AttestationRecord, error)
	Schemas(ctx context.Context, p indexer.QueryPredicate) ([]interfaces.SchemaRecord, error)
}

// Verifier runs the verification pipeline for one attestation UID.
type Verifier interface {
	Verify(ctx context.Context, uid interfaces.UID, opts verify.Options) (*verify.Result, error)
}

// Handler processes HTTP requests for the attestation service. It queries
// the indexer for listings, the on-chain registry for schema lookups, and
// runs the verification engine on demand. Verification reports are archived
// write-behind when an archive backend is configured.
type Handler struct {
	querier  AttestationQuerier
	verifier Verifier
	registry interfaces.AttestationRegistry
	archive  interfaces.ArchiveBackend
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler. The archive backend and
// metrics may be nil, disabling report archival and instrumentation.
func NewHandler(querier AttestationQuerier, verifier Verifier, registry interfaces.AttestationRegistry, archive interfaces.ArchiveBackend, m *metrics.Metrics, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		querier:  querier,
		verifier: verifier,
		registry: registry,
		archive:  archive,
		metrics:  m,
		log:      log,
	}
}

// HandleListAttestations serves GET /api/attestations.
//
// Query parameters: schema, recipient, attester (hex-encoded filters),
// limit, offset (pagination).
func (h *Handler) HandleListAttestations(w http.ResponseWriter, r *http.Request) {
	predicate, err := predicateFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.querier.Attestations(r.Context(), predicate)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, records)
}

// HandleGetAttestation serves GET /api/attestations/{uid}.
func (h *Handler) HandleGetAttestation(w http.ResponseWriter, r *http.Request) {
	uid, err := interfaces.NewUIDFromHex(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "Invalid attestation UID", http.StatusBadRequest)
		return
	}

	records, err := h.querier.Attestations(r.Context(), indexer.ByUID(uid))
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	if len(records) == 0 {
		http.Error(w, "Attestation not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, records[0])
}

// HandleGetSchema serves GET /api/schemas/{uid} from the on-chain registry.
func (h *Handler) HandleGetSchema(w http.ResponseWriter, r *http.Request) {
	uid, err := interfaces.NewUIDFromHex(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "Invalid schema UID", http.StatusBadRequest)
		return
	}

	schema, err := h.registry.GetSchema(r.Context(), uid)
	if errors.Is(err, interfaces.ErrSchemaNotFound) {
		http.Error(w, "Schema not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Schema lookup failed", slog.String("uid", uid.String()), "err", err)
		http.Error(w, "Registry unavailable", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, schema)
}

// HandleVerify serves POST /api/attestations/{uid}/verify. The optional
// query parameters check_expiration and check_revocation (default true)
// select which local checks run.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	uid, err := interfaces.NewUIDFromHex(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "Invalid attestation UID", http.StatusBadRequest)
		return
	}

	opts := verify.AllChecks
	if r.URL.Query().Get("check_expiration") == "false" {
		opts.CheckExpiration = false
	}
	if r.URL.Query().Get("check_revocation") == "false" {
		opts.CheckRevocation = false
	}

	start := time.Now()
	result, err := h.verifier.Verify(r.Context(), uid, opts)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveVerification(result.Valid, time.Since(start).Seconds())
	}

	h.archiveReport(r.Context(), result)
	h.writeJSON(w, http.StatusOK, result)
}

// archiveReport stores the verification report as audit material. Failures
// are logged and counted but never surface to the caller.
func (h *Handler) archiveReport(ctx context.Context, result *verify.Result) {
	if h.archive == nil {
		return
	}

	report, err := json.Marshal(result)
	if err != nil {
		h.log.Error("Failed to encode verification report", "err", err)
		return
	}

	err = h.archive.Store(ctx, result.UID, interfaces.ReportEntry, report)
	if h.metrics != nil {
		h.metrics.IncrementArchiveWrites(err)
	}
	if err != nil {
		h.log.Warn("Failed to archive verification report",
			slog.String("uid", result.UID.String()),
			"err", err)
	}
}

// writeQueryError maps indexer and predicate errors to HTTP status codes.
func (h *Handler) writeQueryError(w http.ResponseWriter, err error) {
	var invalidErr *interfaces.InvalidQueryError
	if errors.As(err, &invalidErr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	errID := uuid.New().String()
	h.log.Error("Indexer request failed", slog.String("errorId", errID), "err", err)

	var transportErr *interfaces.TransportError
	var queryErr *interfaces.IndexerQueryError
	if errors.As(err, &transportErr) || errors.As(err, &queryErr) {
		http.Error(w, "Indexer unavailable, error id: "+errID, http.StatusBadGateway)
		return
	}

	http.Error(w, "Internal server error, error id: "+errID, http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// predicateFromQuery builds a query predicate from list query parameters.
func predicateFromQuery(r *http.Request) (indexer.QueryPredicate, error) {
	var predicate indexer.QueryPredicate
	query := r.URL.Query()

	if s := query.Get("schema"); s != "" {
		uid, err := interfaces.NewUIDFromHex(s)
		if err != nil {
			return predicate, errors.New("invalid schema filter")
		}
		predicate.SchemaUID = &uid
	}

	if s := query.Get("recipient"); s != "" {
		addr, err := interfaces.NewAddressFromHex(s)
		if err != nil {
			return predicate, errors.New("invalid recipient filter")
		}
		predicate.Recipient = &addr
	}

	if s := query.Get("attester"); s != "" {
		addr, err := interfaces.NewAddressFromHex(s)
		if err != nil {
			return predicate, errors.New("invalid attester filter")
		}
		predicate.Attester = &addr
	}

	if s := query.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 || limit > maxListLimit {
			return predicate, errors.New("invalid limit")
		}
		predicate.Limit = limit
	}

	if s := query.Get("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			return predicate, errors.New("invalid offset")
		}
		predicate.Offset = offset
	}

	return predicate, nil
}
