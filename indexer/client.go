package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/attestkit/attestation-service-backend/interfaces"
	"github.com/attestkit/attestation-service-backend/metrics"
)

// Client executes built query predicates against the indexer and normalizes
// the response. One request per call; pagination beyond the predicate's
// limit/offset is the caller's concern.
type Client struct {
	transport interfaces.IndexerTransport
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// NewClient creates an indexer client on top of a transport.
func NewClient(transport interfaces.IndexerTransport, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{transport: transport, log: log}
}

// SetMetrics attaches service metrics. Queries are unobserved when unset.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// envelope is the GraphQL response wrapper. A populated errors array means
// the query was rejected or partially failed even though the request
// succeeded at the protocol level.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type wireSchemaRef struct {
	ID     string `json:"id"`
	Schema string `json:"schema"`
}

type wireAttestation struct {
	ID              string        `json:"id"`
	UID             string        `json:"uid"`
	Schema          wireSchemaRef `json:"schema"`
	Recipient       string        `json:"recipient"`
	Attester        string        `json:"attester"`
	Time            json.Number   `json:"time"`
	TimeCreated     json.Number   `json:"timeCreated"`
	RevocationTime  json.Number   `json:"revocationTime"`
	ExpirationTime  json.Number   `json:"expirationTime"`
	Revocable       bool          `json:"revocable"`
	Data            string        `json:"data"`
	DecodedDataJSON string        `json:"decodedDataJson"`
}

type wireSchema struct {
	ID        string `json:"id"`
	Schema    string `json:"schema"`
	Resolver  string `json:"resolver"`
	Revocable bool   `json:"revocable"`
	Creator   string `json:"creator"`
}

// Attestations executes the predicate as an attestation query and returns
// normalized records. Zero matches yields an empty slice, not an error.
func (c *Client) Attestations(ctx context.Context, p QueryPredicate) ([]interfaces.AttestationRecord, error) {
	query, err := p.BuildAttestationQuery()
	if err != nil {
		return nil, err
	}

	data, err := c.execute(ctx, query, "attestations")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Attestations []wireAttestation `json:"attestations"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("could not parse attestations response: %w", err)
	}

	records := make([]interfaces.AttestationRecord, 0, len(payload.Attestations))
	for _, w := range payload.Attestations {
		record, err := w.normalize()
		if err != nil {
			return nil, fmt.Errorf("malformed attestation %q: %w", w.ID, err)
		}
		records = append(records, record)
	}

	c.log.Debug("Indexer attestation query completed", slog.Int("matches", len(records)))
	return records, nil
}

// Schemas executes the predicate as a schema query and returns normalized
// schema records.
func (c *Client) Schemas(ctx context.Context, p QueryPredicate) ([]interfaces.SchemaRecord, error) {
	query, err := p.BuildSchemaQuery()
	if err != nil {
		return nil, err
	}

	data, err := c.execute(ctx, query, "schemata")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Schemata []wireSchema `json:"schemata"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("could not parse schemata response: %w", err)
	}

	records := make([]interfaces.SchemaRecord, 0, len(payload.Schemata))
	for _, w := range payload.Schemata {
		record, err := w.normalize()
		if err != nil {
			return nil, fmt.Errorf("malformed schema %q: %w", w.ID, err)
		}
		records = append(records, record)
	}

	c.log.Debug("Indexer schema query completed", slog.Int("matches", len(records)))
	return records, nil
}

// execute runs one query against the named collection and unwraps the
// GraphQL envelope.
func (c *Client) execute(ctx context.Context, query, collection string) (json.RawMessage, error) {
	start := time.Now()

	body, err := c.transport.Do(ctx, query)
	if err != nil {
		c.metrics.IncrementIndexerErrors("transport")
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.metrics.IncrementIndexerErrors("decode")
		return nil, fmt.Errorf("could not parse indexer response: %w", err)
	}

	if len(env.Errors) > 0 && string(env.Errors) != "null" {
		c.metrics.IncrementIndexerErrors("query")
		return nil, &interfaces.IndexerQueryError{Errors: string(env.Errors)}
	}

	duration := time.Since(start)
	c.metrics.ObserveIndexerQuery(collection, duration.Seconds())
	c.log.Debug("Indexer query executed", slog.Duration("duration", duration))
	return env.Data, nil
}

func (w wireAttestation) normalize() (interfaces.AttestationRecord, error) {
	id := w.UID
	if id == "" {
		id = w.ID
	}
	uid, err := interfaces.NewUIDFromHex(id)
	if err != nil {
		return interfaces.AttestationRecord{}, fmt.Errorf("uid: %w", err)
	}

	schemaUID, err := interfaces.NewUIDFromHex(w.Schema.ID)
	if err != nil {
		return interfaces.AttestationRecord{}, fmt.Errorf("schema id: %w", err)
	}

	recipient, err := interfaces.NewAddressFromHex(w.Recipient)
	if err != nil {
		return interfaces.AttestationRecord{}, fmt.Errorf("recipient: %w", err)
	}

	attester, err := interfaces.NewAddressFromHex(w.Attester)
	if err != nil {
		return interfaces.AttestationRecord{}, fmt.Errorf("attester: %w", err)
	}

	return interfaces.AttestationRecord{
		UID:             uid,
		SchemaUID:       schemaUID,
		Schema:          w.Schema.Schema,
		Recipient:       recipient,
		Attester:        attester,
		Time:            asUint(w.Time),
		TimeCreated:     asUint(w.TimeCreated),
		RevocationTime:  asUint(w.RevocationTime),
		ExpirationTime:  asUint(w.ExpirationTime),
		Revocable:       w.Revocable,
		Data:            common.FromHex(w.Data),
		DecodedDataJSON: w.DecodedDataJSON,
	}, nil
}

func (w wireSchema) normalize() (interfaces.SchemaRecord, error) {
	uid, err := interfaces.NewUIDFromHex(w.ID)
	if err != nil {
		return interfaces.SchemaRecord{}, fmt.Errorf("id: %w", err)
	}

	record := interfaces.SchemaRecord{
		UID:       uid,
		Schema:    w.Schema,
		Revocable: w.Revocable,
	}

	if w.Resolver != "" {
		resolver, err := interfaces.NewAddressFromHex(w.Resolver)
		if err != nil {
			return interfaces.SchemaRecord{}, fmt.Errorf("resolver: %w", err)
		}
		record.Resolver = resolver
	}
	if w.Creator != "" {
		creator, err := interfaces.NewAddressFromHex(w.Creator)
		if err != nil {
			return interfaces.SchemaRecord{}, fmt.Errorf("creator: %w", err)
		}
		record.Creator = creator
	}

	return record, nil
}

// asUint parses an indexer timestamp. The indexer encodes unix seconds as
// JSON numbers; a missing field parses as zero.
func asUint(n json.Number) uint64 {
	if n == "" {
		return 0
	}
	v, err := n.Int64()
	if err != nil || v < 0 {
		return 0
	}
	return uint64(v)
}
