package indexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// Default page sizes applied when a predicate does not specify a limit.
const (
	DefaultAttestationLimit = 100
	DefaultSchemaLimit      = 50
)

// QueryPredicate is a pure value object describing an indexer query: a set of
// optional equality filters plus pagination, or an explicit UID-list filter.
// Constructing a predicate never touches the network.
type QueryPredicate struct {
	// Equality filters; nil means the filter is omitted from the query
	// entirely (no null/wildcard clause is emitted).
	SchemaUID *interfaces.UID
	Recipient *interfaces.Address
	Attester  *interfaces.Address

	// UIDs, when non-empty, selects records by explicit membership instead
	// of the equality filters above.
	UIDs []interfaces.UID

	// Limit defaults per query kind (DefaultAttestationLimit /
	// DefaultSchemaLimit) when zero.
	Limit int

	// Offset is omitted from the query when zero.
	Offset int
}

// ByUID returns a predicate selecting a single record.
func ByUID(uid interfaces.UID) QueryPredicate {
	return QueryPredicate{UIDs: []interfaces.UID{uid}, Limit: 1}
}

// attestationFields is the selection set the upstream indexer schema exposes
// for attestations. It must stay structurally compatible with that schema.
const attestationFields = `id
    uid
    schema {
      id
      schema
    }
    recipient
    attester
    time
    timeCreated
    revocationTime
    expirationTime
    revocable
    data
    decodedDataJson`

const schemaFields = `id
    schema
    resolver
    revocable
    creator`

// BuildAttestationQuery renders the predicate as a GraphQL document querying
// attestations. Every interpolated value is escaped; an empty UID list is
// rejected with *interfaces.InvalidQueryError rather than silently matching
// everything.
func (p QueryPredicate) BuildAttestationQuery() (string, error) {
	where, err := p.renderWhere("uid_in", func() []string {
		var filters []string
		if p.SchemaUID != nil {
			filters = append(filters, "schemaId: "+quote(p.SchemaUID.String()))
		}
		if p.Recipient != nil {
			filters = append(filters, "recipient: "+quote(p.Recipient.String()))
		}
		if p.Attester != nil {
			filters = append(filters, "attester: "+quote(p.Attester.String()))
		}
		return filters
	})
	if err != nil {
		return "", err
	}

	return renderQuery("attestations", where, p.pagination(DefaultAttestationLimit), attestationFields), nil
}

// BuildSchemaQuery renders the predicate as a GraphQL document querying
// schema records. Only the UID-list and creator-style filters apply; the
// recipient/attester filters have no meaning for schemas and must be unset.
func (p QueryPredicate) BuildSchemaQuery() (string, error) {
	if p.Recipient != nil || p.Attester != nil {
		return "", &interfaces.InvalidQueryError{Reason: "recipient/attester filters do not apply to schemas"}
	}

	where, err := p.renderWhere("id_in", func() []string {
		var filters []string
		if p.SchemaUID != nil {
			filters = append(filters, "id: "+quote(p.SchemaUID.String()))
		}
		return filters
	})
	if err != nil {
		return "", err
	}

	return renderQuery("schemata", where, p.pagination(DefaultSchemaLimit), schemaFields), nil
}

// renderWhere builds the where clause, preferring the UID membership filter
// when UIDs are set. A UIDs field explicitly set to an empty (non-nil) slice
// is an error: the upstream behavior was unspecified and silently matched
// everything.
func (p QueryPredicate) renderWhere(membershipField string, equalityFilters func() []string) (string, error) {
	if p.UIDs != nil {
		if len(p.UIDs) == 0 {
			return "", &interfaces.InvalidQueryError{Reason: "empty UID list"}
		}
		quoted := make([]string, len(p.UIDs))
		for i, uid := range p.UIDs {
			quoted[i] = quote(uid.String())
		}
		return fmt.Sprintf("%s: [%s]", membershipField, strings.Join(quoted, ", ")), nil
	}

	filters := equalityFilters()
	if len(filters) == 0 {
		return "", nil
	}
	return strings.Join(filters, ", "), nil
}

// pagination renders the first/skip arguments. skip is omitted when zero.
func (p QueryPredicate) pagination(defaultLimit int) string {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	args := fmt.Sprintf("first: %d", limit)
	if p.Offset > 0 {
		args += fmt.Sprintf(", skip: %d", p.Offset)
	}
	return args
}

func renderQuery(collection, where, pagination, fields string) string {
	args := pagination
	if where != "" {
		args = fmt.Sprintf("where: { %s }, %s", where, pagination)
	}

	return fmt.Sprintf(`query {
  %s(%s) {
    %s
  }
}`, collection, args, fields)
}

// quote renders a filter value as a quoted GraphQL string with embedded
// quotes and backslashes escaped. Values reaching this point are usually
// pre-validated identifiers, but escaping is applied unconditionally so an
// untrusted value cannot alter the query structure.
func quote(s string) string {
	return strconv.Quote(s)
}
