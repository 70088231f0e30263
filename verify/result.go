package verify

import (
	"encoding/json"
	"fmt"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// Severity classifies a verification issue. Every issue carries its severity
// explicitly at creation time; display layers must not infer it from message
// text.
type Severity int

const (
	// SeverityInfo marks informational entries such as "All checks passed".
	SeverityInfo Severity = iota
	// SeverityWarning marks non-fatal findings that do not affect validity,
	// e.g. the on-chain registry being temporarily unreachable.
	SeverityWarning
	// SeverityError marks findings that make the attestation invalid.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", name)
	}
	return nil
}

// Issue is a single human-readable verification finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Result is the merged trust determination for one attestation. It is
// created fresh per verification call and never persisted or reused.
//
// Invariant: Valid is true if and only if Issues contains no
// SeverityError entry. Exists=false forces Valid=false.
type Result struct {
	UID         interfaces.UID                `json:"uid"`
	Valid       bool                          `json:"valid"`
	Exists      bool                          `json:"exists"`
	Revoked     bool                          `json:"isRevoked"`
	Expired     bool                          `json:"isExpired"`
	Attestation *interfaces.AttestationRecord `json:"attestation,omitempty"`
	Issues      []Issue                       `json:"issues"`
}

// info appends an informational issue.
func (r *Result) info(message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityInfo, Message: message})
}

// warn appends a warning issue. Warnings never affect validity.
func (r *Result) warn(message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Message: message})
}

// fail appends an error issue and downgrades validity. Validity is never
// restored once downgraded.
func (r *Result) fail(message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Message: message})
	r.Valid = false
}
