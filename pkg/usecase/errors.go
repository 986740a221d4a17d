package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrRiskNotFound covers both a missing record and a record that is not
	// in the status the operation requires. The two cases are intentionally
	// merged so callers cannot probe internal state.
	ErrRiskNotFound = errors.New("risk not found")

	// ErrInvalidState means the operation is structurally inapplicable to
	// the current sub-state, including a transition that was already applied
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrValidation means the request payload itself is malformed
	ErrValidation = errors.New("invalid request")
)

// Context keys for error values
const (
	RiskIDKey = "risk_id"
	OrgIDKey  = "org_id"
)
