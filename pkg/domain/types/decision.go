package types

import "fmt"

// TreatmentDecision represents the treatment approach chosen by the risk owner
type TreatmentDecision string

const (
	TreatmentDecisionMitigate TreatmentDecision = "mitigate"
	TreatmentDecisionAccept   TreatmentDecision = "accept"
	TreatmentDecisionTransfer TreatmentDecision = "transfer"
	TreatmentDecisionAvoid    TreatmentDecision = "avoid"
)

// AllTreatmentDecisions returns all valid treatment decisions
func AllTreatmentDecisions() []TreatmentDecision {
	return []TreatmentDecision{
		TreatmentDecisionMitigate,
		TreatmentDecisionAccept,
		TreatmentDecisionTransfer,
		TreatmentDecisionAvoid,
	}
}

// IsValid checks if the treatment decision is valid
func (d TreatmentDecision) IsValid() bool {
	switch d {
	case TreatmentDecisionMitigate,
		TreatmentDecisionAccept,
		TreatmentDecisionTransfer,
		TreatmentDecisionAvoid:
		return true
	default:
		return false
	}
}

// String returns the string representation of the treatment decision
func (d TreatmentDecision) String() string {
	return string(d)
}

// ParseTreatmentDecision parses a string into a TreatmentDecision
func ParseTreatmentDecision(s string) (TreatmentDecision, error) {
	decision := TreatmentDecision(s)
	if !decision.IsValid() {
		return "", fmt.Errorf("invalid treatment decision: %s", s)
	}
	return decision, nil
}
