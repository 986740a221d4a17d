package types

import "fmt"

// RiskStatus represents the intake-level status of a risk
type RiskStatus string

const (
	// RiskStatusIdentified is the initial status after intake submission
	RiskStatusIdentified RiskStatus = "identified"
	// RiskStatusNotARisk is the terminal status for declined intakes
	RiskStatusNotARisk RiskStatus = "not_a_risk"
	// RiskStatusActualRisk means the GRC SME confirmed the risk is real
	RiskStatusActualRisk RiskStatus = "actual_risk"
	// RiskStatusAnalysisInProgress means an assessor is working on the risk
	RiskStatusAnalysisInProgress RiskStatus = "risk_analysis_in_progress"
	// RiskStatusAnalyzed means the assessment was approved and treatment started
	RiskStatusAnalyzed RiskStatus = "risk_analyzed"
)

// AllRiskStatuses returns all valid risk statuses
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusIdentified,
		RiskStatusNotARisk,
		RiskStatusActualRisk,
		RiskStatusAnalysisInProgress,
		RiskStatusAnalyzed,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusIdentified,
		RiskStatusNotARisk,
		RiskStatusActualRisk,
		RiskStatusAnalysisInProgress,
		RiskStatusAnalyzed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further intake-level transition is possible
func (s RiskStatus) IsTerminal() bool {
	return s == RiskStatusNotARisk
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid risk status: %s", s)
	}
	return status, nil
}
