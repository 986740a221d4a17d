package types

import "fmt"

// TreatmentStatus represents the status of a risk treatment sub-record
type TreatmentStatus string

const (
	// TreatmentStatusDecisionReview means the owner must choose a treatment decision
	TreatmentStatusDecisionReview TreatmentStatus = "treatment_decision_review"
	// TreatmentStatusIdentifyExecutiveApprover means the GRC SME must name an executive approver
	TreatmentStatusIdentifyExecutiveApprover TreatmentStatus = "identify_executive_approver"
	// TreatmentStatusExecutiveApproval means the named executive must approve or deny
	TreatmentStatusExecutiveApproval TreatmentStatus = "executive_approval"
	// TreatmentStatusMitigationInProgress means an approved mitigation plan is being executed
	TreatmentStatusMitigationInProgress TreatmentStatus = "risk_mitigation_in_progress"
	// TreatmentStatusMitigationComplete is the terminal state for finished mitigations
	TreatmentStatusMitigationComplete TreatmentStatus = "risk_mitigation_complete"
	// TreatmentStatusAccepted is the terminal state for accepted risks
	TreatmentStatusAccepted TreatmentStatus = "risk_accept"
	// TreatmentStatusTransferred is the terminal state for transferred risks
	TreatmentStatusTransferred TreatmentStatus = "risk_transfer"
	// TreatmentStatusAvoided is the terminal state for avoided risks
	TreatmentStatusAvoided TreatmentStatus = "risk_avoid"
	// TreatmentStatusAutoAccepted is the terminal state for low-severity non-mitigate decisions
	TreatmentStatusAutoAccepted TreatmentStatus = "risk_auto_accept"
)

// AllTreatmentStatuses returns all valid treatment statuses
func AllTreatmentStatuses() []TreatmentStatus {
	return []TreatmentStatus{
		TreatmentStatusDecisionReview,
		TreatmentStatusIdentifyExecutiveApprover,
		TreatmentStatusExecutiveApproval,
		TreatmentStatusMitigationInProgress,
		TreatmentStatusMitigationComplete,
		TreatmentStatusAccepted,
		TreatmentStatusTransferred,
		TreatmentStatusAvoided,
		TreatmentStatusAutoAccepted,
	}
}

// IsValid checks if the treatment status is valid
func (s TreatmentStatus) IsValid() bool {
	switch s {
	case TreatmentStatusDecisionReview,
		TreatmentStatusIdentifyExecutiveApprover,
		TreatmentStatusExecutiveApproval,
		TreatmentStatusMitigationInProgress,
		TreatmentStatusMitigationComplete,
		TreatmentStatusAccepted,
		TreatmentStatusTransferred,
		TreatmentStatusAvoided,
		TreatmentStatusAutoAccepted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the treatment reached a final disposition
func (s TreatmentStatus) IsTerminal() bool {
	switch s {
	case TreatmentStatusMitigationComplete,
		TreatmentStatusAccepted,
		TreatmentStatusTransferred,
		TreatmentStatusAvoided,
		TreatmentStatusAutoAccepted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the treatment status
func (s TreatmentStatus) String() string {
	return string(s)
}

// ParseTreatmentStatus parses a string into a TreatmentStatus
func ParseTreatmentStatus(s string) (TreatmentStatus, error) {
	status := TreatmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid treatment status: %s", s)
	}
	return status, nil
}
