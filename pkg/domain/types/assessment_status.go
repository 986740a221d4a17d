package types

import "fmt"

// AssessmentStatus represents the status of a risk assessment sub-record
type AssessmentStatus string

const (
	// AssessmentStatusAssessorAnalysis means the assessor is preparing the assessment
	AssessmentStatusAssessorAnalysis AssessmentStatus = "risk_assessor_analysis"
	// AssessmentStatusGrcApproval means the assessment awaits GRC SME review
	AssessmentStatusGrcApproval AssessmentStatus = "grc_approval"
	// AssessmentStatusGrcRevision means the SME sent the assessment back for rework
	AssessmentStatusGrcRevision AssessmentStatus = "grc_revision"
	// AssessmentStatusDone is the approved terminal state
	AssessmentStatusDone AssessmentStatus = "done"
)

// AllAssessmentStatuses returns all valid assessment statuses
func AllAssessmentStatuses() []AssessmentStatus {
	return []AssessmentStatus{
		AssessmentStatusAssessorAnalysis,
		AssessmentStatusGrcApproval,
		AssessmentStatusGrcRevision,
		AssessmentStatusDone,
	}
}

// IsValid checks if the assessment status is valid
func (s AssessmentStatus) IsValid() bool {
	switch s {
	case AssessmentStatusAssessorAnalysis,
		AssessmentStatusGrcApproval,
		AssessmentStatusGrcRevision,
		AssessmentStatusDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the assessment status
func (s AssessmentStatus) String() string {
	return string(s)
}

// ParseAssessmentStatus parses a string into an AssessmentStatus
func ParseAssessmentStatus(s string) (AssessmentStatus, error) {
	status := AssessmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid assessment status: %s", s)
	}
	return status, nil
}
