package types

import "fmt"

// ReviewDecision represents an approve/decline verdict on a review step
// (intake validation, assessment review, executive approval)
type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "approve"
	ReviewDecisionDecline ReviewDecision = "decline"
)

// IsValid checks if the review decision is valid
func (d ReviewDecision) IsValid() bool {
	switch d {
	case ReviewDecisionApprove, ReviewDecisionDecline:
		return true
	default:
		return false
	}
}

// String returns the string representation of the review decision
func (d ReviewDecision) String() string {
	return string(d)
}

// ParseReviewDecision parses a string into a ReviewDecision
func ParseReviewDecision(s string) (ReviewDecision, error) {
	d := ReviewDecision(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid review decision: %s", s)
	}
	return d, nil
}
