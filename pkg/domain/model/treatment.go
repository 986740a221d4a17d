package model

import (
	"time"

	"github.com/grclab/riskflow/pkg/domain/types"
)

// RiskTreatment is the disposition sub-record of a risk. It is created only
// after the assessment reaches its approved terminal state, and a risk has
// at most one live treatment.
type RiskTreatment struct {
	ID     int64
	RiskID int64
	OrgID  types.OrgID

	Status  types.TreatmentStatus
	OwnerID types.UserID

	Decision      types.TreatmentDecision
	Justification string

	// Decision-specific fields; only the group matching Decision is set
	MitigationPlan       string
	MitigationTargetDate *time.Time
	TransferTarget       string
	TransferCost         string
	AvoidanceStrategy    string
	AcceptanceRationale  string
	AcceptanceExpiry     *time.Time

	// ExecutiveApprovalRequired always equals the routing-matrix lookup for
	// (Decision, inherent risk level) at the moment the decision was
	// submitted
	ExecutiveApprovalRequired bool
	ExecutiveApprovalStatus   types.ReviewDecision
	ExecutiveApproverID       types.UserID

	MitigationPercent int
	MitigationStatus  types.MitigationStatus

	ResidualLikelihood types.Likelihood
	ResidualImpact     types.Impact
	ResidualRiskLevel  types.RiskLevel

	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClearDecision wipes the stored decision and its decision-specific fields.
// Used when an executive denies the decision: the owner starts over.
func (t *RiskTreatment) ClearDecision() {
	t.Decision = ""
	t.Justification = ""
	t.MitigationPlan = ""
	t.MitigationTargetDate = nil
	t.TransferTarget = ""
	t.TransferCost = ""
	t.AvoidanceStrategy = ""
	t.AcceptanceRationale = ""
	t.AcceptanceExpiry = nil
	t.ExecutiveApprovalRequired = false
	t.ExecutiveApprovalStatus = ""
	t.ExecutiveApproverID = ""
	t.DecidedAt = nil
}

// RiskTreatmentUpdate is an append-only, fine-grained progress entry against
// a treatment. Mitigation can span weeks to months, so these form a denser
// trail than RiskHistory.
type RiskTreatmentUpdate struct {
	ID          string
	TreatmentID int64
	RiskID      int64
	OrgID       types.OrgID

	Status        types.MitigationStatus
	Percent       int
	Note          string
	Reason        string
	Evidence      string
	NewTargetDate *time.Time

	CreatedBy types.UserID
	CreatedAt time.Time
}
