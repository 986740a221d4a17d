package model

import (
	"time"

	"github.com/grclab/riskflow/pkg/domain/types"
)

// RiskAssessment is the analysis sub-record of a risk. A risk has at most
// one live assessment; it is created when an assessor is assigned and never
// duplicated within one lifecycle pass.
type RiskAssessment struct {
	ID     int64
	RiskID int64
	OrgID  types.OrgID

	Status types.AssessmentStatus

	Likelihood types.Likelihood
	Impact     types.Impact
	// CalculatedRiskLevel is derived from Likelihood and Impact via
	// types.CalculateRiskLevel. It is recomputed on every submission and
	// never set directly.
	CalculatedRiskLevel types.RiskLevel

	Narrative          string
	RecommendedOwnerID types.UserID
	DeclineReason      string

	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
