package model

import (
	"fmt"
	"time"

	"github.com/grclab/riskflow/pkg/domain/types"
)

// Risk is the top-level workflow record. Sub-records (assessment, treatment,
// history, treatment updates) are stored separately and linked by RiskID.
type Risk struct {
	ID     int64
	OrgID  types.OrgID
	// HumanID is the org-scoped sequential identifier shown to users,
	// formatted RISK-NNN. Allocation is serialized per organization.
	HumanID string

	Title           string
	Description     string
	Source          string
	CategoryID      types.CategoryID
	InitialSeverity types.RiskLevel
	Tags            []string

	Status            types.RiskStatus
	InherentRiskLevel types.RiskLevel
	ResidualRiskLevel types.RiskLevel

	ReporterID     types.UserID
	GrcSmeID       types.UserID
	RiskAssessorID types.UserID
	RiskOwnerID    types.UserID

	// Treatment summary, denormalized from the treatment sub-record for
	// list views
	TreatmentDecision types.TreatmentDecision
	TreatmentStatus   types.TreatmentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatHumanID renders the org-scoped sequence number as a human-facing
// risk identifier, zero-padded to 3 digits (RISK-007, RISK-1024).
func FormatHumanID(seq int64) string {
	return fmt.Sprintf("RISK-%03d", seq)
}
