package model

import (
	"time"

	"github.com/grclab/riskflow/pkg/domain/types"
)

// FieldChange records one field transition inside a history entry
type FieldChange struct {
	From string
	To   string
}

// RiskHistory is an append-only, coarse-grained trail of workflow actions on
// a risk. Entries are immutable once written.
type RiskHistory struct {
	ID     string
	RiskID int64
	OrgID  types.OrgID

	Action  types.WorkflowAction
	ActorID types.UserID
	Note    string
	Changes map[string]FieldChange

	CreatedAt time.Time
}
