package model

import (
	"time"

	"github.com/grclab/riskflow/pkg/domain/types"
)

// AuditEntry is the record handed to the audit recorder on every mutation.
// Delivery is best-effort; a failed audit write never rolls back the
// transition that produced it.
type AuditEntry struct {
	ID     string
	OrgID  types.OrgID
	UserID types.UserID

	Action      types.WorkflowAction
	EntityType  string
	EntityID    string
	EntityName  string
	Description string
	Changes     map[string]FieldChange

	CreatedAt time.Time
}

// Notification is the in-app record produced by the notification dispatcher,
// keyed by the receiving user
type Notification struct {
	ID     string
	OrgID  types.OrgID
	UserID types.UserID

	Type     types.NotificationType
	Title    string
	Message  string
	Severity types.RiskLevel

	EntityType string
	EntityID   string

	Read      bool
	CreatedAt time.Time
}
