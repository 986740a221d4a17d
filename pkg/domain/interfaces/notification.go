package interfaces

import (
	"context"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type NotificationRepository interface {
	// Create stores an in-app notification record
	Create(ctx context.Context, notification *model.Notification) (*model.Notification, error)

	// ListByUser lists notifications for a user, newest first
	ListByUser(ctx context.Context, orgID types.OrgID, userID types.UserID) ([]*model.Notification, error)

	// MarkRead marks a notification as read
	MarkRead(ctx context.Context, id string) error
}

type AuditRepository interface {
	// Add appends an audit entry. Entries are immutable once written.
	Add(ctx context.Context, entry *model.AuditEntry) error

	// ListByOrg lists audit entries of an organization, newest first
	ListByOrg(ctx context.Context, orgID types.OrgID) ([]*model.AuditEntry, error)
}
