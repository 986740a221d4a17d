package interfaces

import (
	"context"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type RiskRepository interface {
	// Create creates a new risk with an auto-generated ID and an org-scoped
	// sequential human ID (RISK-NNN). Sequence allocation is atomic per
	// organization.
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// List retrieves all risks of an organization, optionally filtered by
	// status (empty status means no filter)
	List(ctx context.Context, orgID types.OrgID, status types.RiskStatus) ([]*model.Risk, error)

	// Update updates an existing risk unconditionally
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// UpdateIfStatus updates the risk only when its stored status still
	// equals expected, as a compare-and-swap against concurrent transitions.
	// A status mismatch returns ErrPreconditionFailed.
	UpdateIfStatus(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error)
}
