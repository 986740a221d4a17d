package interfaces

import (
	"context"
	"time"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type TreatmentRepository interface {
	// Create creates the treatment sub-record for a risk. At most one
	// treatment exists per risk; creating a second one is an error.
	Create(ctx context.Context, treatment *model.RiskTreatment) (*model.RiskTreatment, error)

	// GetByRiskID retrieves the treatment of a risk
	GetByRiskID(ctx context.Context, riskID int64) (*model.RiskTreatment, error)

	// Update updates an existing treatment unconditionally
	Update(ctx context.Context, treatment *model.RiskTreatment) (*model.RiskTreatment, error)

	// UpdateIfStatus updates the treatment only when its stored status
	// still equals expected
	UpdateIfStatus(ctx context.Context, treatment *model.RiskTreatment, expected types.TreatmentStatus) (*model.RiskTreatment, error)

	// ListAcceptedExpiring lists accepted treatments whose acceptance expiry
	// falls before the given time. Used by the acceptance expiry worker.
	ListAcceptedExpiring(ctx context.Context, before time.Time) ([]*model.RiskTreatment, error)
}

type TreatmentUpdateRepository interface {
	// Create appends a progress update. Updates are immutable once written.
	Create(ctx context.Context, update *model.RiskTreatmentUpdate) (*model.RiskTreatmentUpdate, error)

	// ListByTreatment lists updates of a treatment, oldest first
	ListByTreatment(ctx context.Context, treatmentID int64) ([]*model.RiskTreatmentUpdate, error)
}
