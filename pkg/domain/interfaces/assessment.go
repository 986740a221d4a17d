package interfaces

import (
	"context"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type AssessmentRepository interface {
	// Create creates the assessment sub-record for a risk. At most one
	// assessment exists per risk; creating a second one is an error.
	Create(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error)

	// GetByRiskID retrieves the assessment of a risk
	GetByRiskID(ctx context.Context, riskID int64) (*model.RiskAssessment, error)

	// Update updates an existing assessment unconditionally
	Update(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error)

	// UpdateIfStatus updates the assessment only when its stored status
	// still equals expected
	UpdateIfStatus(ctx context.Context, assessment *model.RiskAssessment, expected types.AssessmentStatus) (*model.RiskAssessment, error)
}
