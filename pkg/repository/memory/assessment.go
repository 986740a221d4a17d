package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type assessmentRepository struct {
	mu     sync.RWMutex
	byRisk map[int64]*model.RiskAssessment
	nextID int64
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		byRisk: make(map[int64]*model.RiskAssessment),
		nextID: 1,
	}
}

func copyAssessment(a *model.RiskAssessment) *model.RiskAssessment {
	c := *a
	return &c
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byRisk[assessment.RiskID]; exists {
		return nil, goerr.Wrap(ErrDuplicate, "assessment already exists for risk",
			goerr.V("risk_id", assessment.RiskID))
	}

	now := time.Now().UTC()
	created := copyAssessment(assessment)
	created.ID = r.nextID
	r.nextID++
	created.CreatedAt = now
	created.UpdatedAt = now

	r.byRisk[created.RiskID] = created
	return copyAssessment(created), nil
}

func (r *assessmentRepository) GetByRiskID(ctx context.Context, riskID int64) (*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assessment, exists := r.byRisk[riskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("risk_id", riskID))
	}

	return copyAssessment(assessment), nil
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(assessment)
}

func (r *assessmentRepository) UpdateIfStatus(ctx context.Context, assessment *model.RiskAssessment, expected types.AssessmentStatus) (*model.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.byRisk[assessment.RiskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("risk_id", assessment.RiskID))
	}
	if existing.Status != expected {
		return nil, goerr.Wrap(ErrPreconditionFailed, "assessment status changed",
			goerr.V("risk_id", assessment.RiskID),
			goerr.V("expected", expected),
			goerr.V("actual", existing.Status))
	}

	return r.update(assessment)
}

func (r *assessmentRepository) update(assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	existing, exists := r.byRisk[assessment.RiskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("risk_id", assessment.RiskID))
	}

	updated := copyAssessment(assessment)
	updated.ID = existing.ID
	updated.OrgID = existing.OrgID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.byRisk[updated.RiskID] = updated
	return copyAssessment(updated), nil
}
