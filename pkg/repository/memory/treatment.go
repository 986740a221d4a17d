package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type treatmentRepository struct {
	mu     sync.RWMutex
	byRisk map[int64]*model.RiskTreatment
	nextID int64
}

func newTreatmentRepository() *treatmentRepository {
	return &treatmentRepository{
		byRisk: make(map[int64]*model.RiskTreatment),
		nextID: 1,
	}
}

func copyTreatment(t *model.RiskTreatment) *model.RiskTreatment {
	c := *t
	return &c
}

func (r *treatmentRepository) Create(ctx context.Context, treatment *model.RiskTreatment) (*model.RiskTreatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byRisk[treatment.RiskID]; exists {
		return nil, goerr.Wrap(ErrDuplicate, "treatment already exists for risk",
			goerr.V("risk_id", treatment.RiskID))
	}

	now := time.Now().UTC()
	created := copyTreatment(treatment)
	created.ID = r.nextID
	r.nextID++
	created.CreatedAt = now
	created.UpdatedAt = now

	r.byRisk[created.RiskID] = created
	return copyTreatment(created), nil
}

func (r *treatmentRepository) GetByRiskID(ctx context.Context, riskID int64) (*model.RiskTreatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	treatment, exists := r.byRisk[riskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("risk_id", riskID))
	}

	return copyTreatment(treatment), nil
}

func (r *treatmentRepository) Update(ctx context.Context, treatment *model.RiskTreatment) (*model.RiskTreatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(treatment)
}

func (r *treatmentRepository) UpdateIfStatus(ctx context.Context, treatment *model.RiskTreatment, expected types.TreatmentStatus) (*model.RiskTreatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.byRisk[treatment.RiskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("risk_id", treatment.RiskID))
	}
	if existing.Status != expected {
		return nil, goerr.Wrap(ErrPreconditionFailed, "treatment status changed",
			goerr.V("risk_id", treatment.RiskID),
			goerr.V("expected", expected),
			goerr.V("actual", existing.Status))
	}

	return r.update(treatment)
}

func (r *treatmentRepository) ListAcceptedExpiring(ctx context.Context, before time.Time) ([]*model.RiskTreatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expiring := make([]*model.RiskTreatment, 0)
	for _, treatment := range r.byRisk {
		if treatment.Status != types.TreatmentStatusAccepted &&
			treatment.Status != types.TreatmentStatusAutoAccepted {
			continue
		}
		if treatment.AcceptanceExpiry == nil || !treatment.AcceptanceExpiry.Before(before) {
			continue
		}
		expiring = append(expiring, copyTreatment(treatment))
	}

	return expiring, nil
}

func (r *treatmentRepository) update(treatment *model.RiskTreatment) (*model.RiskTreatment, error) {
	existing, exists := r.byRisk[treatment.RiskID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("risk_id", treatment.RiskID))
	}

	updated := copyTreatment(treatment)
	updated.ID = existing.ID
	updated.OrgID = existing.OrgID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.byRisk[updated.RiskID] = updated
	return copyTreatment(updated), nil
}
