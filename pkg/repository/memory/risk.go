package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type riskRepository struct {
	mu      sync.RWMutex
	risks   map[int64]*model.Risk
	nextID  int64
	orgSeqs map[types.OrgID]int64
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks:   make(map[int64]*model.Risk),
		nextID:  1,
		orgSeqs: make(map[types.OrgID]int64),
	}
}

func copyRisk(r *model.Risk) *model.Risk {
	c := *r
	c.Tags = append([]string(nil), r.Tags...)
	return &c
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyRisk(risk)
	created.ID = r.nextID
	r.nextID++

	// Sequence allocation happens under the same lock as the insert, so two
	// concurrent submissions cannot observe the same value
	r.orgSeqs[risk.OrgID]++
	created.HumanID = model.FormatHumanID(r.orgSeqs[risk.OrgID])
	created.CreatedAt = now
	created.UpdatedAt = now

	r.risks[created.ID] = created
	return copyRisk(created), nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	return copyRisk(risk), nil
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrgID, status types.RiskStatus) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0)
	for _, risk := range r.risks {
		if risk.OrgID != orgID {
			continue
		}
		if status != "" && risk.Status != status {
			continue
		}
		risks = append(risks, copyRisk(risk))
	}

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(risk)
}

func (r *riskRepository) UpdateIfStatus(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[risk.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}
	if existing.Status != expected {
		return nil, goerr.Wrap(ErrPreconditionFailed, "risk status changed",
			goerr.V("id", risk.ID),
			goerr.V("expected", expected),
			goerr.V("actual", existing.Status))
	}

	return r.update(risk)
}

func (r *riskRepository) update(risk *model.Risk) (*model.Risk, error) {
	existing, exists := r.risks[risk.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}

	updated := copyRisk(risk)
	updated.HumanID = existing.HumanID
	updated.OrgID = existing.OrgID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.risks[updated.ID] = updated
	return copyRisk(updated), nil
}
