package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grclab/riskflow/pkg/domain/model"
)

type treatmentUpdateRepository struct {
	mu          sync.RWMutex
	byTreatment map[int64][]*model.RiskTreatmentUpdate
}

func newTreatmentUpdateRepository() *treatmentUpdateRepository {
	return &treatmentUpdateRepository{
		byTreatment: make(map[int64][]*model.RiskTreatmentUpdate),
	}
}

func copyTreatmentUpdate(u *model.RiskTreatmentUpdate) *model.RiskTreatmentUpdate {
	c := *u
	return &c
}

func (r *treatmentUpdateRepository) Create(ctx context.Context, update *model.RiskTreatmentUpdate) (*model.RiskTreatmentUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyTreatmentUpdate(update)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()

	r.byTreatment[created.TreatmentID] = append(r.byTreatment[created.TreatmentID], created)
	return copyTreatmentUpdate(created), nil
}

func (r *treatmentUpdateRepository) ListByTreatment(ctx context.Context, treatmentID int64) ([]*model.RiskTreatmentUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	updates := make([]*model.RiskTreatmentUpdate, 0, len(r.byTreatment[treatmentID]))
	for _, update := range r.byTreatment[treatmentID] {
		updates = append(updates, copyTreatmentUpdate(update))
	}

	return updates, nil
}
