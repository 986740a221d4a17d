package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grclab/riskflow/pkg/domain/model"
)

type historyRepository struct {
	mu     sync.RWMutex
	byRisk map[int64][]*model.RiskHistory
}

func newHistoryRepository() *historyRepository {
	return &historyRepository{
		byRisk: make(map[int64][]*model.RiskHistory),
	}
}

func copyHistory(h *model.RiskHistory) *model.RiskHistory {
	c := *h
	if h.Changes != nil {
		c.Changes = make(map[string]model.FieldChange, len(h.Changes))
		for k, v := range h.Changes {
			c.Changes[k] = v
		}
	}
	return &c
}

func (r *historyRepository) Add(ctx context.Context, entry *model.RiskHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyHistory(entry)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = time.Now().UTC()

	r.byRisk[stored.RiskID] = append(r.byRisk[stored.RiskID], stored)
	return nil
}

func (r *historyRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*model.RiskHistory, 0, len(r.byRisk[riskID]))
	for _, entry := range r.byRisk[riskID] {
		entries = append(entries, copyHistory(entry))
	}

	return entries, nil
}
