package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditEntry
}

func newAuditRepository() *auditRepository {
	return &auditRepository{}
}

func copyAuditEntry(e *model.AuditEntry) *model.AuditEntry {
	c := *e
	if e.Changes != nil {
		c.Changes = make(map[string]model.FieldChange, len(e.Changes))
		for k, v := range e.Changes {
			c.Changes[k] = v
		}
	}
	return &c
}

func (r *auditRepository) Add(ctx context.Context, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyAuditEntry(entry)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = time.Now().UTC()

	r.entries = append(r.entries, stored)
	return nil
}

func (r *auditRepository) ListByOrg(ctx context.Context, orgID types.OrgID) ([]*model.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*model.AuditEntry, 0)
	for _, entry := range r.entries {
		if entry.OrgID != orgID {
			continue
		}
		entries = append(entries, copyAuditEntry(entry))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}
