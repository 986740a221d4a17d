package interfaces

import (
	"context"

	"github.com/grclab/riskflow/pkg/domain/model"
)

type HistoryRepository interface {
	// Add appends a history entry. Entries are immutable once written.
	Add(ctx context.Context, entry *model.RiskHistory) error

	// ListByRisk lists history entries of a risk, oldest first
	ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskHistory, error)
}
