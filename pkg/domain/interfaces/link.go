package interfaces

import (
	"context"

	"github.com/grclab/riskflow/pkg/domain/model"
)

// LinkRepository manages the many-to-many join records between risks and
// assets, controls and scenarios. Replacement is bulk: delete then recreate,
// never diffed.
type LinkRepository interface {
	ReplaceAssets(ctx context.Context, riskID int64, links []model.AssetLink) error
	ListAssets(ctx context.Context, riskID int64) ([]model.AssetLink, error)

	ReplaceControls(ctx context.Context, riskID int64, links []model.ControlLink) error
	ListControls(ctx context.Context, riskID int64) ([]model.ControlLink, error)

	ReplaceScenarios(ctx context.Context, riskID int64, links []model.ScenarioLink) error
	ListScenarios(ctx context.Context, riskID int64) ([]model.ScenarioLink, error)
}
