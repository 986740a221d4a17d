package memory

import (
	"context"
	"sync"

	"github.com/grclab/riskflow/pkg/domain/model"
)

type linkRepository struct {
	mu        sync.RWMutex
	assets    map[int64][]model.AssetLink
	controls  map[int64][]model.ControlLink
	scenarios map[int64][]model.ScenarioLink
}

func newLinkRepository() *linkRepository {
	return &linkRepository{
		assets:    make(map[int64][]model.AssetLink),
		controls:  make(map[int64][]model.ControlLink),
		scenarios: make(map[int64][]model.ScenarioLink),
	}
}

func (r *linkRepository) ReplaceAssets(ctx context.Context, riskID int64, links []model.AssetLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[riskID] = append([]model.AssetLink(nil), links...)
	return nil
}

func (r *linkRepository) ListAssets(ctx context.Context, riskID int64) ([]model.AssetLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.AssetLink(nil), r.assets[riskID]...), nil
}

func (r *linkRepository) ReplaceControls(ctx context.Context, riskID int64, links []model.ControlLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.controls[riskID] = append([]model.ControlLink(nil), links...)
	return nil
}

func (r *linkRepository) ListControls(ctx context.Context, riskID int64) ([]model.ControlLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.ControlLink(nil), r.controls[riskID]...), nil
}

func (r *linkRepository) ReplaceScenarios(ctx context.Context, riskID int64, links []model.ScenarioLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios[riskID] = append([]model.ScenarioLink(nil), links...)
	return nil
}

func (r *linkRepository) ListScenarios(ctx context.Context, riskID int64) ([]model.ScenarioLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.ScenarioLink(nil), r.scenarios[riskID]...), nil
}
