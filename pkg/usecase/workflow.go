package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// WorkflowUseCase is the read side: the stage projection and the
// user-facing notification and audit queries
type WorkflowUseCase struct {
	deps
}

// GetState projects the current workflow stage and permitted operations of a
// risk from its three status fields
func (uc *WorkflowUseCase) GetState(ctx context.Context, riskID int64) (*model.WorkflowState, error) {
	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	var assessmentStatus *types.AssessmentStatus
	if assessment, err := uc.repo.Assessment().GetByRiskID(ctx, riskID); err == nil {
		assessmentStatus = &assessment.Status
	}

	var treatmentStatus *types.TreatmentStatus
	if treatment, err := uc.repo.Treatment().GetByRiskID(ctx, riskID); err == nil {
		treatmentStatus = &treatment.Status
	}

	state := model.ProjectWorkflowState(risk.Status, assessmentStatus, treatmentStatus)
	return &state, nil
}

// RiskLinks bundles the link records of one risk
type RiskLinks struct {
	Assets    []model.AssetLink
	Controls  []model.ControlLink
	Scenarios []model.ScenarioLink
}

// GetLinks returns the asset, control and scenario links of a risk
func (uc *WorkflowUseCase) GetLinks(ctx context.Context, riskID int64) (*RiskLinks, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	var links RiskLinks
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		assets, err := uc.repo.Link().ListAssets(egCtx, riskID)
		if err != nil {
			return goerr.Wrap(err, "failed to list asset links", goerr.V(RiskIDKey, riskID))
		}
		links.Assets = assets
		return nil
	})
	eg.Go(func() error {
		controls, err := uc.repo.Link().ListControls(egCtx, riskID)
		if err != nil {
			return goerr.Wrap(err, "failed to list control links", goerr.V(RiskIDKey, riskID))
		}
		links.Controls = controls
		return nil
	})
	eg.Go(func() error {
		scenarios, err := uc.repo.Link().ListScenarios(egCtx, riskID)
		if err != nil {
			return goerr.Wrap(err, "failed to list scenario links", goerr.V(RiskIDKey, riskID))
		}
		links.Scenarios = scenarios
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &links, nil
}

// ListNotifications returns the in-app notifications of a user, newest first
func (uc *WorkflowUseCase) ListNotifications(ctx context.Context, orgID types.OrgID, userID types.UserID) ([]*model.Notification, error) {
	notifications, err := uc.repo.Notification().ListByUser(ctx, orgID, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications",
			goerr.V(OrgIDKey, orgID), goerr.V("user", userID))
	}
	return notifications, nil
}

// MarkNotificationRead marks one notification as read
func (uc *WorkflowUseCase) MarkNotificationRead(ctx context.Context, id string) error {
	if err := uc.repo.Notification().MarkRead(ctx, id); err != nil {
		return goerr.Wrap(ErrRiskNotFound, "notification not found", goerr.V("id", id))
	}
	return nil
}

// ListAuditLog returns the audit trail of an organization, newest first
func (uc *WorkflowUseCase) ListAuditLog(ctx context.Context, orgID types.OrgID) ([]*model.AuditEntry, error) {
	entries, err := uc.auditor.List(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit log", goerr.V(OrgIDKey, orgID))
	}
	return entries, nil
}
