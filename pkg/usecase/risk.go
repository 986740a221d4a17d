package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// RiskUseCase covers intake and validation: the operations that act on the
// top-level risk record before an assessment exists
type RiskUseCase struct {
	deps
}

// IntakeInput carries the reporter-supplied fields of a new risk
type IntakeInput struct {
	Title           string
	Description     string
	Source          string
	CategoryID      types.CategoryID
	InitialSeverity types.RiskLevel
	Tags            []string
}

// SubmitIntake creates a risk in "identified" status with an org-scoped
// sequential human ID
func (uc *RiskUseCase) SubmitIntake(ctx context.Context, orgID types.OrgID, input IntakeInput, reporterID types.UserID) (*model.Risk, error) {
	if err := orgID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}
	if input.Title == "" {
		return nil, goerr.Wrap(ErrValidation, "risk title is required")
	}
	if reporterID == "" {
		return nil, goerr.Wrap(ErrValidation, "reporter is required")
	}
	if input.InitialSeverity != "" && !input.InitialSeverity.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid initial severity",
			goerr.V("severity", input.InitialSeverity))
	}
	if input.CategoryID != "" {
		if err := input.CategoryID.Validate(); err != nil {
			return nil, goerr.Wrap(ErrValidation, err.Error())
		}
		if uc.catalog != nil && !uc.catalog.HasCategory(input.CategoryID) {
			return nil, goerr.Wrap(ErrValidation, "unknown risk category",
				goerr.V("category", input.CategoryID))
		}
	}
	if uc.catalog != nil && !uc.catalog.HasOrganization(orgID) {
		return nil, goerr.Wrap(ErrValidation, "unknown organization",
			goerr.V(OrgIDKey, orgID))
	}

	risk, err := uc.repo.Risk().Create(ctx, &model.Risk{
		OrgID:           orgID,
		Title:           input.Title,
		Description:     input.Description,
		Source:          input.Source,
		CategoryID:      input.CategoryID,
		InitialSeverity: input.InitialSeverity,
		Tags:            input.Tags,
		Status:          types.RiskStatusIdentified,
		ReporterID:      reporterID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V(OrgIDKey, orgID))
	}

	if err := uc.appendHistory(ctx, risk, types.ActionSubmitIntake, reporterID, nil, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to append intake history", goerr.V(RiskIDKey, risk.ID))
	}

	uc.recordAudit(ctx, risk, types.ActionSubmitIntake, reporterID, "risk reported", nil)

	return risk, nil
}

// ValidateRisk is the GRC SME's intake verdict: approve confirms the risk is
// real, decline closes it as not a risk. Valid only while the risk is in
// "identified" status; any other status reports not-found.
func (uc *RiskUseCase) ValidateRisk(ctx context.Context, riskID int64, decision types.ReviewDecision, smeID types.UserID, note string) (*model.Risk, error) {
	if !decision.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid review decision",
			goerr.V("decision", decision))
	}
	if smeID == "" {
		return nil, goerr.Wrap(ErrValidation, "validating SME is required")
	}

	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	if risk.Status != types.RiskStatusIdentified {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	next, err := model.RouteValidation(decision)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	prev := risk.Status
	risk.Status = next
	risk.GrcSmeID = smeID

	updated, err := uc.repo.Risk().UpdateIfStatus(ctx, risk, types.RiskStatusIdentified)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "risk status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	changes := map[string]model.FieldChange{
		"status": {From: prev.String(), To: next.String()},
	}
	if err := uc.appendHistory(ctx, updated, types.ActionValidateRisk, smeID, changes, note); err != nil {
		return nil, goerr.Wrap(err, "failed to append validation history", goerr.V(RiskIDKey, riskID))
	}

	uc.recordAudit(ctx, updated, types.ActionValidateRisk, smeID, "intake validated: "+decision.String(), changes)

	// The reporter hears the outcome either way
	if decision == types.ReviewDecisionApprove {
		uc.sendNotification(ctx, updated, updated.ReporterID, types.NotificationRiskValidated,
			fmt.Sprintf("Risk confirmed: %s %s", updated.HumanID, updated.Title),
			"The GRC team confirmed your report as an actual risk.")
	} else {
		uc.sendNotification(ctx, updated, updated.ReporterID, types.NotificationRiskDeclined,
			fmt.Sprintf("Risk declined: %s %s", updated.HumanID, updated.Title),
			"The GRC team reviewed your report and determined it is not a risk.")
	}

	return updated, nil
}

// Get retrieves one risk
func (uc *RiskUseCase) Get(ctx context.Context, riskID int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	return risk, nil
}

// List retrieves the risks of an organization, optionally filtered by status
func (uc *RiskUseCase) List(ctx context.Context, orgID types.OrgID, status types.RiskStatus) ([]*model.Risk, error) {
	if status != "" && !status.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid risk status filter",
			goerr.V("status", status))
	}
	risks, err := uc.repo.Risk().List(ctx, orgID, status)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V(OrgIDKey, orgID))
	}
	return risks, nil
}

// ListHistory returns the workflow trail of a risk, oldest first
func (uc *RiskUseCase) ListHistory(ctx context.Context, riskID int64) ([]*model.RiskHistory, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	entries, err := uc.repo.History().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list history", goerr.V(RiskIDKey, riskID))
	}
	return entries, nil
}
