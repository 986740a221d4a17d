package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// TreatmentUseCase drives the disposition sub-workflow: decision routing,
// executive escalation and mitigation progress tracking
type TreatmentUseCase struct {
	deps
}

// TreatmentDecisionInput carries the owner's chosen decision and its
// decision-specific fields
type TreatmentDecisionInput struct {
	Decision      types.TreatmentDecision
	Justification string

	MitigationPlan       string
	MitigationTargetDate *time.Time
	TransferTarget       string
	TransferCost         string
	AvoidanceStrategy    string
	AcceptanceRationale  string
	AcceptanceExpiry     *time.Time
}

func (in *TreatmentDecisionInput) validate() error {
	if !in.Decision.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid treatment decision",
			goerr.V("decision", in.Decision))
	}
	if in.Decision == types.TreatmentDecisionMitigate && in.MitigationPlan == "" {
		return goerr.Wrap(ErrValidation, "mitigation plan is required")
	}
	return nil
}

// SubmitTreatmentDecision records the owner's decision and routes it through
// the escalation matrix against the inherent risk level computed at
// assessment time. The level is never recomputed here.
func (uc *TreatmentUseCase) SubmitTreatmentDecision(ctx context.Context, riskID int64, input TreatmentDecisionInput, actorID types.UserID) (*model.RiskTreatment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	risk, treatment, err := uc.load(ctx, riskID)
	if err != nil {
		return nil, err
	}
	if treatment.Status != types.TreatmentStatusDecisionReview {
		return nil, goerr.Wrap(ErrInvalidState, "treatment is not awaiting a decision",
			goerr.V(RiskIDKey, riskID), goerr.V("status", treatment.Status))
	}

	outcome, err := model.RouteTreatmentDecision(input.Decision, risk.InherentRiskLevel)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	now := time.Now().UTC()
	treatment.Decision = input.Decision
	treatment.Justification = input.Justification
	treatment.MitigationPlan = input.MitigationPlan
	treatment.MitigationTargetDate = input.MitigationTargetDate
	treatment.TransferTarget = input.TransferTarget
	treatment.TransferCost = input.TransferCost
	treatment.AvoidanceStrategy = input.AvoidanceStrategy
	treatment.AcceptanceRationale = input.AcceptanceRationale
	treatment.AcceptanceExpiry = input.AcceptanceExpiry
	treatment.ExecutiveApprovalRequired = outcome.ExecutiveApprovalRequired
	treatment.Status = outcome.NextStatus
	treatment.DecidedAt = &now

	updated, err := uc.repo.Treatment().UpdateIfStatus(ctx, treatment, types.TreatmentStatusDecisionReview)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "treatment status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	changes := map[string]model.FieldChange{
		"treatment_status": {From: types.TreatmentStatusDecisionReview.String(), To: outcome.NextStatus.String()},
		"decision":         {To: input.Decision.String()},
	}
	if err := uc.syncRiskSummary(ctx, risk, updated, types.ActionSubmitTreatmentDecision, actorID, changes, input.Justification); err != nil {
		return nil, err
	}

	if outcome.ExecutiveApprovalRequired {
		// Escalation is a role handoff: the GRC SME names the approver,
		// not the owner
		uc.sendNotification(ctx, risk, risk.GrcSmeID, types.NotificationEscalationRequired,
			fmt.Sprintf("Executive approval needed: %s %s", risk.HumanID, risk.Title),
			fmt.Sprintf("The decision %q on this %s risk requires executive sign-off. Identify an approver.",
				input.Decision, risk.InherentRiskLevel))
	}

	return updated, nil
}

// SetExecutiveApprover names the executive who will review an escalated
// decision and moves the treatment into executive approval
func (uc *TreatmentUseCase) SetExecutiveApprover(ctx context.Context, riskID int64, approverID types.UserID, actorID types.UserID) (*model.RiskTreatment, error) {
	if approverID == "" {
		return nil, goerr.Wrap(ErrValidation, "approver is required")
	}

	risk, treatment, err := uc.load(ctx, riskID)
	if err != nil {
		return nil, err
	}
	if treatment.Status != types.TreatmentStatusIdentifyExecutiveApprover {
		return nil, goerr.Wrap(ErrInvalidState, "treatment is not awaiting an approver",
			goerr.V(RiskIDKey, riskID), goerr.V("status", treatment.Status))
	}

	treatment.ExecutiveApproverID = approverID
	treatment.Status = types.TreatmentStatusExecutiveApproval

	updated, err := uc.repo.Treatment().UpdateIfStatus(ctx, treatment, types.TreatmentStatusIdentifyExecutiveApprover)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "treatment status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	changes := map[string]model.FieldChange{
		"treatment_status": {From: types.TreatmentStatusIdentifyExecutiveApprover.String(), To: types.TreatmentStatusExecutiveApproval.String()},
	}
	if err := uc.syncRiskSummary(ctx, risk, updated, types.ActionSetExecutiveApprover, actorID, changes, ""); err != nil {
		return nil, err
	}

	uc.sendNotification(ctx, risk, approverID, types.NotificationApproverAssigned,
		fmt.Sprintf("Executive approval requested: %s %s", risk.HumanID, risk.Title),
		fmt.Sprintf("The decision %q on this %s risk awaits your approval.",
			updated.Decision, risk.InherentRiskLevel))

	return updated, nil
}

// SubmitExecutiveDecision records the executive verdict on an escalated
// decision. Approval resolves the treatment to the terminal status of the
// original decision; denial is a hard reset that clears the decision and
// returns to decision review.
func (uc *TreatmentUseCase) SubmitExecutiveDecision(ctx context.Context, riskID int64, decision types.ReviewDecision, note string, actorID types.UserID) (*model.RiskTreatment, error) {
	if !decision.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid review decision",
			goerr.V("decision", decision))
	}

	risk, treatment, err := uc.load(ctx, riskID)
	if err != nil {
		return nil, err
	}
	if treatment.Status != types.TreatmentStatusExecutiveApproval {
		return nil, goerr.Wrap(ErrInvalidState, "treatment is not awaiting executive approval",
			goerr.V(RiskIDKey, riskID), goerr.V("status", treatment.Status))
	}

	prev := treatment.Status
	if decision == types.ReviewDecisionApprove {
		terminal, err := model.TerminalStatusFor(treatment.Decision)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidState, err.Error(), goerr.V(RiskIDKey, riskID))
		}
		treatment.Status = terminal
		treatment.ExecutiveApprovalStatus = types.ReviewDecisionApprove
	} else {
		treatment.ClearDecision()
		treatment.Status = types.TreatmentStatusDecisionReview
	}

	updated, err := uc.repo.Treatment().UpdateIfStatus(ctx, treatment, prev)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "treatment status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	changes := map[string]model.FieldChange{
		"treatment_status": {From: prev.String(), To: updated.Status.String()},
	}
	if err := uc.syncRiskSummary(ctx, risk, updated, types.ActionSubmitExecutiveDecision, actorID, changes, note); err != nil {
		return nil, err
	}

	verdict := "approved"
	if decision == types.ReviewDecisionDecline {
		verdict = "denied"
	}
	uc.sendNotification(ctx, risk, updated.OwnerID, types.NotificationExecutiveDecided,
		fmt.Sprintf("Executive decision: %s %s", risk.HumanID, risk.Title),
		fmt.Sprintf("The executive %s the treatment decision. %s", verdict, note))

	return updated, nil
}

// MitigationUpdateInput carries one progress report against a running
// mitigation
type MitigationUpdateInput struct {
	Status        types.MitigationStatus
	Percent       int
	Note          string
	Reason        string
	Evidence      string
	NewTargetDate *time.Time

	// Residual likelihood and impact may be supplied on completion
	ResidualLikelihood types.Likelihood
	ResidualImpact     types.Impact
}

func (in *MitigationUpdateInput) validate() error {
	if !in.Status.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid mitigation status",
			goerr.V("status", in.Status))
	}
	if in.Percent < 0 || in.Percent > 100 {
		return goerr.Wrap(ErrValidation, "percent must be between 0 and 100",
			goerr.V("percent", in.Percent))
	}
	if in.Status == types.MitigationStatusCancelled && in.Reason == "" {
		return goerr.Wrap(ErrValidation, "cancellation reason is required")
	}
	if in.ResidualLikelihood != "" && !in.ResidualLikelihood.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid residual likelihood",
			goerr.V("likelihood", in.ResidualLikelihood))
	}
	if in.ResidualImpact != "" && !in.ResidualImpact.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid residual impact",
			goerr.V("impact", in.ResidualImpact))
	}
	return nil
}

// SubmitMitigationUpdate records one progress report. on_track and delayed
// stay in mitigation, cancelled resets to decision review, done completes
// the treatment and derives the residual risk level when residual inputs are
// supplied. Every report appends an immutable treatment update entry.
func (uc *TreatmentUseCase) SubmitMitigationUpdate(ctx context.Context, riskID int64, input MitigationUpdateInput, actorID types.UserID) (*model.RiskTreatment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	risk, treatment, err := uc.load(ctx, riskID)
	if err != nil {
		return nil, err
	}
	if treatment.Status != types.TreatmentStatusMitigationInProgress {
		return nil, goerr.Wrap(ErrInvalidState, "treatment is not in mitigation",
			goerr.V(RiskIDKey, riskID), goerr.V("status", treatment.Status))
	}

	next, err := model.RouteMitigationUpdate(input.Status)
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error())
	}

	treatment.MitigationStatus = input.Status
	treatment.MitigationPercent = input.Percent

	switch input.Status {
	case types.MitigationStatusDelayed:
		if input.NewTargetDate != nil {
			treatment.MitigationTargetDate = input.NewTargetDate
		}
	case types.MitigationStatusCancelled:
		// Owner starts over, same hard reset as executive denial
		treatment.ClearDecision()
		treatment.MitigationStatus = ""
		treatment.MitigationPercent = 0
	case types.MitigationStatusDone:
		treatment.MitigationPercent = 100
		if input.ResidualLikelihood != "" && input.ResidualImpact != "" {
			treatment.ResidualLikelihood = input.ResidualLikelihood
			treatment.ResidualImpact = input.ResidualImpact
			treatment.ResidualRiskLevel = types.CalculateRiskLevel(input.ResidualLikelihood, input.ResidualImpact)
		}
	}
	treatment.Status = next

	updated, err := uc.repo.Treatment().UpdateIfStatus(ctx, treatment, types.TreatmentStatusMitigationInProgress)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "treatment status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	// The fine-grained trail records every report, including the ones that
	// do not move the macro state
	if _, err := uc.repo.TreatmentUpdate().Create(ctx, &model.RiskTreatmentUpdate{
		TreatmentID:   updated.ID,
		RiskID:        risk.ID,
		OrgID:         risk.OrgID,
		Status:        input.Status,
		Percent:       input.Percent,
		Note:          input.Note,
		Reason:        input.Reason,
		Evidence:      input.Evidence,
		NewTargetDate: input.NewTargetDate,
		CreatedBy:     actorID,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to append treatment update", goerr.V(RiskIDKey, riskID))
	}

	risk.ResidualRiskLevel = updated.ResidualRiskLevel

	changes := map[string]model.FieldChange{
		"treatment_status":  {From: types.TreatmentStatusMitigationInProgress.String(), To: next.String()},
		"mitigation_status": {To: input.Status.String()},
	}
	if err := uc.syncRiskSummary(ctx, risk, updated, types.ActionSubmitMitigationUpdate, actorID, changes, input.Note); err != nil {
		return nil, err
	}

	if input.Status == types.MitigationStatusDone {
		uc.sendNotification(ctx, risk, risk.GrcSmeID, types.NotificationMitigationComplete,
			fmt.Sprintf("Mitigation complete: %s %s", risk.HumanID, risk.Title),
			fmt.Sprintf("Residual risk level: %s.", updated.ResidualRiskLevel))
	}

	return updated, nil
}

// ListUpdates returns the progress trail of a risk's treatment, oldest first
func (uc *TreatmentUseCase) ListUpdates(ctx context.Context, riskID int64) ([]*model.RiskTreatmentUpdate, error) {
	_, treatment, err := uc.load(ctx, riskID)
	if err != nil {
		return nil, err
	}
	updates, err := uc.repo.TreatmentUpdate().ListByTreatment(ctx, treatment.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list treatment updates", goerr.V(RiskIDKey, riskID))
	}
	return updates, nil
}

func (uc *TreatmentUseCase) load(ctx context.Context, riskID int64) (*model.Risk, *model.RiskTreatment, error) {
	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	treatment, err := uc.repo.Treatment().GetByRiskID(ctx, riskID)
	if err != nil {
		return nil, nil, goerr.Wrap(ErrRiskNotFound, "treatment not found", goerr.V(RiskIDKey, riskID))
	}
	return risk, treatment, nil
}

// syncRiskSummary mirrors the treatment outcome onto the risk's denormalized
// summary fields, then appends history and audit for the transition
func (uc *TreatmentUseCase) syncRiskSummary(ctx context.Context, risk *model.Risk, treatment *model.RiskTreatment, action types.WorkflowAction, actorID types.UserID, changes map[string]model.FieldChange, note string) error {
	risk.TreatmentDecision = treatment.Decision
	risk.TreatmentStatus = treatment.Status

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return goerr.Wrap(err, "failed to sync risk summary", goerr.V(RiskIDKey, risk.ID))
	}
	*risk = *updated

	if err := uc.appendHistory(ctx, risk, action, actorID, changes, note); err != nil {
		return goerr.Wrap(err, "failed to append treatment history", goerr.V(RiskIDKey, risk.ID))
	}
	uc.recordAudit(ctx, risk, action, actorID, "treatment transition", changes)

	return nil
}
