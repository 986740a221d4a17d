package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// AssessmentUseCase drives the analysis sub-workflow: assessor assignment,
// submission, GRC review and the single revision pass
type AssessmentUseCase struct {
	deps
}

// ControlLinkInput ties a control to the risk with the assessor's
// effectiveness judgment
type ControlLinkInput struct {
	ControlID     string
	Effectiveness string
}

// AssessmentInput carries the assessor-supplied analysis fields
type AssessmentInput struct {
	Likelihood         types.Likelihood
	Impact             types.Impact
	Narrative          string
	RecommendedOwnerID types.UserID
	AssetIDs           []string
	Controls           []ControlLinkInput
	ScenarioIDs        []string
}

func (in *AssessmentInput) validate() error {
	if !in.Likelihood.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid likelihood", goerr.V("likelihood", in.Likelihood))
	}
	if !in.Impact.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid impact", goerr.V("impact", in.Impact))
	}
	if in.RecommendedOwnerID == "" {
		return goerr.Wrap(ErrValidation, "recommended owner is required")
	}
	return nil
}

// AssignAssessor assigns a risk assessor to a validated risk. Creates the
// assessment sub-record and moves the risk into analysis.
func (uc *AssessmentUseCase) AssignAssessor(ctx context.Context, riskID int64, assessorID types.UserID, actorID types.UserID) (*model.RiskAssessment, error) {
	if assessorID == "" {
		return nil, goerr.Wrap(ErrValidation, "assessor is required")
	}

	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	if risk.Status != types.RiskStatusActualRisk {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	assessment, err := uc.repo.Assessment().Create(ctx, &model.RiskAssessment{
		RiskID: risk.ID,
		OrgID:  risk.OrgID,
		Status: types.AssessmentStatusAssessorAnalysis,
	})
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "assessment already exists",
			goerr.V(RiskIDKey, riskID))
	}

	risk.Status = types.RiskStatusAnalysisInProgress
	risk.RiskAssessorID = assessorID
	updated, err := uc.repo.Risk().UpdateIfStatus(ctx, risk, types.RiskStatusActualRisk)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "risk status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	changes := map[string]model.FieldChange{
		"status": {From: types.RiskStatusActualRisk.String(), To: types.RiskStatusAnalysisInProgress.String()},
	}
	if err := uc.appendHistory(ctx, updated, types.ActionAssignAssessor, actorID, changes, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to append assignment history", goerr.V(RiskIDKey, riskID))
	}

	uc.recordAudit(ctx, updated, types.ActionAssignAssessor, actorID, "assessor assigned", changes)
	uc.sendNotification(ctx, updated, assessorID, types.NotificationAssessorAssigned,
		fmt.Sprintf("Assessment assigned: %s %s", updated.HumanID, updated.Title),
		"You have been assigned to analyze this risk.")

	return assessment, nil
}

// SubmitAssessment stores the assessor's analysis. The risk level is derived
// from likelihood and impact, linked assets and controls are replaced
// wholesale, and the assessment moves to GRC approval.
func (uc *AssessmentUseCase) SubmitAssessment(ctx context.Context, riskID int64, input AssessmentInput, actorID types.UserID) (*model.RiskAssessment, error) {
	return uc.submit(ctx, riskID, input, actorID, types.AssessmentStatusAssessorAnalysis)
}

// SubmitGrcRevision re-submits a declined assessment with corrected values.
// The single revision pass is trusted: it completes the assessment directly
// without a second approval round, and treatment begins.
func (uc *AssessmentUseCase) SubmitGrcRevision(ctx context.Context, riskID int64, input AssessmentInput, actorID types.UserID) (*model.RiskAssessment, error) {
	return uc.submit(ctx, riskID, input, actorID, types.AssessmentStatusGrcRevision)
}

func (uc *AssessmentUseCase) submit(ctx context.Context, riskID int64, input AssessmentInput, actorID types.UserID, from types.AssessmentStatus) (*model.RiskAssessment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	assessment, err := uc.repo.Assessment().GetByRiskID(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "assessment not found", goerr.V(RiskIDKey, riskID))
	}
	if assessment.Status != from {
		return nil, goerr.Wrap(ErrInvalidState, "assessment is not awaiting submission",
			goerr.V(RiskIDKey, riskID), goerr.V("status", assessment.Status))
	}

	now := time.Now().UTC()
	assessment.Likelihood = input.Likelihood
	assessment.Impact = input.Impact
	assessment.CalculatedRiskLevel = types.CalculateRiskLevel(input.Likelihood, input.Impact)
	assessment.Narrative = input.Narrative
	assessment.RecommendedOwnerID = input.RecommendedOwnerID
	assessment.SubmittedAt = &now

	action := types.ActionSubmitAssessment
	if from == types.AssessmentStatusGrcRevision {
		// Revision completes without a second approval round
		action = types.ActionSubmitGrcRevision
		assessment.Status = types.AssessmentStatusDone
		assessment.CompletedAt = &now
	} else {
		assessment.Status = types.AssessmentStatusGrcApproval
	}

	updated, err := uc.repo.Assessment().UpdateIfStatus(ctx, assessment, from)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "assessment status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	if err := uc.replaceLinks(ctx, risk, input); err != nil {
		return nil, err
	}

	changes := map[string]model.FieldChange{
		"assessment_status": {From: from.String(), To: updated.Status.String()},
		"calculated_risk_level": {
			To: updated.CalculatedRiskLevel.String(),
		},
	}
	if err := uc.appendHistory(ctx, risk, action, actorID, changes, input.Narrative); err != nil {
		return nil, goerr.Wrap(err, "failed to append assessment history", goerr.V(RiskIDKey, riskID))
	}
	uc.recordAudit(ctx, risk, action, actorID, "assessment submitted", changes)

	if from == types.AssessmentStatusGrcRevision {
		// Completion creates the treatment immediately
		if _, err := uc.startTreatment(ctx, risk, updated, actorID); err != nil {
			return nil, err
		}
	} else {
		uc.sendNotification(ctx, risk, risk.GrcSmeID, types.NotificationAssessmentReview,
			fmt.Sprintf("Assessment ready for review: %s %s", risk.HumanID, risk.Title),
			fmt.Sprintf("Calculated risk level: %s. Review the analysis and approve or decline.", updated.CalculatedRiskLevel))
	}

	return updated, nil
}

func (uc *AssessmentUseCase) replaceLinks(ctx context.Context, risk *model.Risk, input AssessmentInput) error {
	assets := make([]model.AssetLink, len(input.AssetIDs))
	for i, id := range input.AssetIDs {
		assets[i] = model.AssetLink{RiskID: risk.ID, OrgID: risk.OrgID, AssetID: id}
	}
	if err := uc.repo.Link().ReplaceAssets(ctx, risk.ID, assets); err != nil {
		return goerr.Wrap(err, "failed to replace asset links", goerr.V(RiskIDKey, risk.ID))
	}

	controls := make([]model.ControlLink, len(input.Controls))
	for i, c := range input.Controls {
		controls[i] = model.ControlLink{
			RiskID:        risk.ID,
			OrgID:         risk.OrgID,
			ControlID:     c.ControlID,
			Effectiveness: c.Effectiveness,
		}
	}
	if err := uc.repo.Link().ReplaceControls(ctx, risk.ID, controls); err != nil {
		return goerr.Wrap(err, "failed to replace control links", goerr.V(RiskIDKey, risk.ID))
	}

	scenarios := make([]model.ScenarioLink, len(input.ScenarioIDs))
	for i, id := range input.ScenarioIDs {
		scenarios[i] = model.ScenarioLink{RiskID: risk.ID, OrgID: risk.OrgID, ScenarioID: id}
	}
	if err := uc.repo.Link().ReplaceScenarios(ctx, risk.ID, scenarios); err != nil {
		return goerr.Wrap(err, "failed to replace scenario links", goerr.V(RiskIDKey, risk.ID))
	}

	return nil
}

// ReviewAssessment is the GRC verdict on a submitted assessment. Approval
// completes the assessment and opens treatment; decline sends it back to the
// assessor with a reason, leaving the risk record untouched.
func (uc *AssessmentUseCase) ReviewAssessment(ctx context.Context, riskID int64, decision types.ReviewDecision, reason string, actorID types.UserID) (*model.RiskAssessment, error) {
	if !decision.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "invalid review decision",
			goerr.V("decision", decision))
	}
	if decision == types.ReviewDecisionDecline && reason == "" {
		return nil, goerr.Wrap(ErrValidation, "decline reason is required")
	}

	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}
	assessment, err := uc.repo.Assessment().GetByRiskID(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "assessment not found", goerr.V(RiskIDKey, riskID))
	}
	if assessment.Status != types.AssessmentStatusGrcApproval {
		return nil, goerr.Wrap(ErrInvalidState, "assessment is not awaiting review",
			goerr.V(RiskIDKey, riskID), goerr.V("status", assessment.Status))
	}

	now := time.Now().UTC()

	if decision == types.ReviewDecisionDecline {
		assessment.Status = types.AssessmentStatusGrcRevision
		assessment.DeclineReason = reason

		updated, err := uc.repo.Assessment().UpdateIfStatus(ctx, assessment, types.AssessmentStatusGrcApproval)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidState, "assessment status changed concurrently",
				goerr.V(RiskIDKey, riskID))
		}

		changes := map[string]model.FieldChange{
			"assessment_status": {From: types.AssessmentStatusGrcApproval.String(), To: types.AssessmentStatusGrcRevision.String()},
		}
		if err := uc.appendHistory(ctx, risk, types.ActionReviewAssessment, actorID, changes, reason); err != nil {
			return nil, goerr.Wrap(err, "failed to append review history", goerr.V(RiskIDKey, riskID))
		}
		uc.recordAudit(ctx, risk, types.ActionReviewAssessment, actorID, "assessment declined", changes)
		uc.sendNotification(ctx, risk, risk.RiskAssessorID, types.NotificationAssessmentDeclined,
			fmt.Sprintf("Assessment needs revision: %s %s", risk.HumanID, risk.Title),
			reason)

		return updated, nil
	}

	assessment.Status = types.AssessmentStatusDone
	assessment.ApprovedAt = &now
	assessment.CompletedAt = &now

	updated, err := uc.repo.Assessment().UpdateIfStatus(ctx, assessment, types.AssessmentStatusGrcApproval)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "assessment status changed concurrently",
			goerr.V(RiskIDKey, riskID))
	}

	changes := map[string]model.FieldChange{
		"assessment_status": {From: types.AssessmentStatusGrcApproval.String(), To: types.AssessmentStatusDone.String()},
	}
	if err := uc.appendHistory(ctx, risk, types.ActionReviewAssessment, actorID, changes, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to append review history", goerr.V(RiskIDKey, riskID))
	}
	uc.recordAudit(ctx, risk, types.ActionReviewAssessment, actorID, "assessment approved", changes)

	if _, err := uc.startTreatment(ctx, risk, updated, actorID); err != nil {
		return nil, err
	}

	return updated, nil
}

// startTreatment advances the risk to analyzed and opens the treatment
// sub-record owned by the assessment's recommended owner
func (uc *AssessmentUseCase) startTreatment(ctx context.Context, risk *model.Risk, assessment *model.RiskAssessment, actorID types.UserID) (*model.RiskTreatment, error) {
	prev := risk.Status
	risk.Status = types.RiskStatusAnalyzed
	risk.InherentRiskLevel = assessment.CalculatedRiskLevel
	risk.RiskOwnerID = assessment.RecommendedOwnerID
	risk.TreatmentStatus = types.TreatmentStatusDecisionReview

	updated, err := uc.repo.Risk().UpdateIfStatus(ctx, risk, prev)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "risk status changed concurrently",
			goerr.V(RiskIDKey, risk.ID))
	}

	treatment, err := uc.repo.Treatment().Create(ctx, &model.RiskTreatment{
		RiskID:  risk.ID,
		OrgID:   risk.OrgID,
		Status:  types.TreatmentStatusDecisionReview,
		OwnerID: assessment.RecommendedOwnerID,
	})
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidState, "treatment already exists",
			goerr.V(RiskIDKey, risk.ID))
	}

	uc.sendNotification(ctx, updated, treatment.OwnerID, types.NotificationTreatmentReady,
		fmt.Sprintf("Treatment decision needed: %s %s", updated.HumanID, updated.Title),
		fmt.Sprintf("You own this %s risk. Choose how to treat it: mitigate, accept, transfer or avoid.", updated.InherentRiskLevel))

	return treatment, nil
}
