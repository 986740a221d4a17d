package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/repository/memory"
	"github.com/grclab/riskflow/pkg/usecase"
)

const testOrgID = types.OrgID("acme")

// intakeToTreatment walks a fresh risk through intake, validation, assessor
// assignment, assessment and GRC approval, leaving it with an open treatment
// in decision review at the risk level produced by the given likelihood and
// impact.
func intakeToTreatment(t *testing.T, uc *usecase.UseCases, likelihood types.Likelihood, impact types.Impact) *model.Risk {
	t.Helper()
	ctx := context.Background()

	risk, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
		Title:           "Unencrypted backups in cold storage",
		Description:     "Offsite backup tapes are not encrypted at rest",
		Source:          "internal-audit",
		InitialSeverity: types.RiskLevelHigh,
	}, "reporter-1")
	gt.NoError(t, err).Required()
	gt.V(t, risk.Status).Equal(types.RiskStatusIdentified)

	risk, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionApprove, "sme-1", "")
	gt.NoError(t, err).Required()
	gt.V(t, risk.Status).Equal(types.RiskStatusActualRisk)

	_, err = uc.Assessment.AssignAssessor(ctx, risk.ID, "assessor-1", "sme-1")
	gt.NoError(t, err).Required()

	_, err = uc.Assessment.SubmitAssessment(ctx, risk.ID, usecase.AssessmentInput{
		Likelihood:         likelihood,
		Impact:             impact,
		Narrative:          "Exposure confirmed by tape inventory review",
		RecommendedOwnerID: "owner-1",
		AssetIDs:           []string{"asset-backup-tapes"},
		Controls: []usecase.ControlLinkInput{
			{ControlID: "ctrl-encryption", Effectiveness: "ineffective"},
		},
	}, "assessor-1")
	gt.NoError(t, err).Required()

	assessment, err := uc.Assessment.ReviewAssessment(ctx, risk.ID, types.ReviewDecisionApprove, "", "sme-1")
	gt.NoError(t, err).Required()
	gt.V(t, assessment.Status).Equal(types.AssessmentStatusDone)

	risk, err = uc.Risk.Get(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, risk.Status).Equal(types.RiskStatusAnalyzed)
	gt.V(t, risk.RiskOwnerID).Equal(types.UserID("owner-1"))

	return risk
}

// High-severity acceptance must escalate to an executive and land on the
// accepted terminal status once approved
func TestAcceptHighRiskRequiresExecutiveApproval(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	// likely x major lands in the high band
	risk := intakeToTreatment(t, uc, types.LikelihoodLikely, types.ImpactMajor)
	gt.V(t, risk.InherentRiskLevel).Equal(types.RiskLevelHigh)

	treatment, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:            types.TreatmentDecisionAccept,
		Justification:       "Compensating physical controls in place",
		AcceptanceRationale: "Cost of re-encryption exceeds exposure",
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusIdentifyExecutiveApprover)
	gt.B(t, treatment.ExecutiveApprovalRequired).True()

	treatment, err = uc.Treatment.SetExecutiveApprover(ctx, risk.ID, "cto-1", "sme-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusExecutiveApproval)
	gt.V(t, treatment.ExecutiveApproverID).Equal(types.UserID("cto-1"))

	treatment, err = uc.Treatment.SubmitExecutiveDecision(ctx, risk.ID, types.ReviewDecisionApprove, "", "cto-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusAccepted)
	gt.B(t, treatment.Status.IsTerminal()).True()

	risk, err = uc.Risk.Get(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, risk.TreatmentStatus).Equal(types.TreatmentStatusAccepted)
}

// Mitigation proceeds directly at every severity and completion derives the
// residual risk level
func TestMitigateHighRiskToCompletion(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodLikely, types.ImpactMajor)
	gt.V(t, risk.InherentRiskLevel).Equal(types.RiskLevelHigh)

	target := time.Now().UTC().AddDate(0, 3, 0)
	treatment, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:             types.TreatmentDecisionMitigate,
		Justification:        "Encrypt all backup media",
		MitigationPlan:       "Roll out LTO hardware encryption across the tape pool",
		MitigationTargetDate: &target,
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusMitigationInProgress)
	gt.B(t, treatment.ExecutiveApprovalRequired).False()

	treatment, err = uc.Treatment.SubmitMitigationUpdate(ctx, risk.ID, usecase.MitigationUpdateInput{
		Status:             types.MitigationStatusDone,
		Percent:            100,
		Evidence:           "All tapes re-encrypted, verified by audit sample",
		ResidualLikelihood: types.LikelihoodRare,
		ResidualImpact:     types.ImpactMinor,
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusMitigationComplete)
	gt.V(t, treatment.ResidualRiskLevel).Equal(types.RiskLevelVeryLow)
	gt.V(t, treatment.MitigationPercent).Equal(100)

	risk, err = uc.Risk.Get(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, risk.ResidualRiskLevel).Equal(types.RiskLevelVeryLow)
}

// Low-severity risks never escalate regardless of the chosen decision
func TestTransferLowRiskAutoAccepts(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	// unlikely x minor lands in the low band
	risk := intakeToTreatment(t, uc, types.LikelihoodUnlikely, types.ImpactMinor)
	gt.V(t, risk.InherentRiskLevel).Equal(types.RiskLevelLow)

	treatment, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:       types.TreatmentDecisionTransfer,
		Justification:  "Covered by cyber insurance",
		TransferTarget: "insurer-x",
		TransferCost:   "12000 USD/yr",
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusAutoAccepted)
	gt.B(t, treatment.ExecutiveApprovalRequired).False()
}

// A declined assessment loops inside the assessment sub-state; the revision
// completes without a second approval round
func TestGrcDeclineAndRevision(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
		Title: "Third-party API without contract",
	}, "reporter-1")
	gt.NoError(t, err).Required()

	_, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionApprove, "sme-1", "")
	gt.NoError(t, err).Required()
	_, err = uc.Assessment.AssignAssessor(ctx, risk.ID, "assessor-1", "sme-1")
	gt.NoError(t, err).Required()
	_, err = uc.Assessment.SubmitAssessment(ctx, risk.ID, usecase.AssessmentInput{
		Likelihood:         types.LikelihoodPossible,
		Impact:             types.ImpactModerate,
		RecommendedOwnerID: "owner-1",
	}, "assessor-1")
	gt.NoError(t, err).Required()

	assessment, err := uc.Assessment.ReviewAssessment(ctx, risk.ID, types.ReviewDecisionDecline,
		"Impact understates regulatory exposure", "sme-1")
	gt.NoError(t, err).Required()
	gt.V(t, assessment.Status).Equal(types.AssessmentStatusGrcRevision)
	gt.V(t, assessment.DeclineReason).Equal("Impact understates regulatory exposure")

	// The risk record is untouched by the assessment loop
	risk, err = uc.Risk.Get(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, risk.Status).Equal(types.RiskStatusAnalysisInProgress)

	assessment, err = uc.Assessment.SubmitGrcRevision(ctx, risk.ID, usecase.AssessmentInput{
		Likelihood:         types.LikelihoodPossible,
		Impact:             types.ImpactMajor,
		RecommendedOwnerID: "owner-1",
	}, "assessor-1")
	gt.NoError(t, err).Required()
	gt.V(t, assessment.Status).Equal(types.AssessmentStatusDone)

	// Treatment opened directly after the trusted revision pass
	state, err := uc.Workflow.GetState(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, state.Stage).Equal(types.StageTreatmentDecision)
}

// Executive denial is a hard reset: decision cleared, back to decision review
func TestExecutiveDenialClearsDecision(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodAlmostCertain, types.ImpactSevere)
	gt.V(t, risk.InherentRiskLevel).Equal(types.RiskLevelVeryHigh)

	_, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:            types.TreatmentDecisionAccept,
		AcceptanceRationale: "Accept until next budget cycle",
	}, "owner-1")
	gt.NoError(t, err).Required()
	_, err = uc.Treatment.SetExecutiveApprover(ctx, risk.ID, "cto-1", "sme-1")
	gt.NoError(t, err).Required()

	treatment, err := uc.Treatment.SubmitExecutiveDecision(ctx, risk.ID, types.ReviewDecisionDecline,
		"Acceptance at this severity is not acceptable", "cto-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusDecisionReview)
	gt.V(t, treatment.Decision).Equal(types.TreatmentDecision(""))
	gt.B(t, treatment.ExecutiveApprovalRequired).False()
	gt.V(t, treatment.ExecutiveApproverID).Equal(types.UserID(""))

	// The owner can decide again after the reset
	treatment, err = uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:       types.TreatmentDecisionMitigate,
		MitigationPlan: "Fund the remediation now",
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusMitigationInProgress)
}

// Mitigation cancellation mirrors the executive-denial reset
func TestMitigationCancellationResetsDecision(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodPossible, types.ImpactModerate)

	_, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:       types.TreatmentDecisionMitigate,
		MitigationPlan: "Replace the vendor",
	}, "owner-1")
	gt.NoError(t, err).Required()

	treatment, err := uc.Treatment.SubmitMitigationUpdate(ctx, risk.ID, usecase.MitigationUpdateInput{
		Status: types.MitigationStatusCancelled,
		Reason: "Vendor replacement fell through",
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusDecisionReview)
	gt.V(t, treatment.Decision).Equal(types.TreatmentDecision(""))

	// The cancellation is still on the fine-grained trail
	updates, err := uc.Treatment.ListUpdates(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.A(t, updates).Length(1)
	gt.V(t, updates[0].Status).Equal(types.MitigationStatusCancelled)
	gt.V(t, updates[0].Reason).Equal("Vendor replacement fell through")
}

// Delay reports update the target date without moving the macro state
func TestMitigationDelayKeepsState(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodPossible, types.ImpactModerate)

	_, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:       types.TreatmentDecisionMitigate,
		MitigationPlan: "Patch rollout",
	}, "owner-1")
	gt.NoError(t, err).Required()

	newTarget := time.Now().UTC().AddDate(0, 1, 0)
	treatment, err := uc.Treatment.SubmitMitigationUpdate(ctx, risk.ID, usecase.MitigationUpdateInput{
		Status:        types.MitigationStatusDelayed,
		Percent:       40,
		Reason:        "Change freeze in December",
		NewTargetDate: &newTarget,
	}, "owner-1")
	gt.NoError(t, err).Required()
	gt.V(t, treatment.Status).Equal(types.TreatmentStatusMitigationInProgress)
	gt.V(t, treatment.MitigationPercent).Equal(40)
	gt.V(t, *treatment.MitigationTargetDate).Equal(newTarget)

	// More reports keep appending to the trail
	_, err = uc.Treatment.SubmitMitigationUpdate(ctx, risk.ID, usecase.MitigationUpdateInput{
		Status:  types.MitigationStatusOnTrack,
		Percent: 70,
	}, "owner-1")
	gt.NoError(t, err).Required()

	updates, err := uc.Treatment.ListUpdates(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.A(t, updates).Length(2)
}
