package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/repository/memory"
	"github.com/grclab/riskflow/pkg/usecase"
)

func TestValidateRequiresIdentifiedStatus(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
		Title: "Expired TLS certificates",
	}, "reporter-1")
	gt.NoError(t, err).Required()

	_, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionApprove, "sme-1", "")
	gt.NoError(t, err).Required()

	// Re-validating an already-validated risk reports not-found, hiding
	// whether the record exists in another state
	_, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionApprove, "sme-1", "")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrRiskNotFound)).True()

	// The record is unchanged by the failed attempt
	stored, err := uc.Risk.Get(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, stored.Status).Equal(types.RiskStatusActualRisk)
}

func TestValidateMissingRiskReportsNotFound(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	_, err := uc.Risk.ValidateRisk(ctx, 42, types.ReviewDecisionApprove, "sme-1", "")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrRiskNotFound)).True()
}

func TestDeclinedIntakeIsTerminal(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
		Title: "Duplicate report of known issue",
	}, "reporter-1")
	gt.NoError(t, err).Required()

	risk, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionDecline, "sme-1", "tracked as RISK-001")
	gt.NoError(t, err).Required()
	gt.V(t, risk.Status).Equal(types.RiskStatusNotARisk)
	gt.B(t, risk.Status.IsTerminal()).True()

	// No assessor can be assigned to a declined risk
	_, err = uc.Assessment.AssignAssessor(ctx, risk.ID, "assessor-1", "sme-1")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrRiskNotFound)).True()

	state, err := uc.Workflow.GetState(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, state.Stage).Equal(types.StageDeclined)
	gt.A(t, state.Actions).Length(0)
}

func TestDoubleTreatmentDecisionFails(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodPossible, types.ImpactModerate)

	first, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:       types.TreatmentDecisionMitigate,
		MitigationPlan: "Harden the perimeter",
	}, "owner-1")
	gt.NoError(t, err).Required()

	// Repeating the transition fails instead of double-applying
	_, err = uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:            types.TreatmentDecisionAccept,
		AcceptanceRationale: "Changed my mind",
	}, "owner-1")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrInvalidState)).True()

	state, err := uc.Workflow.GetState(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.V(t, state.Stage).Equal(types.StageMitigation)
	_ = first
}

func TestMitigationUpdateRequiresMitigationInProgress(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodPossible, types.ImpactModerate)

	// Still in decision review, no mitigation running
	_, err := uc.Treatment.SubmitMitigationUpdate(ctx, risk.ID, usecase.MitigationUpdateInput{
		Status:  types.MitigationStatusOnTrack,
		Percent: 10,
	}, "owner-1")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrInvalidState)).True()

	// No trail entry was written by the failed attempt
	updates, err := uc.Treatment.ListUpdates(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.A(t, updates).Length(0)
}

func TestSetApproverRequiresEscalation(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk := intakeToTreatment(t, uc, types.LikelihoodUnlikely, types.ImpactMinor)

	// Low severity auto-accepts; there is no approver step to perform
	_, err := uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:            types.TreatmentDecisionAccept,
		AcceptanceRationale: "Negligible exposure",
	}, "owner-1")
	gt.NoError(t, err).Required()

	_, err = uc.Treatment.SetExecutiveApprover(ctx, risk.ID, "cto-1", "sme-1")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrInvalidState)).True()
}

// After N successful transitions exactly N history entries exist
func TestHistoryAppendOnly(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
		Title: "Orphaned admin accounts",
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
	_, err = uc.Assessment.ReviewAssessment(ctx, risk.ID, types.ReviewDecisionApprove, "", "sme-1")
	gt.NoError(t, err).Required()

	// 5 transitions so far: intake, validate, assign, submit, review
	entries, err := uc.Risk.ListHistory(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.A(t, entries).Length(5)

	// A failed transition adds nothing
	_, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionApprove, "sme-1", "")
	gt.Error(t, err)

	entries, err = uc.Risk.ListHistory(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.A(t, entries).Length(5)
}

func TestIntakeValidation(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	t.Run("missing title", func(t *testing.T) {
		_, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{}, "reporter-1")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("missing reporter", func(t *testing.T) {
		_, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{Title: "x"}, "")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("malformed org", func(t *testing.T) {
		_, err := uc.Risk.SubmitIntake(ctx, "Not Valid!", usecase.IntakeInput{Title: "x"}, "reporter-1")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("invalid severity", func(t *testing.T) {
		_, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
			Title:           "x",
			InitialSeverity: "critical",
		}, "reporter-1")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("sequential human IDs", func(t *testing.T) {
		first, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{Title: "a"}, "reporter-1")
		gt.NoError(t, err).Required()
		second, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{Title: "b"}, "reporter-1")
		gt.NoError(t, err).Required()
		gt.V(t, first.HumanID).NotEqual(second.HumanID)
	})
}

// Stage projection follows the risk across its whole lifecycle
func TestWorkflowStateProjection(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	risk, err := uc.Risk.SubmitIntake(ctx, testOrgID, usecase.IntakeInput{
		Title: "Unreviewed firewall rules",
	}, "reporter-1")
	gt.NoError(t, err).Required()

	assertStage := func(stage types.WorkflowStage, action types.WorkflowAction) {
		t.Helper()
		state, err := uc.Workflow.GetState(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.V(t, state.Stage).Equal(stage)
		if action != "" {
			gt.A(t, state.Actions).Length(1)
			gt.V(t, state.Actions[0]).Equal(action)
		}
	}

	assertStage(types.StageIntakeReview, types.ActionValidateRisk)

	_, err = uc.Risk.ValidateRisk(ctx, risk.ID, types.ReviewDecisionApprove, "sme-1", "")
	gt.NoError(t, err).Required()
	assertStage(types.StageAwaitingAssessor, types.ActionAssignAssessor)

	_, err = uc.Assessment.AssignAssessor(ctx, risk.ID, "assessor-1", "sme-1")
	gt.NoError(t, err).Required()
	assertStage(types.StageAssessment, types.ActionSubmitAssessment)

	_, err = uc.Assessment.SubmitAssessment(ctx, risk.ID, usecase.AssessmentInput{
		Likelihood:         types.LikelihoodLikely,
		Impact:             types.ImpactMajor,
		RecommendedOwnerID: "owner-1",
	}, "assessor-1")
	gt.NoError(t, err).Required()
	assertStage(types.StageGrcReview, types.ActionReviewAssessment)

	_, err = uc.Assessment.ReviewAssessment(ctx, risk.ID, types.ReviewDecisionApprove, "", "sme-1")
	gt.NoError(t, err).Required()
	assertStage(types.StageTreatmentDecision, types.ActionSubmitTreatmentDecision)

	_, err = uc.Treatment.SubmitTreatmentDecision(ctx, risk.ID, usecase.TreatmentDecisionInput{
		Decision:            types.TreatmentDecisionAccept,
		AcceptanceRationale: "rationale",
	}, "owner-1")
	gt.NoError(t, err).Required()
	assertStage(types.StageIdentifyExecutive, types.ActionSetExecutiveApprover)

	_, err = uc.Treatment.SetExecutiveApprover(ctx, risk.ID, "cto-1", "sme-1")
	gt.NoError(t, err).Required()
	assertStage(types.StageAwaitingExecutive, types.ActionSubmitExecutiveDecision)

	_, err = uc.Treatment.SubmitExecutiveDecision(ctx, risk.ID, types.ReviewDecisionApprove, "", "cto-1")
	gt.NoError(t, err).Required()
	assertStage(types.StageTreatmentFinal, "")
}
