package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

func asmt(s types.AssessmentStatus) *types.AssessmentStatus { return &s }
func trt(s types.TreatmentStatus) *types.TreatmentStatus    { return &s }

func TestProjectWorkflowState(t *testing.T) {
	tests := []struct {
		name       string
		risk       types.RiskStatus
		assessment *types.AssessmentStatus
		treatment  *types.TreatmentStatus
		wantStage  types.WorkflowStage
		wantAction []types.WorkflowAction
	}{
		{
			name:       "freshly identified risk",
			risk:       types.RiskStatusIdentified,
			wantStage:  types.StageIntakeReview,
			wantAction: []types.WorkflowAction{types.ActionValidateRisk},
		},
		{
			name:      "declined at intake",
			risk:      types.RiskStatusNotARisk,
			wantStage: types.StageDeclined,
		},
		{
			name:       "validated, no assessor yet",
			risk:       types.RiskStatusActualRisk,
			wantStage:  types.StageAwaitingAssessor,
			wantAction: []types.WorkflowAction{types.ActionAssignAssessor},
		},
		{
			name:       "assessor working",
			risk:       types.RiskStatusAnalysisInProgress,
			assessment: asmt(types.AssessmentStatusAssessorAnalysis),
			wantStage:  types.StageAssessment,
			wantAction: []types.WorkflowAction{types.ActionSubmitAssessment},
		},
		{
			name:       "awaiting GRC review",
			risk:       types.RiskStatusAnalysisInProgress,
			assessment: asmt(types.AssessmentStatusGrcApproval),
			wantStage:  types.StageGrcReview,
			wantAction: []types.WorkflowAction{types.ActionReviewAssessment},
		},
		{
			name:       "sent back for revision",
			risk:       types.RiskStatusAnalysisInProgress,
			assessment: asmt(types.AssessmentStatusGrcRevision),
			wantStage:  types.StageGrcRevision,
			wantAction: []types.WorkflowAction{types.ActionSubmitGrcRevision},
		},
		{
			name:       "treatment decision pending",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusDecisionReview),
			wantStage:  types.StageTreatmentDecision,
			wantAction: []types.WorkflowAction{types.ActionSubmitTreatmentDecision},
		},
		{
			name:       "escalated, approver not yet named",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusIdentifyExecutiveApprover),
			wantStage:  types.StageIdentifyExecutive,
			wantAction: []types.WorkflowAction{types.ActionSetExecutiveApprover},
		},
		{
			name:       "awaiting executive verdict",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusExecutiveApproval),
			wantStage:  types.StageAwaitingExecutive,
			wantAction: []types.WorkflowAction{types.ActionSubmitExecutiveDecision},
		},
		{
			name:       "mitigation underway",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusMitigationInProgress),
			wantStage:  types.StageMitigation,
			wantAction: []types.WorkflowAction{types.ActionSubmitMitigationUpdate},
		},
		{
			name:       "mitigation complete",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusMitigationComplete),
			wantStage:  types.StageCompleted,
		},
		{
			name:       "accepted",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusAccepted),
			wantStage:  types.StageTreatmentFinal,
		},
		{
			name:       "auto accepted",
			risk:       types.RiskStatusAnalyzed,
			assessment: asmt(types.AssessmentStatusDone),
			treatment:  trt(types.TreatmentStatusAutoAccepted),
			wantStage:  types.StageTreatmentFinal,
		},
		{
			name:       "treatment status wins over assessment and risk",
			risk:       types.RiskStatusIdentified,
			assessment: asmt(types.AssessmentStatusAssessorAnalysis),
			treatment:  trt(types.TreatmentStatusMitigationInProgress),
			wantStage:  types.StageMitigation,
			wantAction: []types.WorkflowAction{types.ActionSubmitMitigationUpdate},
		},
		{
			name:       "assessment status wins over risk",
			risk:       types.RiskStatusIdentified,
			assessment: asmt(types.AssessmentStatusGrcApproval),
			wantStage:  types.StageGrcReview,
			wantAction: []types.WorkflowAction{types.ActionReviewAssessment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := model.ProjectWorkflowState(tt.risk, tt.assessment, tt.treatment)
			gt.Value(t, state.Stage).Equal(tt.wantStage)
			if tt.wantAction == nil {
				gt.Number(t, len(state.Actions)).Equal(0)
			} else {
				gt.Value(t, state.Actions).Equal(tt.wantAction)
			}
		})
	}
}

func TestProjectWorkflowState_Deterministic(t *testing.T) {
	first := model.ProjectWorkflowState(types.RiskStatusActualRisk, nil, nil)
	second := model.ProjectWorkflowState(types.RiskStatusActualRisk, nil, nil)
	gt.Value(t, first).Equal(second)
}

func TestFormatHumanID(t *testing.T) {
	gt.Value(t, model.FormatHumanID(1)).Equal("RISK-001")
	gt.Value(t, model.FormatHumanID(42)).Equal("RISK-042")
	gt.Value(t, model.FormatHumanID(1024)).Equal("RISK-1024")
}
