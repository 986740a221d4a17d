package model

import "github.com/grclab/riskflow/pkg/domain/types"

// WorkflowState is the read-side projection of where a risk sits in its
// lifecycle: one stage label plus the operations currently permitted.
type WorkflowState struct {
	Stage   types.WorkflowStage
	Actions []types.WorkflowAction
}

// stageActions maps every stage onto the operations permitted in it. Stages
// absent from the map accept no workflow operations.
var stageActions = map[types.WorkflowStage][]types.WorkflowAction{
	types.StageIntakeReview:      {types.ActionValidateRisk},
	types.StageAwaitingAssessor:  {types.ActionAssignAssessor},
	types.StageAssessment:        {types.ActionSubmitAssessment},
	types.StageGrcReview:         {types.ActionReviewAssessment},
	types.StageGrcRevision:       {types.ActionSubmitGrcRevision},
	types.StageTreatmentDecision: {types.ActionSubmitTreatmentDecision},
	types.StageIdentifyExecutive: {types.ActionSetExecutiveApprover},
	types.StageAwaitingExecutive: {types.ActionSubmitExecutiveDecision},
	types.StageMitigation:        {types.ActionSubmitMitigationUpdate},
}

// ProjectWorkflowState derives the current stage from the three status
// fields. The most downstream sub-record wins: treatment status over
// assessment status over the risk's own status, because it reflects true
// pipeline position.
func ProjectWorkflowState(riskStatus types.RiskStatus, assessment *types.AssessmentStatus, treatment *types.TreatmentStatus) WorkflowState {
	stage := projectStage(riskStatus, assessment, treatment)
	return WorkflowState{
		Stage:   stage,
		Actions: stageActions[stage],
	}
}

func projectStage(riskStatus types.RiskStatus, assessment *types.AssessmentStatus, treatment *types.TreatmentStatus) types.WorkflowStage {
	if treatment != nil {
		switch *treatment {
		case types.TreatmentStatusDecisionReview:
			return types.StageTreatmentDecision
		case types.TreatmentStatusIdentifyExecutiveApprover:
			return types.StageIdentifyExecutive
		case types.TreatmentStatusExecutiveApproval:
			return types.StageAwaitingExecutive
		case types.TreatmentStatusMitigationInProgress:
			return types.StageMitigation
		case types.TreatmentStatusMitigationComplete:
			return types.StageCompleted
		case types.TreatmentStatusAccepted,
			types.TreatmentStatusTransferred,
			types.TreatmentStatusAvoided,
			types.TreatmentStatusAutoAccepted:
			return types.StageTreatmentFinal
		}
	}

	if assessment != nil {
		switch *assessment {
		case types.AssessmentStatusAssessorAnalysis:
			return types.StageAssessment
		case types.AssessmentStatusGrcApproval:
			return types.StageGrcReview
		case types.AssessmentStatusGrcRevision:
			return types.StageGrcRevision
		case types.AssessmentStatusDone:
			// A done assessment without a treatment record should not occur;
			// report the next step the workflow will take.
			return types.StageTreatmentDecision
		}
	}

	switch riskStatus {
	case types.RiskStatusIdentified:
		return types.StageIntakeReview
	case types.RiskStatusNotARisk:
		return types.StageDeclined
	case types.RiskStatusActualRisk:
		return types.StageAwaitingAssessor
	case types.RiskStatusAnalysisInProgress:
		return types.StageAssessment
	case types.RiskStatusAnalyzed:
		return types.StageTreatmentDecision
	default:
		return types.StageIntakeReview
	}
}
