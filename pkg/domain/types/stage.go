package types

// WorkflowStage is the read-side stage label derived from the risk,
// assessment and treatment statuses. The set is closed; the projection in
// the model package maps every reachable status combination onto exactly
// one stage.
type WorkflowStage string

const (
	StageIntakeReview       WorkflowStage = "intake_review"
	StageAwaitingAssessor   WorkflowStage = "awaiting_assessor"
	StageAssessment         WorkflowStage = "assessment"
	StageGrcReview          WorkflowStage = "grc_review"
	StageGrcRevision        WorkflowStage = "grc_revision"
	StageTreatmentDecision  WorkflowStage = "treatment_decision"
	StageIdentifyExecutive  WorkflowStage = "identify_executive"
	StageAwaitingExecutive  WorkflowStage = "awaiting_executive_approval"
	StageMitigation         WorkflowStage = "mitigation_in_progress"
	StageTreatmentFinal     WorkflowStage = "treatment_final"
	StageCompleted          WorkflowStage = "completed"
	StageDeclined           WorkflowStage = "declined"
)

// String returns the string representation of the workflow stage
func (s WorkflowStage) String() string {
	return string(s)
}

// WorkflowAction names a workflow operation an actor may invoke. Used by the
// stage projection to report which operations are currently permitted, and by
// history/audit entries to record what happened.
type WorkflowAction string

const (
	ActionSubmitIntake            WorkflowAction = "submit_intake"
	ActionValidateRisk            WorkflowAction = "validate_risk"
	ActionAssignAssessor          WorkflowAction = "assign_assessor"
	ActionSubmitAssessment        WorkflowAction = "submit_assessment"
	ActionReviewAssessment        WorkflowAction = "review_assessment"
	ActionSubmitGrcRevision       WorkflowAction = "submit_grc_revision"
	ActionSubmitTreatmentDecision WorkflowAction = "submit_treatment_decision"
	ActionSetExecutiveApprover    WorkflowAction = "set_executive_approver"
	ActionSubmitExecutiveDecision WorkflowAction = "submit_executive_decision"
	ActionSubmitMitigationUpdate  WorkflowAction = "submit_mitigation_update"
)

// String returns the string representation of the workflow action
func (a WorkflowAction) String() string {
	return string(a)
}
