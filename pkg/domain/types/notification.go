package types

// NotificationType categorizes workflow notifications by the event that
// produced them
type NotificationType string

const (
	NotificationRiskValidated      NotificationType = "risk_validated"
	NotificationRiskDeclined       NotificationType = "risk_declined"
	NotificationAssessorAssigned   NotificationType = "assessor_assigned"
	NotificationAssessmentReview   NotificationType = "assessment_review"
	NotificationAssessmentDeclined NotificationType = "assessment_declined"
	NotificationTreatmentReady     NotificationType = "treatment_ready"
	NotificationEscalationRequired NotificationType = "escalation_required"
	NotificationApproverAssigned   NotificationType = "approver_assigned"
	NotificationExecutiveDecided   NotificationType = "executive_decided"
	NotificationMitigationComplete NotificationType = "mitigation_complete"
	NotificationAcceptanceExpired  NotificationType = "acceptance_expired"
)

// String returns the string representation of the notification type
func (n NotificationType) String() string {
	return string(n)
}
