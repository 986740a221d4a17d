package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Assessment() AssessmentRepository
	Treatment() TreatmentRepository
	TreatmentUpdate() TreatmentUpdateRepository
	History() HistoryRepository
	Link() LinkRepository
	Notification() NotificationRepository
	Audit() AuditRepository

	Close() error
}
