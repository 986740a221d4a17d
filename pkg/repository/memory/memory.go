package memory

import (
	"errors"

	"github.com/grclab/riskflow/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrPreconditionFailed is returned by conditional updates when the stored
// status no longer matches the expected one
var ErrPreconditionFailed = errors.New("status precondition failed")

// ErrDuplicate is returned when a sub-record that must be unique per risk
// already exists
var ErrDuplicate = errors.New("record already exists")

// Memory is an in-memory Repository for tests and local development
type Memory struct {
	risk            *riskRepository
	assessment      *assessmentRepository
	treatment       *treatmentRepository
	treatmentUpdate *treatmentUpdateRepository
	history         *historyRepository
	link            *linkRepository
	notification    *notificationRepository
	audit           *auditRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:            newRiskRepository(),
		assessment:      newAssessmentRepository(),
		treatment:       newTreatmentRepository(),
		treatmentUpdate: newTreatmentUpdateRepository(),
		history:         newHistoryRepository(),
		link:            newLinkRepository(),
		notification:    newNotificationRepository(),
		audit:           newAuditRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Assessment() interfaces.AssessmentRepository {
	return m.assessment
}

func (m *Memory) Treatment() interfaces.TreatmentRepository {
	return m.treatment
}

func (m *Memory) TreatmentUpdate() interfaces.TreatmentUpdateRepository {
	return m.treatmentUpdate
}

func (m *Memory) History() interfaces.HistoryRepository {
	return m.history
}

func (m *Memory) Link() interfaces.LinkRepository {
	return m.link
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

func (m *Memory) Close() error {
	return nil
}
