package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
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

type Firestore struct {
	client          *firestore.Client
	risk            *riskRepository
	assessment      *assessmentRepository
	treatment       *treatmentRepository
	treatmentUpdate *treatmentUpdateRepository
	history         *historyRepository
	link            *linkRepository
	notification    *notificationRepository
	audit           *auditRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes all collection names, used to isolate test
// runs against a shared project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.risk.collectionPrefix = prefix
		f.assessment.collectionPrefix = prefix
		f.treatment.collectionPrefix = prefix
		f.treatmentUpdate.collectionPrefix = prefix
		f.history.collectionPrefix = prefix
		f.link.collectionPrefix = prefix
		f.notification.collectionPrefix = prefix
		f.audit.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:          client,
		risk:            newRiskRepository(client),
		assessment:      newAssessmentRepository(client),
		treatment:       newTreatmentRepository(client),
		treatmentUpdate: newTreatmentUpdateRepository(client),
		history:         newHistoryRepository(client),
		link:            newLinkRepository(client),
		notification:    newNotificationRepository(client),
		audit:           newAuditRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Assessment() interfaces.AssessmentRepository {
	return f.assessment
}

func (f *Firestore) Treatment() interfaces.TreatmentRepository {
	return f.treatment
}

func (f *Firestore) TreatmentUpdate() interfaces.TreatmentUpdateRepository {
	return f.treatmentUpdate
}

func (f *Firestore) History() interfaces.HistoryRepository {
	return f.history
}

func (f *Firestore) Link() interfaces.LinkRepository {
	return f.link
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
