package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type treatmentUpdateDocument struct {
	ID          string `firestore:"id"`
	TreatmentID int64  `firestore:"treatment_id"`
	RiskID      int64  `firestore:"risk_id"`
	OrgID       string `firestore:"org_id"`

	Status        string     `firestore:"status"`
	Percent       int        `firestore:"percent"`
	Note          string     `firestore:"note"`
	Reason        string     `firestore:"reason"`
	Evidence      string     `firestore:"evidence"`
	NewTargetDate *time.Time `firestore:"new_target_date"`

	CreatedBy string    `firestore:"created_by"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (d *treatmentUpdateDocument) toModel() *model.RiskTreatmentUpdate {
	return &model.RiskTreatmentUpdate{
		ID:            d.ID,
		TreatmentID:   d.TreatmentID,
		RiskID:        d.RiskID,
		OrgID:         types.OrgID(d.OrgID),
		Status:        types.MitigationStatus(d.Status),
		Percent:       d.Percent,
		Note:          d.Note,
		Reason:        d.Reason,
		Evidence:      d.Evidence,
		NewTargetDate: d.NewTargetDate,
		CreatedBy:     types.UserID(d.CreatedBy),
		CreatedAt:     d.CreatedAt,
	}
}

type treatmentUpdateRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTreatmentUpdateRepository(client *firestore.Client) *treatmentUpdateRepository {
	return &treatmentUpdateRepository{client: client}
}

func (r *treatmentUpdateRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_treatment_updates"
	}
	return "treatment_updates"
}

func (r *treatmentUpdateRepository) Create(ctx context.Context, update *model.RiskTreatmentUpdate) (*model.RiskTreatmentUpdate, error) {
	doc := &treatmentUpdateDocument{
		ID:            update.ID,
		TreatmentID:   update.TreatmentID,
		RiskID:        update.RiskID,
		OrgID:         update.OrgID.String(),
		Status:        update.Status.String(),
		Percent:       update.Percent,
		Note:          update.Note,
		Reason:        update.Reason,
		Evidence:      update.Evidence,
		NewTargetDate: update.NewTargetDate,
		CreatedBy:     update.CreatedBy.String(),
		CreatedAt:     time.Now().UTC(),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	// Create, not Set: progress entries are append-only and never rewritten
	if _, err := r.client.Collection(r.collection()).Doc(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create treatment update",
			goerr.V("treatment_id", update.TreatmentID))
	}

	return doc.toModel(), nil
}

func (r *treatmentUpdateRepository) ListByTreatment(ctx context.Context, treatmentID int64) ([]*model.RiskTreatmentUpdate, error) {
	query := r.client.Collection(r.collection()).
		Where("treatment_id", "==", treatmentID).
		OrderBy("created_at", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var updates []*model.RiskTreatmentUpdate
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate treatment updates",
				goerr.V("treatment_id", treatmentID))
		}

		var updateDoc treatmentUpdateDocument
		if err := doc.DataTo(&updateDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal treatment update")
		}

		updates = append(updates, updateDoc.toModel())
	}

	return updates, nil
}
