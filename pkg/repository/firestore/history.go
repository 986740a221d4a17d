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

type fieldChangeDocument struct {
	Field string `firestore:"field"`
	From  string `firestore:"from"`
	To    string `firestore:"to"`
}

type historyDocument struct {
	ID     string `firestore:"id"`
	RiskID int64  `firestore:"risk_id"`
	OrgID  string `firestore:"org_id"`

	Action  string                `firestore:"action"`
	ActorID string                `firestore:"actor_id"`
	Note    string                `firestore:"note"`
	Changes []fieldChangeDocument `firestore:"changes"`

	CreatedAt time.Time `firestore:"created_at"`
}

func (d *historyDocument) toModel() *model.RiskHistory {
	entry := &model.RiskHistory{
		ID:        d.ID,
		RiskID:    d.RiskID,
		OrgID:     types.OrgID(d.OrgID),
		Action:    types.WorkflowAction(d.Action),
		ActorID:   types.UserID(d.ActorID),
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Changes) > 0 {
		entry.Changes = make(map[string]model.FieldChange, len(d.Changes))
		for _, c := range d.Changes {
			entry.Changes[c.Field] = model.FieldChange{From: c.From, To: c.To}
		}
	}
	return entry
}

type historyRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newHistoryRepository(client *firestore.Client) *historyRepository {
	return &historyRepository{client: client}
}

func (r *historyRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risk_histories"
	}
	return "risk_histories"
}

func (r *historyRepository) Add(ctx context.Context, entry *model.RiskHistory) error {
	doc := &historyDocument{
		ID:        entry.ID,
		RiskID:    entry.RiskID,
		OrgID:     entry.OrgID.String(),
		Action:    entry.Action.String(),
		ActorID:   entry.ActorID.String(),
		Note:      entry.Note,
		CreatedAt: time.Now().UTC(),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for field, change := range entry.Changes {
		doc.Changes = append(doc.Changes, fieldChangeDocument{
			Field: field,
			From:  change.From,
			To:    change.To,
		})
	}

	// Create, not Set: history is append-only and immutable once written
	if _, err := r.client.Collection(r.collection()).Doc(doc.ID).Create(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to add history entry", goerr.V("risk_id", entry.RiskID))
	}

	return nil
}

func (r *historyRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskHistory, error) {
	query := r.client.Collection(r.collection()).
		Where("risk_id", "==", riskID).
		OrderBy("created_at", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var entries []*model.RiskHistory
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate history entries", goerr.V("risk_id", riskID))
		}

		var historyDoc historyDocument
		if err := doc.DataTo(&historyDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal history entry")
		}

		entries = append(entries, historyDoc.toModel())
	}

	return entries, nil
}
