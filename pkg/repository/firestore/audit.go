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

type auditDocument struct {
	ID     string `firestore:"id"`
	OrgID  string `firestore:"org_id"`
	UserID string `firestore:"user_id"`

	Action      string                `firestore:"action"`
	EntityType  string                `firestore:"entity_type"`
	EntityID    string                `firestore:"entity_id"`
	EntityName  string                `firestore:"entity_name"`
	Description string                `firestore:"description"`
	Changes     []fieldChangeDocument `firestore:"changes"`

	CreatedAt time.Time `firestore:"created_at"`
}

func (d *auditDocument) toModel() *model.AuditEntry {
	entry := &model.AuditEntry{
		ID:          d.ID,
		OrgID:       types.OrgID(d.OrgID),
		UserID:      types.UserID(d.UserID),
		Action:      types.WorkflowAction(d.Action),
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		EntityName:  d.EntityName,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
	if len(d.Changes) > 0 {
		entry.Changes = make(map[string]model.FieldChange, len(d.Changes))
		for _, c := range d.Changes {
			entry.Changes[c.Field] = model.FieldChange{From: c.From, To: c.To}
		}
	}
	return entry
}

type auditRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditRepository(client *firestore.Client) *auditRepository {
	return &auditRepository{client: client}
}

func (r *auditRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_audit_logs"
	}
	return "audit_logs"
}

func (r *auditRepository) Add(ctx context.Context, entry *model.AuditEntry) error {
	doc := &auditDocument{
		ID:          entry.ID,
		OrgID:       entry.OrgID.String(),
		UserID:      entry.UserID.String(),
		Action:      entry.Action.String(),
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		EntityName:  entry.EntityName,
		Description: entry.Description,
		CreatedAt:   time.Now().UTC(),
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

	// Create, not Set: the audit trail is immutable once written
	if _, err := r.client.Collection(r.collection()).Doc(doc.ID).Create(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to add audit entry", goerr.V("org_id", entry.OrgID))
	}

	return nil
}

func (r *auditRepository) ListByOrg(ctx context.Context, orgID types.OrgID) ([]*model.AuditEntry, error) {
	query := r.client.Collection(r.collection()).
		Where("org_id", "==", orgID.String()).
		OrderBy("created_at", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var entries []*model.AuditEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit entries", goerr.V("org_id", orgID))
		}

		var auditDoc auditDocument
		if err := doc.DataTo(&auditDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal audit entry")
		}

		entries = append(entries, auditDoc.toModel())
	}

	return entries, nil
}
