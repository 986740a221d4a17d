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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type notificationDocument struct {
	ID     string `firestore:"id"`
	OrgID  string `firestore:"org_id"`
	UserID string `firestore:"user_id"`

	Type     string `firestore:"type"`
	Title    string `firestore:"title"`
	Message  string `firestore:"message"`
	Severity string `firestore:"severity"`

	EntityType string `firestore:"entity_type"`
	EntityID   string `firestore:"entity_id"`

	Read      bool      `firestore:"read"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (d *notificationDocument) toModel() *model.Notification {
	return &model.Notification{
		ID:         d.ID,
		OrgID:      types.OrgID(d.OrgID),
		UserID:     types.UserID(d.UserID),
		Type:       types.NotificationType(d.Type),
		Title:      d.Title,
		Message:    d.Message,
		Severity:   types.RiskLevel(d.Severity),
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		Read:       d.Read,
		CreatedAt:  d.CreatedAt,
	}
}

type notificationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newNotificationRepository(client *firestore.Client) *notificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_notifications"
	}
	return "notifications"
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	doc := &notificationDocument{
		ID:         notification.ID,
		OrgID:      notification.OrgID.String(),
		UserID:     notification.UserID.String(),
		Type:       notification.Type.String(),
		Title:      notification.Title,
		Message:    notification.Message,
		Severity:   notification.Severity.String(),
		EntityType: notification.EntityType,
		EntityID:   notification.EntityID,
		CreatedAt:  time.Now().UTC(),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if _, err := r.client.Collection(r.collection()).Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create notification", goerr.V("user_id", notification.UserID))
	}

	return doc.toModel(), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, orgID types.OrgID, userID types.UserID) ([]*model.Notification, error) {
	query := r.client.Collection(r.collection()).
		Where("org_id", "==", orgID.String()).
		Where("user_id", "==", userID.String()).
		OrderBy("created_at", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var notifications []*model.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications", goerr.V("user_id", userID))
		}

		var notificationDoc notificationDocument
		if err := doc.DataTo(&notificationDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal notification")
		}

		notifications = append(notifications, notificationDoc.toModel())
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	docRef := r.client.Collection(r.collection()).Doc(id)
	if _, err := docRef.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to mark notification read", goerr.V("id", id))
	}

	return nil
}
