package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	ID      int64  `firestore:"id"`
	OrgID   string `firestore:"org_id"`
	HumanID string `firestore:"human_id"`

	Title           string   `firestore:"title"`
	Description     string   `firestore:"description"`
	Source          string   `firestore:"source"`
	CategoryID      string   `firestore:"category_id"`
	InitialSeverity string   `firestore:"initial_severity"`
	Tags            []string `firestore:"tags"`

	Status            string `firestore:"status"`
	InherentRiskLevel string `firestore:"inherent_risk_level"`
	ResidualRiskLevel string `firestore:"residual_risk_level"`

	ReporterID     string `firestore:"reporter_id"`
	GrcSmeID       string `firestore:"grc_sme_id"`
	RiskAssessorID string `firestore:"risk_assessor_id"`
	RiskOwnerID    string `firestore:"risk_owner_id"`

	TreatmentDecision string `firestore:"treatment_decision"`
	TreatmentStatus   string `firestore:"treatment_status"`

	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toRiskDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:                r.ID,
		OrgID:             r.OrgID.String(),
		HumanID:           r.HumanID,
		Title:             r.Title,
		Description:       r.Description,
		Source:            r.Source,
		CategoryID:        r.CategoryID.String(),
		InitialSeverity:   r.InitialSeverity.String(),
		Tags:              r.Tags,
		Status:            r.Status.String(),
		InherentRiskLevel: r.InherentRiskLevel.String(),
		ResidualRiskLevel: r.ResidualRiskLevel.String(),
		ReporterID:        r.ReporterID.String(),
		GrcSmeID:          r.GrcSmeID.String(),
		RiskAssessorID:    r.RiskAssessorID.String(),
		RiskOwnerID:       r.RiskOwnerID.String(),
		TreatmentDecision: r.TreatmentDecision.String(),
		TreatmentStatus:   r.TreatmentStatus.String(),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	return &model.Risk{
		ID:                d.ID,
		OrgID:             types.OrgID(d.OrgID),
		HumanID:           d.HumanID,
		Title:             d.Title,
		Description:       d.Description,
		Source:            d.Source,
		CategoryID:        types.CategoryID(d.CategoryID),
		InitialSeverity:   types.RiskLevel(d.InitialSeverity),
		Tags:              d.Tags,
		Status:            types.RiskStatus(d.Status),
		InherentRiskLevel: types.RiskLevel(d.InherentRiskLevel),
		ResidualRiskLevel: types.RiskLevel(d.ResidualRiskLevel),
		ReporterID:        types.UserID(d.ReporterID),
		GrcSmeID:          types.UserID(d.GrcSmeID),
		RiskAssessorID:    types.UserID(d.RiskAssessorID),
		RiskOwnerID:       types.UserID(d.RiskOwnerID),
		TreatmentDecision: types.TreatmentDecision(d.TreatmentDecision),
		TreatmentStatus:   types.TreatmentStatus(d.TreatmentStatus),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{client: client}
}

func (r *riskRepository) risksCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risks"
	}
	return "risks"
}

func (r *riskRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

// nextIDs allocates a global record ID and the org-scoped human sequence in
// one transaction, so concurrent intakes in the same organization can never
// observe the same sequence value.
func (r *riskRepository) nextIDs(ctx context.Context, orgID types.OrgID) (int64, int64, error) {
	globalRef := r.client.Collection(r.counterCollection()).Doc("risk_counter")
	orgRef := r.client.Collection(r.counterCollection()).Doc("risk_seq_" + orgID.String())

	var nextID, nextSeq int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		nextID, err = incrementCounter(tx, globalRef)
		if err != nil {
			return err
		}
		nextSeq, err = incrementCounter(tx, orgRef)
		return err
	})
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to allocate risk IDs", goerr.V("org_id", orgID))
	}

	return nextID, nextSeq, nil
}

func incrementCounter(tx *firestore.Transaction, ref *firestore.DocumentRef) (int64, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			if err := tx.Set(ref, map[string]interface{}{"value": int64(1)}); err != nil {
				return 0, goerr.Wrap(err, "failed to initialize counter")
			}
			return 1, nil
		}
		return 0, goerr.Wrap(err, "failed to get counter")
	}

	current, err := doc.DataAt("value")
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get counter value")
	}

	next := current.(int64) + 1
	if err := tx.Update(ref, []firestore.Update{{Path: "value", Value: next}}); err != nil {
		return 0, goerr.Wrap(err, "failed to update counter")
	}
	return next, nil
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	id, seq, err := r.nextIDs(ctx, risk.OrgID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := toRiskDocument(risk)
	doc.ID = id
	doc.HumanID = model.FormatHumanID(seq)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}

	return doc.toModel(), nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}

	return riskDoc.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrgID, riskStatus types.RiskStatus) ([]*model.Risk, error) {
	query := r.client.Collection(r.risksCollection()).Where("org_id", "==", orgID.String())
	if riskStatus != "" {
		query = query.Where("status", "==", riskStatus.String())
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var risks []*model.Risk
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk")
		}

		risks = append(risks, riskDoc.toModel())
	}

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	return r.updateConditional(ctx, risk, "")
}

func (r *riskRepository) UpdateIfStatus(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error) {
	return r.updateConditional(ctx, risk, expected)
}

// updateConditional rewrites the risk document inside a transaction. When
// expected is non-empty the write only happens while the stored status still
// matches, giving the read-branch-write sequence in the use case layer a
// compare-and-swap against racing actors.
func (r *riskRepository) updateConditional(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", risk.ID))

	var updated *riskDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("id", risk.ID))
		}

		var existing riskDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", risk.ID))
		}

		if expected != "" && existing.Status != expected.String() {
			return goerr.Wrap(ErrPreconditionFailed, "risk status changed",
				goerr.V("id", risk.ID),
				goerr.V("expected", expected),
				goerr.V("actual", existing.Status))
		}

		updated = toRiskDocument(risk)
		updated.ID = existing.ID
		updated.OrgID = existing.OrgID
		updated.HumanID = existing.HumanID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated.toModel(), nil
}
