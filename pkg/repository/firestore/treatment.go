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

type treatmentDocument struct {
	ID     int64  `firestore:"id"`
	RiskID int64  `firestore:"risk_id"`
	OrgID  string `firestore:"org_id"`

	Status  string `firestore:"status"`
	OwnerID string `firestore:"owner_id"`

	Decision      string `firestore:"decision"`
	Justification string `firestore:"justification"`

	MitigationPlan       string     `firestore:"mitigation_plan"`
	MitigationTargetDate *time.Time `firestore:"mitigation_target_date"`
	TransferTarget       string     `firestore:"transfer_target"`
	TransferCost         string     `firestore:"transfer_cost"`
	AvoidanceStrategy    string     `firestore:"avoidance_strategy"`
	AcceptanceRationale  string     `firestore:"acceptance_rationale"`
	AcceptanceExpiry     *time.Time `firestore:"acceptance_expiry"`

	ExecutiveApprovalRequired bool   `firestore:"executive_approval_required"`
	ExecutiveApprovalStatus   string `firestore:"executive_approval_status"`
	ExecutiveApproverID       string `firestore:"executive_approver_id"`

	MitigationPercent int    `firestore:"mitigation_percent"`
	MitigationStatus  string `firestore:"mitigation_status"`

	ResidualLikelihood string `firestore:"residual_likelihood"`
	ResidualImpact     string `firestore:"residual_impact"`
	ResidualRiskLevel  string `firestore:"residual_risk_level"`

	DecidedAt *time.Time `firestore:"decided_at"`
	CreatedAt time.Time  `firestore:"created_at"`
	UpdatedAt time.Time  `firestore:"updated_at"`
}

func toTreatmentDocument(t *model.RiskTreatment) *treatmentDocument {
	return &treatmentDocument{
		ID:                        t.ID,
		RiskID:                    t.RiskID,
		OrgID:                     t.OrgID.String(),
		Status:                    t.Status.String(),
		OwnerID:                   t.OwnerID.String(),
		Decision:                  t.Decision.String(),
		Justification:             t.Justification,
		MitigationPlan:            t.MitigationPlan,
		MitigationTargetDate:      t.MitigationTargetDate,
		TransferTarget:            t.TransferTarget,
		TransferCost:              t.TransferCost,
		AvoidanceStrategy:         t.AvoidanceStrategy,
		AcceptanceRationale:       t.AcceptanceRationale,
		AcceptanceExpiry:          t.AcceptanceExpiry,
		ExecutiveApprovalRequired: t.ExecutiveApprovalRequired,
		ExecutiveApprovalStatus:   t.ExecutiveApprovalStatus.String(),
		ExecutiveApproverID:       t.ExecutiveApproverID.String(),
		MitigationPercent:         t.MitigationPercent,
		MitigationStatus:          t.MitigationStatus.String(),
		ResidualLikelihood:        t.ResidualLikelihood.String(),
		ResidualImpact:            t.ResidualImpact.String(),
		ResidualRiskLevel:         t.ResidualRiskLevel.String(),
		DecidedAt:                 t.DecidedAt,
		CreatedAt:                 t.CreatedAt,
		UpdatedAt:                 t.UpdatedAt,
	}
}

func (d *treatmentDocument) toModel() *model.RiskTreatment {
	return &model.RiskTreatment{
		ID:                        d.ID,
		RiskID:                    d.RiskID,
		OrgID:                     types.OrgID(d.OrgID),
		Status:                    types.TreatmentStatus(d.Status),
		OwnerID:                   types.UserID(d.OwnerID),
		Decision:                  types.TreatmentDecision(d.Decision),
		Justification:             d.Justification,
		MitigationPlan:            d.MitigationPlan,
		MitigationTargetDate:      d.MitigationTargetDate,
		TransferTarget:            d.TransferTarget,
		TransferCost:              d.TransferCost,
		AvoidanceStrategy:         d.AvoidanceStrategy,
		AcceptanceRationale:       d.AcceptanceRationale,
		AcceptanceExpiry:          d.AcceptanceExpiry,
		ExecutiveApprovalRequired: d.ExecutiveApprovalRequired,
		ExecutiveApprovalStatus:   types.ReviewDecision(d.ExecutiveApprovalStatus),
		ExecutiveApproverID:       types.UserID(d.ExecutiveApproverID),
		MitigationPercent:         d.MitigationPercent,
		MitigationStatus:          types.MitigationStatus(d.MitigationStatus),
		ResidualLikelihood:        types.Likelihood(d.ResidualLikelihood),
		ResidualImpact:            types.Impact(d.ResidualImpact),
		ResidualRiskLevel:         types.RiskLevel(d.ResidualRiskLevel),
		DecidedAt:                 d.DecidedAt,
		CreatedAt:                 d.CreatedAt,
		UpdatedAt:                 d.UpdatedAt,
	}
}

type treatmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTreatmentRepository(client *firestore.Client) *treatmentRepository {
	return &treatmentRepository{client: client}
}

func (r *treatmentRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_treatments"
	}
	return "treatments"
}

// Treatments are keyed by risk ID, same as assessments: one per risk.
func (r *treatmentRepository) docRef(riskID int64) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", riskID))
}

func (r *treatmentRepository) Create(ctx context.Context, treatment *model.RiskTreatment) (*model.RiskTreatment, error) {
	now := time.Now().UTC()
	doc := toTreatmentDocument(treatment)
	doc.ID = treatment.RiskID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.docRef(treatment.RiskID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrDuplicate, "treatment already exists for risk",
				goerr.V("risk_id", treatment.RiskID))
		}
		return nil, goerr.Wrap(err, "failed to create treatment", goerr.V("risk_id", treatment.RiskID))
	}

	return doc.toModel(), nil
}

func (r *treatmentRepository) GetByRiskID(ctx context.Context, riskID int64) (*model.RiskTreatment, error) {
	doc, err := r.docRef(riskID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to get treatment", goerr.V("risk_id", riskID))
	}

	var treatmentDoc treatmentDocument
	if err := doc.DataTo(&treatmentDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal treatment", goerr.V("risk_id", riskID))
	}

	return treatmentDoc.toModel(), nil
}

func (r *treatmentRepository) Update(ctx context.Context, treatment *model.RiskTreatment) (*model.RiskTreatment, error) {
	return r.updateConditional(ctx, treatment, "")
}

func (r *treatmentRepository) UpdateIfStatus(ctx context.Context, treatment *model.RiskTreatment, expected types.TreatmentStatus) (*model.RiskTreatment, error) {
	return r.updateConditional(ctx, treatment, expected)
}

func (r *treatmentRepository) ListAcceptedExpiring(ctx context.Context, before time.Time) ([]*model.RiskTreatment, error) {
	query := r.client.Collection(r.collection()).
		Where("status", "in", []string{
			types.TreatmentStatusAccepted.String(),
			types.TreatmentStatusAutoAccepted.String(),
		}).
		Where("acceptance_expiry", "<", before)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var treatments []*model.RiskTreatment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate expiring treatments")
		}

		var treatmentDoc treatmentDocument
		if err := doc.DataTo(&treatmentDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal treatment")
		}
		if treatmentDoc.AcceptanceExpiry == nil {
			continue
		}

		treatments = append(treatments, treatmentDoc.toModel())
	}

	return treatments, nil
}

func (r *treatmentRepository) updateConditional(ctx context.Context, treatment *model.RiskTreatment, expected types.TreatmentStatus) (*model.RiskTreatment, error) {
	docRef := r.docRef(treatment.RiskID)

	var updated *treatmentDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("risk_id", treatment.RiskID))
			}
			return goerr.Wrap(err, "failed to get treatment", goerr.V("risk_id", treatment.RiskID))
		}

		var existing treatmentDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal treatment", goerr.V("risk_id", treatment.RiskID))
		}

		if expected != "" && existing.Status != expected.String() {
			return goerr.Wrap(ErrPreconditionFailed, "treatment status changed",
				goerr.V("risk_id", treatment.RiskID),
				goerr.V("expected", expected),
				goerr.V("actual", existing.Status))
		}

		updated = toTreatmentDocument(treatment)
		updated.ID = existing.ID
		updated.OrgID = existing.OrgID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated.toModel(), nil
}
