package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assessmentDocument struct {
	ID     int64  `firestore:"id"`
	RiskID int64  `firestore:"risk_id"`
	OrgID  string `firestore:"org_id"`

	Status string `firestore:"status"`

	Likelihood          string `firestore:"likelihood"`
	Impact              string `firestore:"impact"`
	CalculatedRiskLevel string `firestore:"calculated_risk_level"`

	Narrative          string `firestore:"narrative"`
	RecommendedOwnerID string `firestore:"recommended_owner_id"`
	DeclineReason      string `firestore:"decline_reason"`

	SubmittedAt *time.Time `firestore:"submitted_at"`
	ApprovedAt  *time.Time `firestore:"approved_at"`
	CompletedAt *time.Time `firestore:"completed_at"`

	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toAssessmentDocument(a *model.RiskAssessment) *assessmentDocument {
	return &assessmentDocument{
		ID:                  a.ID,
		RiskID:              a.RiskID,
		OrgID:               a.OrgID.String(),
		Status:              a.Status.String(),
		Likelihood:          a.Likelihood.String(),
		Impact:              a.Impact.String(),
		CalculatedRiskLevel: a.CalculatedRiskLevel.String(),
		Narrative:           a.Narrative,
		RecommendedOwnerID:  a.RecommendedOwnerID.String(),
		DeclineReason:       a.DeclineReason,
		SubmittedAt:         a.SubmittedAt,
		ApprovedAt:          a.ApprovedAt,
		CompletedAt:         a.CompletedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func (d *assessmentDocument) toModel() *model.RiskAssessment {
	return &model.RiskAssessment{
		ID:                  d.ID,
		RiskID:              d.RiskID,
		OrgID:               types.OrgID(d.OrgID),
		Status:              types.AssessmentStatus(d.Status),
		Likelihood:          types.Likelihood(d.Likelihood),
		Impact:              types.Impact(d.Impact),
		CalculatedRiskLevel: types.RiskLevel(d.CalculatedRiskLevel),
		Narrative:           d.Narrative,
		RecommendedOwnerID:  types.UserID(d.RecommendedOwnerID),
		DeclineReason:       d.DeclineReason,
		SubmittedAt:         d.SubmittedAt,
		ApprovedAt:          d.ApprovedAt,
		CompletedAt:         d.CompletedAt,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{client: client}
}

func (r *assessmentRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_assessments"
	}
	return "assessments"
}

// Assessments are keyed by risk ID: at most one assessment exists per risk,
// and the document key enforces it.
func (r *assessmentRepository) docRef(riskID int64) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", riskID))
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	now := time.Now().UTC()
	doc := toAssessmentDocument(assessment)
	doc.ID = assessment.RiskID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.docRef(assessment.RiskID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrDuplicate, "assessment already exists for risk",
				goerr.V("risk_id", assessment.RiskID))
		}
		return nil, goerr.Wrap(err, "failed to create assessment", goerr.V("risk_id", assessment.RiskID))
	}

	return doc.toModel(), nil
}

func (r *assessmentRepository) GetByRiskID(ctx context.Context, riskID int64) (*model.RiskAssessment, error) {
	doc, err := r.docRef(riskID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("risk_id", riskID))
	}

	var assessmentDoc assessmentDocument
	if err := doc.DataTo(&assessmentDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal assessment", goerr.V("risk_id", riskID))
	}

	return assessmentDoc.toModel(), nil
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	return r.updateConditional(ctx, assessment, "")
}

func (r *assessmentRepository) UpdateIfStatus(ctx context.Context, assessment *model.RiskAssessment, expected types.AssessmentStatus) (*model.RiskAssessment, error) {
	return r.updateConditional(ctx, assessment, expected)
}

func (r *assessmentRepository) updateConditional(ctx context.Context, assessment *model.RiskAssessment, expected types.AssessmentStatus) (*model.RiskAssessment, error) {
	docRef := r.docRef(assessment.RiskID)

	var updated *assessmentDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "assessment not found", goerr.V("risk_id", assessment.RiskID))
			}
			return goerr.Wrap(err, "failed to get assessment", goerr.V("risk_id", assessment.RiskID))
		}

		var existing assessmentDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal assessment", goerr.V("risk_id", assessment.RiskID))
		}

		if expected != "" && existing.Status != expected.String() {
			return goerr.Wrap(ErrPreconditionFailed, "assessment status changed",
				goerr.V("risk_id", assessment.RiskID),
				goerr.V("expected", expected),
				goerr.V("actual", existing.Status))
		}

		updated = toAssessmentDocument(assessment)
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
