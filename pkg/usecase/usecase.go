package usecase

import (
	"context"

	"github.com/grclab/riskflow/pkg/domain/interfaces"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/model/config"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/service/audit"
	"github.com/grclab/riskflow/pkg/service/notify"
	"github.com/grclab/riskflow/pkg/utils/async"
	"github.com/grclab/riskflow/pkg/utils/errutil"
)

// deps carries the shared collaborators of all workflow use cases
type deps struct {
	repo     interfaces.Repository
	catalog  *config.Catalog
	notifier *notify.Dispatcher
	auditor  *audit.Recorder
}

type UseCases struct {
	deps
	Risk       *RiskUseCase
	Assessment *AssessmentUseCase
	Treatment  *TreatmentUseCase
	Workflow   *WorkflowUseCase
}

type Option func(*UseCases)

// WithCatalog enables intake field validation against the deployment catalog
func WithCatalog(catalog *config.Catalog) Option {
	return func(uc *UseCases) {
		uc.catalog = catalog
	}
}

// WithNotifier replaces the default repository-only notification dispatcher
func WithNotifier(dispatcher *notify.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.notifier = dispatcher
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		deps: deps{
			repo: repo,
		},
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.notifier == nil {
		uc.notifier = notify.New(repo)
	}
	uc.auditor = audit.New(repo)

	uc.Risk = &RiskUseCase{deps: uc.deps}
	uc.Assessment = &AssessmentUseCase{deps: uc.deps}
	uc.Treatment = &TreatmentUseCase{deps: uc.deps}
	uc.Workflow = &WorkflowUseCase{deps: uc.deps}

	return uc
}

// appendHistory writes the coarse-grained trail entry for a committed
// transition. The write is synchronous: a transition only counts as applied
// once its history entry exists.
func (d *deps) appendHistory(ctx context.Context, risk *model.Risk, action types.WorkflowAction, actor types.UserID, changes map[string]model.FieldChange, note string) error {
	return d.repo.History().Add(ctx, &model.RiskHistory{
		RiskID:  risk.ID,
		OrgID:   risk.OrgID,
		Action:  action,
		ActorID: actor,
		Note:    note,
		Changes: changes,
	})
}

// recordAudit forwards the mutation to the audit recorder fire-and-forget
func (d *deps) recordAudit(ctx context.Context, risk *model.Risk, action types.WorkflowAction, actor types.UserID, description string, changes map[string]model.FieldChange) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		return d.auditor.Record(ctx, &model.AuditEntry{
			OrgID:       risk.OrgID,
			UserID:      actor,
			Action:      action,
			EntityType:  "risk",
			EntityID:    risk.HumanID,
			EntityName:  risk.Title,
			Description: description,
			Changes:     changes,
		})
	})
}

// sendNotification delivers a workflow notification fire-and-forget. A
// missing recipient is skipped silently; role assignments fill in over the
// lifecycle.
func (d *deps) sendNotification(ctx context.Context, risk *model.Risk, userID types.UserID, notifType types.NotificationType, title, message string) {
	if userID == "" {
		return
	}

	notification := &model.Notification{
		OrgID:      risk.OrgID,
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		Severity:   risk.InherentRiskLevel,
		EntityType: "risk",
		EntityID:   risk.HumanID,
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := d.notifier.Dispatch(ctx, notification); err != nil {
			return errutil.Handle(ctx, err, "failed to dispatch workflow notification")
		}
		return nil
	})
}
