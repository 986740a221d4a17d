package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/repository/memory"
	"github.com/grclab/riskflow/pkg/service/notify"
	"github.com/grclab/riskflow/pkg/service/worker"
)

func TestAcceptanceExpirySweep(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	dispatcher := notify.New(repo)

	risk, err := repo.Risk().Create(ctx, &model.Risk{
		OrgID:    "acme",
		Title:    "Legacy TLS endpoints",
		Status:   types.RiskStatusAnalyzed,
		GrcSmeID: "sme-1",
	})
	gt.NoError(t, err).Required()

	past := time.Now().UTC().Add(-48 * time.Hour)
	_, err = repo.Treatment().Create(ctx, &model.RiskTreatment{
		RiskID:           risk.ID,
		OrgID:            "acme",
		OwnerID:          "owner-1",
		Status:           types.TreatmentStatusAccepted,
		Decision:         types.TreatmentDecisionAccept,
		AcceptanceExpiry: &past,
	})
	gt.NoError(t, err).Required()

	// A second risk whose acceptance is still valid must not be picked up
	future := time.Now().UTC().Add(48 * time.Hour)
	risk2, err := repo.Risk().Create(ctx, &model.Risk{
		OrgID:  "acme",
		Title:  "Vendor SLA gap",
		Status: types.RiskStatusAnalyzed,
	})
	gt.NoError(t, err).Required()
	_, err = repo.Treatment().Create(ctx, &model.RiskTreatment{
		RiskID:           risk2.ID,
		OrgID:            "acme",
		OwnerID:          "owner-2",
		Status:           types.TreatmentStatusAccepted,
		Decision:         types.TreatmentDecisionAccept,
		AcceptanceExpiry: &future,
	})
	gt.NoError(t, err).Required()

	w := worker.NewAcceptanceExpiryWorker(repo, dispatcher, time.Hour)

	gt.NoError(t, w.Sweep(ctx))

	notifications, err := repo.Notification().ListByUser(ctx, "acme", "owner-1")
	gt.NoError(t, err).Required()
	gt.A(t, notifications).Length(1)
	gt.V(t, notifications[0].Type).Equal(types.NotificationAcceptanceExpired)

	others, err := repo.Notification().ListByUser(ctx, "acme", "owner-2")
	gt.NoError(t, err).Required()
	gt.A(t, others).Length(0)

	// A second sweep must not duplicate the notification
	gt.NoError(t, w.Sweep(ctx))
	notifications, err = repo.Notification().ListByUser(ctx, "acme", "owner-1")
	gt.NoError(t, err).Required()
	gt.A(t, notifications).Length(1)
}

func TestAcceptanceExpiryWorkerStartStop(t *testing.T) {
	repo := memory.New()
	dispatcher := notify.New(repo)
	w := worker.NewAcceptanceExpiryWorker(repo, dispatcher, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gt.NoError(t, w.Start(ctx))
	time.Sleep(120 * time.Millisecond)
	w.Stop()
}
