package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/interfaces"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/service/notify"
	"github.com/grclab/riskflow/pkg/utils/logging"
)

// AcceptanceExpiryWorker periodically scans accepted risks whose acceptance
// expiry has passed and notifies the risk owner that the acceptance needs
// re-review.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type AcceptanceExpiryWorker struct {
	repo       interfaces.Repository
	dispatcher *notify.Dispatcher
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	// notified tracks treatment IDs already notified in this process so a
	// still-expired acceptance is not re-notified every tick
	notified map[int64]struct{}
}

// NewAcceptanceExpiryWorker creates a new worker for acceptance expiry sweeps
func NewAcceptanceExpiryWorker(repo interfaces.Repository, dispatcher *notify.Dispatcher, interval time.Duration) *AcceptanceExpiryWorker {
	return &AcceptanceExpiryWorker{
		repo:       repo,
		dispatcher: dispatcher,
		interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		notified:   make(map[int64]struct{}),
	}
}

// Start begins the background sweep loop. Does not block server startup.
func (w *AcceptanceExpiryWorker) Start(ctx context.Context) error {
	logging.Default().Info("acceptance expiry worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *AcceptanceExpiryWorker) Stop() {
	logging.Default().Info("acceptance expiry worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("acceptance expiry worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *AcceptanceExpiryWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.Sweep(ctx); err != nil {
		logging.Default().Error("initial acceptance expiry sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				logging.Default().Error("acceptance expiry sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("acceptance expiry worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("acceptance expiry worker context cancelled")
			return
		}
	}
}

// Sweep performs a single expiry scan and notifies owners of newly expired
// acceptances
func (w *AcceptanceExpiryWorker) Sweep(ctx context.Context) error {
	expiring, err := w.repo.Treatment().ListAcceptedExpiring(ctx, time.Now().UTC())
	if err != nil {
		return goerr.Wrap(err, "failed to list expiring acceptances")
	}

	for _, treatment := range expiring {
		if _, done := w.notified[treatment.ID]; done {
			continue
		}

		if err := w.notifyExpiry(ctx, treatment); err != nil {
			// Keep the treatment out of the notified set so the next
			// sweep retries it
			logging.Default().Error("failed to notify acceptance expiry",
				"risk_id", treatment.RiskID,
				"error", err.Error())
			continue
		}

		w.notified[treatment.ID] = struct{}{}
	}

	return nil
}

func (w *AcceptanceExpiryWorker) notifyExpiry(ctx context.Context, treatment *model.RiskTreatment) error {
	risk, err := w.repo.Risk().Get(ctx, treatment.RiskID)
	if err != nil {
		return goerr.Wrap(err, "failed to get risk for expired acceptance",
			goerr.V("risk_id", treatment.RiskID))
	}

	recipient := treatment.OwnerID
	if recipient == "" {
		recipient = risk.GrcSmeID
	}

	expiry := ""
	if treatment.AcceptanceExpiry != nil {
		expiry = treatment.AcceptanceExpiry.Format(time.DateOnly)
	}

	return w.dispatcher.Dispatch(ctx, &model.Notification{
		OrgID:      risk.OrgID,
		UserID:     recipient,
		Type:       types.NotificationAcceptanceExpired,
		Title:      fmt.Sprintf("Risk acceptance expired: %s %s", risk.HumanID, risk.Title),
		Message:    fmt.Sprintf("The acceptance for %s expired on %s. Re-review the treatment decision.", risk.HumanID, expiry),
		Severity:   risk.InherentRiskLevel,
		EntityType: "risk",
		EntityID:   risk.HumanID,
	})
}
