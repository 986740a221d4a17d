package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/grclab/riskflow/pkg/domain/interfaces"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/repository/firestore"
	"github.com/grclab/riskflow/pkg/repository/memory"
)

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns sequential human IDs per organization", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID:  "acme",
			Title:  "Unpatched VPN gateway",
			Status: types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create first risk: %v", err)
		}
		if first.HumanID != "RISK-001" {
			t.Errorf("expected RISK-001, got %s", first.HumanID)
		}
		if first.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}

		second, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID:  "acme",
			Title:  "Stale vendor contracts",
			Status: types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create second risk: %v", err)
		}
		if second.HumanID != "RISK-002" {
			t.Errorf("expected RISK-002, got %s", second.HumanID)
		}

		// Another org starts its own sequence
		other, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID:  "globex",
			Title:  "Shadow IT file sharing",
			Status: types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create risk in other org: %v", err)
		}
		if other.HumanID != "RISK-001" {
			t.Errorf("expected RISK-001 in new org, got %s", other.HumanID)
		}
	})

	t.Run("Get returns ErrNotFound for missing risk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Risk().Get(ctx, 99999)
		if err == nil {
			t.Fatal("expected error for non-existent risk")
		}
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, firestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List filters by organization and status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		if _, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "A", Status: types.RiskStatusIdentified,
		}); err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}
		if _, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "B", Status: types.RiskStatusActualRisk,
		}); err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}
		if _, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "globex", Title: "C", Status: types.RiskStatusIdentified,
		}); err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		all, err := repo.Risk().List(ctx, "acme", "")
		if err != nil {
			t.Fatalf("failed to list risks: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 risks, got %d", len(all))
		}

		identified, err := repo.Risk().List(ctx, "acme", types.RiskStatusIdentified)
		if err != nil {
			t.Fatalf("failed to list risks: %v", err)
		}
		if len(identified) != 1 {
			t.Errorf("expected 1 identified risk, got %d", len(identified))
		}
	})

	t.Run("UpdateIfStatus succeeds when status matches", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "D", Status: types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		created.Status = types.RiskStatusActualRisk
		updated, err := repo.Risk().UpdateIfStatus(ctx, created, types.RiskStatusIdentified)
		if err != nil {
			t.Fatalf("conditional update failed: %v", err)
		}
		if updated.Status != types.RiskStatusActualRisk {
			t.Errorf("expected status=actual_risk, got %s", updated.Status)
		}
	})

	t.Run("UpdateIfStatus fails when status changed underneath", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "E", Status: types.RiskStatusActualRisk,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		created.Status = types.RiskStatusAnalysisInProgress
		_, err = repo.Risk().UpdateIfStatus(ctx, created, types.RiskStatusIdentified)
		if err == nil {
			t.Fatal("expected precondition failure")
		}
		if !errors.Is(err, memory.ErrPreconditionFailed) && !errors.Is(err, firestore.ErrPreconditionFailed) {
			t.Errorf("expected ErrPreconditionFailed, got %v", err)
		}

		// Record must be untouched
		stored, err := repo.Risk().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get risk: %v", err)
		}
		if stored.Status != types.RiskStatusActualRisk {
			t.Errorf("expected status unchanged, got %s", stored.Status)
		}
	})
}

func runSubRecordRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Assessment is unique per risk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		risk, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "F", Status: types.RiskStatusActualRisk,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		if _, err := repo.Assessment().Create(ctx, &model.RiskAssessment{
			RiskID: risk.ID,
			OrgID:  "acme",
			Status: types.AssessmentStatusAssessorAnalysis,
		}); err != nil {
			t.Fatalf("failed to create assessment: %v", err)
		}

		_, err = repo.Assessment().Create(ctx, &model.RiskAssessment{
			RiskID: risk.ID,
			OrgID:  "acme",
			Status: types.AssessmentStatusAssessorAnalysis,
		})
		if err == nil {
			t.Fatal("expected duplicate assessment to fail")
		}
		if !errors.Is(err, memory.ErrDuplicate) && !errors.Is(err, firestore.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("History is append-only and ordered", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		risk, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "G", Status: types.RiskStatusIdentified,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		for i := 0; i < 3; i++ {
			if err := repo.History().Add(ctx, &model.RiskHistory{
				RiskID:  risk.ID,
				OrgID:   "acme",
				Action:  types.ActionValidateRisk,
				ActorID: "sme-1",
				Note:    fmt.Sprintf("entry %d", i),
			}); err != nil {
				t.Fatalf("failed to add history entry: %v", err)
			}
		}

		entries, err := repo.History().ListByRisk(ctx, risk.ID)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 3 {
			t.Errorf("expected 3 history entries, got %d", len(entries))
		}
		for _, entry := range entries {
			if entry.ID == "" {
				t.Error("expected non-empty history ID")
			}
		}
	})

	t.Run("ReplaceControls overwrites existing links", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		risk, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "H", Status: types.RiskStatusActualRisk,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		if err := repo.Link().ReplaceControls(ctx, risk.ID, []model.ControlLink{
			{RiskID: risk.ID, OrgID: "acme", ControlID: "ctrl-1", Effectiveness: "partial"},
			{RiskID: risk.ID, OrgID: "acme", ControlID: "ctrl-2", Effectiveness: "effective"},
		}); err != nil {
			t.Fatalf("failed to replace controls: %v", err)
		}

		if err := repo.Link().ReplaceControls(ctx, risk.ID, []model.ControlLink{
			{RiskID: risk.ID, OrgID: "acme", ControlID: "ctrl-3", Effectiveness: "effective"},
		}); err != nil {
			t.Fatalf("failed to replace controls: %v", err)
		}

		links, err := repo.Link().ListControls(ctx, risk.ID)
		if err != nil {
			t.Fatalf("failed to list controls: %v", err)
		}
		if len(links) != 1 {
			t.Fatalf("expected 1 control link after replace, got %d", len(links))
		}
		if links[0].ControlID != "ctrl-3" {
			t.Errorf("expected ctrl-3, got %s", links[0].ControlID)
		}
	})

	t.Run("ListAcceptedExpiring returns only expired acceptances", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		risk, err := repo.Risk().Create(ctx, &model.Risk{
			OrgID: "acme", Title: "I", Status: types.RiskStatusAnalyzed,
		})
		if err != nil {
			t.Fatalf("failed to create risk: %v", err)
		}

		past := time.Now().UTC().Add(-24 * time.Hour)
		if _, err := repo.Treatment().Create(ctx, &model.RiskTreatment{
			RiskID:           risk.ID,
			OrgID:            "acme",
			Status:           types.TreatmentStatusAccepted,
			Decision:         types.TreatmentDecisionAccept,
			AcceptanceExpiry: &past,
		}); err != nil {
			t.Fatalf("failed to create treatment: %v", err)
		}

		expiring, err := repo.Treatment().ListAcceptedExpiring(ctx, time.Now().UTC())
		if err != nil {
			t.Fatalf("failed to list expiring treatments: %v", err)
		}
		if len(expiring) != 1 {
			t.Errorf("expected 1 expiring treatment, got %d", len(expiring))
		}
	})
}

func TestMemoryRepository(t *testing.T) {
	newRepo := func(t *testing.T) interfaces.Repository {
		return memory.New()
	}

	runRiskRepositoryTest(t, newRepo)
	runSubRecordRepositoryTest(t, newRepo)
}

func TestFirestoreRepository(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	newRepo := func(t *testing.T) interfaces.Repository {
		ctx := context.Background()
		prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
		repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
		if err != nil {
			t.Fatalf("failed to create firestore repository: %v", err)
		}
		t.Cleanup(func() {
			if err := repo.Close(); err != nil {
				t.Logf("failed to close repository: %v", err)
			}
		})
		return repo
	}

	runRiskRepositoryTest(t, newRepo)
	runSubRecordRepositoryTest(t, newRepo)
}
