package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type assetLinkDocument struct {
	RiskID  int64  `firestore:"risk_id"`
	OrgID   string `firestore:"org_id"`
	AssetID string `firestore:"asset_id"`
}

type controlLinkDocument struct {
	RiskID        int64  `firestore:"risk_id"`
	OrgID         string `firestore:"org_id"`
	ControlID     string `firestore:"control_id"`
	Effectiveness string `firestore:"effectiveness"`
}

type scenarioLinkDocument struct {
	RiskID     int64  `firestore:"risk_id"`
	OrgID      string `firestore:"org_id"`
	ScenarioID string `firestore:"scenario_id"`
}

type linkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newLinkRepository(client *firestore.Client) *linkRepository {
	return &linkRepository{client: client}
}

func (r *linkRepository) collection(name string) string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_" + name
	}
	return name
}

// replace deletes all link documents of a risk and recreates them from the
// given set. Replacement is bulk by design, never diffed.
func (r *linkRepository) replace(ctx context.Context, collection string, riskID int64, docs map[string]interface{}) error {
	iter := r.client.Collection(collection).Where("risk_id", "==", riskID).Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate links for deletion",
				goerr.V("collection", collection), goerr.V("risk_id", riskID))
		}

		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete link",
				goerr.V("collection", collection), goerr.V("risk_id", riskID))
		}
	}

	for key, doc := range docs {
		ref := r.client.Collection(collection).Doc(fmt.Sprintf("%d_%s", riskID, key))
		if _, err := bulkWriter.Set(ref, doc); err != nil {
			return goerr.Wrap(err, "failed to create link",
				goerr.V("collection", collection), goerr.V("risk_id", riskID))
		}
	}

	bulkWriter.End()

	return nil
}

func (r *linkRepository) ReplaceAssets(ctx context.Context, riskID int64, links []model.AssetLink) error {
	docs := make(map[string]interface{}, len(links))
	for _, link := range links {
		docs[link.AssetID] = &assetLinkDocument{
			RiskID:  riskID,
			OrgID:   link.OrgID.String(),
			AssetID: link.AssetID,
		}
	}
	return r.replace(ctx, r.collection("risk_assets"), riskID, docs)
}

func (r *linkRepository) ListAssets(ctx context.Context, riskID int64) ([]model.AssetLink, error) {
	iter := r.client.Collection(r.collection("risk_assets")).Where("risk_id", "==", riskID).Documents(ctx)
	defer iter.Stop()

	var links []model.AssetLink
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate asset links", goerr.V("risk_id", riskID))
		}

		var linkDoc assetLinkDocument
		if err := doc.DataTo(&linkDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal asset link")
		}

		links = append(links, model.AssetLink{
			RiskID:  linkDoc.RiskID,
			OrgID:   types.OrgID(linkDoc.OrgID),
			AssetID: linkDoc.AssetID,
		})
	}

	return links, nil
}

func (r *linkRepository) ReplaceControls(ctx context.Context, riskID int64, links []model.ControlLink) error {
	docs := make(map[string]interface{}, len(links))
	for _, link := range links {
		docs[link.ControlID] = &controlLinkDocument{
			RiskID:        riskID,
			OrgID:         link.OrgID.String(),
			ControlID:     link.ControlID,
			Effectiveness: link.Effectiveness,
		}
	}
	return r.replace(ctx, r.collection("risk_controls"), riskID, docs)
}

func (r *linkRepository) ListControls(ctx context.Context, riskID int64) ([]model.ControlLink, error) {
	iter := r.client.Collection(r.collection("risk_controls")).Where("risk_id", "==", riskID).Documents(ctx)
	defer iter.Stop()

	var links []model.ControlLink
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate control links", goerr.V("risk_id", riskID))
		}

		var linkDoc controlLinkDocument
		if err := doc.DataTo(&linkDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal control link")
		}

		links = append(links, model.ControlLink{
			RiskID:        linkDoc.RiskID,
			OrgID:         types.OrgID(linkDoc.OrgID),
			ControlID:     linkDoc.ControlID,
			Effectiveness: linkDoc.Effectiveness,
		})
	}

	return links, nil
}

func (r *linkRepository) ReplaceScenarios(ctx context.Context, riskID int64, links []model.ScenarioLink) error {
	docs := make(map[string]interface{}, len(links))
	for _, link := range links {
		docs[link.ScenarioID] = &scenarioLinkDocument{
			RiskID:     riskID,
			OrgID:      link.OrgID.String(),
			ScenarioID: link.ScenarioID,
		}
	}
	return r.replace(ctx, r.collection("risk_scenarios"), riskID, docs)
}

func (r *linkRepository) ListScenarios(ctx context.Context, riskID int64) ([]model.ScenarioLink, error) {
	iter := r.client.Collection(r.collection("risk_scenarios")).Where("risk_id", "==", riskID).Documents(ctx)
	defer iter.Stop()

	var links []model.ScenarioLink
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate scenario links", goerr.V("risk_id", riskID))
		}

		var linkDoc scenarioLinkDocument
		if err := doc.DataTo(&linkDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal scenario link")
		}

		links = append(links, model.ScenarioLink{
			RiskID:     linkDoc.RiskID,
			OrgID:      types.OrgID(linkDoc.OrgID),
			ScenarioID: linkDoc.ScenarioID,
		})
	}

	return links, nil
}
