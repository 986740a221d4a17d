package model

import "github.com/grclab/riskflow/pkg/domain/types"

// AssetLink ties a risk to an asset record
type AssetLink struct {
	RiskID  int64
	OrgID   types.OrgID
	AssetID string
}

// ControlLink ties a risk to a control, carrying the assessor's judgment of
// how effective the control is against this risk
type ControlLink struct {
	RiskID        int64
	OrgID         types.OrgID
	ControlID     string
	Effectiveness string
}

// ScenarioLink ties a risk to a scenario record
type ScenarioLink struct {
	RiskID     int64
	OrgID      types.OrgID
	ScenarioID string
}
