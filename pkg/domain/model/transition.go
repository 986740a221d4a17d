package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/types"
)

// RouteMitigationUpdate maps a reported mitigation sub-status onto the
// treatment status the workflow moves to. on_track and delayed stay in
// mitigation; cancelled resets to decision review so the owner chooses a new
// approach; done completes the treatment.
func RouteMitigationUpdate(status types.MitigationStatus) (types.TreatmentStatus, error) {
	switch status {
	case types.MitigationStatusOnTrack, types.MitigationStatusDelayed:
		return types.TreatmentStatusMitigationInProgress, nil
	case types.MitigationStatusCancelled:
		return types.TreatmentStatusDecisionReview, nil
	case types.MitigationStatusDone:
		return types.TreatmentStatusMitigationComplete, nil
	default:
		return "", goerr.New("unknown mitigation status", goerr.V("status", status))
	}
}

// RouteValidation maps the SME's intake verdict onto the risk status it
// produces
func RouteValidation(decision types.ReviewDecision) (types.RiskStatus, error) {
	switch decision {
	case types.ReviewDecisionApprove:
		return types.RiskStatusActualRisk, nil
	case types.ReviewDecisionDecline:
		return types.RiskStatusNotARisk, nil
	default:
		return "", goerr.New("unknown review decision", goerr.V("decision", decision))
	}
}
