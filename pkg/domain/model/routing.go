package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// RoutingOutcome is the result of looking up a treatment decision against the
// inherent risk level: the treatment status to move to and whether executive
// sign-off is required before the decision takes effect.
type RoutingOutcome struct {
	NextStatus                types.TreatmentStatus
	ExecutiveApprovalRequired bool
}

var escalate = RoutingOutcome{
	NextStatus:                types.TreatmentStatusIdentifyExecutiveApprover,
	ExecutiveApprovalRequired: true,
}

var autoAccept = RoutingOutcome{
	NextStatus: types.TreatmentStatusAutoAccepted,
}

// routingMatrix is the escalation policy as data: decision x inherent risk
// level. Mitigation always proceeds directly. Non-mitigate decisions escalate
// at high and very_high, resolve directly at medium, and auto-accept at low
// and very_low regardless of the chosen decision.
var routingMatrix = map[types.TreatmentDecision]map[types.RiskLevel]RoutingOutcome{
	types.TreatmentDecisionMitigate: {
		types.RiskLevelVeryLow:  {NextStatus: types.TreatmentStatusMitigationInProgress},
		types.RiskLevelLow:      {NextStatus: types.TreatmentStatusMitigationInProgress},
		types.RiskLevelMedium:   {NextStatus: types.TreatmentStatusMitigationInProgress},
		types.RiskLevelHigh:     {NextStatus: types.TreatmentStatusMitigationInProgress},
		types.RiskLevelVeryHigh: {NextStatus: types.TreatmentStatusMitigationInProgress},
	},
	types.TreatmentDecisionAccept: {
		types.RiskLevelVeryLow:  autoAccept,
		types.RiskLevelLow:      autoAccept,
		types.RiskLevelMedium:   {NextStatus: types.TreatmentStatusAccepted},
		types.RiskLevelHigh:     escalate,
		types.RiskLevelVeryHigh: escalate,
	},
	types.TreatmentDecisionTransfer: {
		types.RiskLevelVeryLow:  autoAccept,
		types.RiskLevelLow:      autoAccept,
		types.RiskLevelMedium:   {NextStatus: types.TreatmentStatusTransferred},
		types.RiskLevelHigh:     escalate,
		types.RiskLevelVeryHigh: escalate,
	},
	types.TreatmentDecisionAvoid: {
		types.RiskLevelVeryLow:  autoAccept,
		types.RiskLevelLow:      autoAccept,
		types.RiskLevelMedium:   {NextStatus: types.TreatmentStatusAvoided},
		types.RiskLevelHigh:     escalate,
		types.RiskLevelVeryHigh: escalate,
	},
}

// RouteTreatmentDecision looks up the routing outcome for a decision at the
// given inherent risk level. The caller passes the level computed at
// assessment time; it is never recomputed here.
func RouteTreatmentDecision(decision types.TreatmentDecision, level types.RiskLevel) (RoutingOutcome, error) {
	row, ok := routingMatrix[decision]
	if !ok {
		return RoutingOutcome{}, goerr.New("unknown treatment decision",
			goerr.V("decision", decision))
	}
	outcome, ok := row[level]
	if !ok {
		return RoutingOutcome{}, goerr.New("unknown risk level",
			goerr.V("decision", decision), goerr.V("level", level))
	}
	return outcome, nil
}

// TerminalStatusFor maps a decision to the treatment status it resolves to
// once approved. Used when an executive approves an escalated decision:
// mitigate still lands on mitigation-in-progress even after escalation.
func TerminalStatusFor(decision types.TreatmentDecision) (types.TreatmentStatus, error) {
	switch decision {
	case types.TreatmentDecisionMitigate:
		return types.TreatmentStatusMitigationInProgress, nil
	case types.TreatmentDecisionAccept:
		return types.TreatmentStatusAccepted, nil
	case types.TreatmentDecisionTransfer:
		return types.TreatmentStatusTransferred, nil
	case types.TreatmentDecisionAvoid:
		return types.TreatmentStatusAvoided, nil
	default:
		return "", goerr.New("unknown treatment decision", goerr.V("decision", decision))
	}
}
