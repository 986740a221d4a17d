package http

import (
	"net/http"
	"time"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/usecase"
)

type assessmentResponse struct {
	ID                  int64      `json:"id"`
	RiskID              int64      `json:"risk_id"`
	Status              string     `json:"status"`
	Likelihood          string     `json:"likelihood,omitempty"`
	Impact              string     `json:"impact,omitempty"`
	CalculatedRiskLevel string     `json:"calculated_risk_level,omitempty"`
	Narrative           string     `json:"narrative,omitempty"`
	RecommendedOwnerID  string     `json:"recommended_owner_id,omitempty"`
	DeclineReason       string     `json:"decline_reason,omitempty"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

func toAssessmentResponse(a *model.RiskAssessment) assessmentResponse {
	return assessmentResponse{
		ID:                  a.ID,
		RiskID:              a.RiskID,
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
	}
}

type treatmentResponse struct {
	ID                        int64      `json:"id"`
	RiskID                    int64      `json:"risk_id"`
	Status                    string     `json:"status"`
	OwnerID                   string     `json:"owner_id,omitempty"`
	Decision                  string     `json:"decision,omitempty"`
	Justification             string     `json:"justification,omitempty"`
	MitigationPlan            string     `json:"mitigation_plan,omitempty"`
	MitigationTargetDate      *time.Time `json:"mitigation_target_date,omitempty"`
	TransferTarget            string     `json:"transfer_target,omitempty"`
	TransferCost              string     `json:"transfer_cost,omitempty"`
	AvoidanceStrategy         string     `json:"avoidance_strategy,omitempty"`
	AcceptanceRationale       string     `json:"acceptance_rationale,omitempty"`
	AcceptanceExpiry          *time.Time `json:"acceptance_expiry,omitempty"`
	ExecutiveApprovalRequired bool       `json:"executive_approval_required"`
	ExecutiveApproverID       string     `json:"executive_approver_id,omitempty"`
	MitigationPercent         int        `json:"mitigation_percent"`
	MitigationStatus          string     `json:"mitigation_status,omitempty"`
	ResidualRiskLevel         string     `json:"residual_risk_level,omitempty"`
	DecidedAt                 *time.Time `json:"decided_at,omitempty"`
}

func toTreatmentResponse(t *model.RiskTreatment) treatmentResponse {
	return treatmentResponse{
		ID:                        t.ID,
		RiskID:                    t.RiskID,
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
		ExecutiveApproverID:       t.ExecutiveApproverID.String(),
		MitigationPercent:         t.MitigationPercent,
		MitigationStatus:          t.MitigationStatus.String(),
		ResidualRiskLevel:         t.ResidualRiskLevel.String(),
		DecidedAt:                 t.DecidedAt,
	}
}

type assessmentRequest struct {
	Likelihood         string   `json:"likelihood"`
	Impact             string   `json:"impact"`
	Narrative          string   `json:"narrative"`
	RecommendedOwnerID string   `json:"recommended_owner_id"`
	AssetIDs           []string `json:"asset_ids"`
	Controls           []struct {
		ControlID     string `json:"control_id"`
		Effectiveness string `json:"effectiveness"`
	} `json:"controls"`
	ScenarioIDs []string `json:"scenario_ids"`
}

func (req *assessmentRequest) toInput() usecase.AssessmentInput {
	controls := make([]usecase.ControlLinkInput, len(req.Controls))
	for i, c := range req.Controls {
		controls[i] = usecase.ControlLinkInput{
			ControlID:     c.ControlID,
			Effectiveness: c.Effectiveness,
		}
	}
	return usecase.AssessmentInput{
		Likelihood:         types.Likelihood(req.Likelihood),
		Impact:             types.Impact(req.Impact),
		Narrative:          req.Narrative,
		RecommendedOwnerID: types.UserID(req.RecommendedOwnerID),
		AssetIDs:           req.AssetIDs,
		Controls:           controls,
		ScenarioIDs:        req.ScenarioIDs,
	}
}

func (s *Server) handleAssignAssessor(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		AssessorID string `json:"assessor_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	assessment, err := s.uc.Assessment.AssignAssessor(r.Context(), riskID, types.UserID(req.AssessorID), actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAssessmentResponse(assessment))
}

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	assessment, err := s.uc.Assessment.SubmitAssessment(r.Context(), riskID, req.toInput(), actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssessmentResponse(assessment))
}

func (s *Server) handleSubmitRevision(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	assessment, err := s.uc.Assessment.SubmitGrcRevision(r.Context(), riskID, req.toInput(), actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssessmentResponse(assessment))
}

func (s *Server) handleReviewAssessment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	assessment, err := s.uc.Assessment.ReviewAssessment(r.Context(), riskID, types.ReviewDecision(req.Decision), req.Reason, actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssessmentResponse(assessment))
}

func (s *Server) handleSubmitDecision(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		Decision             string     `json:"decision"`
		Justification        string     `json:"justification"`
		MitigationPlan       string     `json:"mitigation_plan"`
		MitigationTargetDate *time.Time `json:"mitigation_target_date"`
		TransferTarget       string     `json:"transfer_target"`
		TransferCost         string     `json:"transfer_cost"`
		AvoidanceStrategy    string     `json:"avoidance_strategy"`
		AcceptanceRationale  string     `json:"acceptance_rationale"`
		AcceptanceExpiry     *time.Time `json:"acceptance_expiry"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	treatment, err := s.uc.Treatment.SubmitTreatmentDecision(r.Context(), riskID, usecase.TreatmentDecisionInput{
		Decision:             types.TreatmentDecision(req.Decision),
		Justification:        req.Justification,
		MitigationPlan:       req.MitigationPlan,
		MitigationTargetDate: req.MitigationTargetDate,
		TransferTarget:       req.TransferTarget,
		TransferCost:         req.TransferCost,
		AvoidanceStrategy:    req.AvoidanceStrategy,
		AcceptanceRationale:  req.AcceptanceRationale,
		AcceptanceExpiry:     req.AcceptanceExpiry,
	}, actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTreatmentResponse(treatment))
}

func (s *Server) handleSetApprover(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		ApproverID string `json:"approver_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	treatment, err := s.uc.Treatment.SetExecutiveApprover(r.Context(), riskID, types.UserID(req.ApproverID), actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTreatmentResponse(treatment))
}

func (s *Server) handleExecutiveDecision(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		Decision string `json:"decision"`
		Note     string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	treatment, err := s.uc.Treatment.SubmitExecutiveDecision(r.Context(), riskID, types.ReviewDecision(req.Decision), req.Note, actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTreatmentResponse(treatment))
}

func (s *Server) handleSubmitMitigationUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		Status             string     `json:"status"`
		Percent            int        `json:"percent"`
		Note               string     `json:"note"`
		Reason             string     `json:"reason"`
		Evidence           string     `json:"evidence"`
		NewTargetDate      *time.Time `json:"new_target_date"`
		ResidualLikelihood string     `json:"residual_likelihood"`
		ResidualImpact     string     `json:"residual_impact"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	treatment, err := s.uc.Treatment.SubmitMitigationUpdate(r.Context(), riskID, usecase.MitigationUpdateInput{
		Status:             types.MitigationStatus(req.Status),
		Percent:            req.Percent,
		Note:               req.Note,
		Reason:             req.Reason,
		Evidence:           req.Evidence,
		NewTargetDate:      req.NewTargetDate,
		ResidualLikelihood: types.Likelihood(req.ResidualLikelihood),
		ResidualImpact:     types.Impact(req.ResidualImpact),
	}, actor)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTreatmentResponse(treatment))
}

func (s *Server) handleListMitigationUpdates(w http.ResponseWriter, r *http.Request) {
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	updates, err := s.uc.Treatment.ListUpdates(r.Context(), riskID)
	if err != nil {
		respondError(r, w, err)
		return
	}

	type updateResponse struct {
		ID            string     `json:"id"`
		Status        string     `json:"status"`
		Percent       int        `json:"percent"`
		Note          string     `json:"note,omitempty"`
		Reason        string     `json:"reason,omitempty"`
		Evidence      string     `json:"evidence,omitempty"`
		NewTargetDate *time.Time `json:"new_target_date,omitempty"`
		CreatedBy     string     `json:"created_by"`
		CreatedAt     time.Time  `json:"created_at"`
	}
	resp := make([]updateResponse, len(updates))
	for i, u := range updates {
		resp[i] = updateResponse{
			ID:            u.ID,
			Status:        u.Status.String(),
			Percent:       u.Percent,
			Note:          u.Note,
			Reason:        u.Reason,
			Evidence:      u.Evidence,
			NewTargetDate: u.NewTargetDate,
			CreatedBy:     u.CreatedBy.String(),
			CreatedAt:     u.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"updates": resp})
}
