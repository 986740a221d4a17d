package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/usecase"
)

type riskResponse struct {
	ID                int64    `json:"id"`
	HumanID           string   `json:"human_id"`
	OrgID             string   `json:"org_id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Source            string   `json:"source,omitempty"`
	CategoryID        string   `json:"category_id,omitempty"`
	InitialSeverity   string   `json:"initial_severity,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Status            string   `json:"status"`
	InherentRiskLevel string   `json:"inherent_risk_level,omitempty"`
	ResidualRiskLevel string   `json:"residual_risk_level,omitempty"`
	ReporterID        string   `json:"reporter_id,omitempty"`
	GrcSmeID          string   `json:"grc_sme_id,omitempty"`
	RiskAssessorID    string   `json:"risk_assessor_id,omitempty"`
	RiskOwnerID       string   `json:"risk_owner_id,omitempty"`
	TreatmentDecision string   `json:"treatment_decision,omitempty"`
	TreatmentStatus   string   `json:"treatment_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRiskResponse(risk *model.Risk) riskResponse {
	return riskResponse{
		ID:                risk.ID,
		HumanID:           risk.HumanID,
		OrgID:             risk.OrgID.String(),
		Title:             risk.Title,
		Description:       risk.Description,
		Source:            risk.Source,
		CategoryID:        risk.CategoryID.String(),
		InitialSeverity:   risk.InitialSeverity.String(),
		Tags:              risk.Tags,
		Status:            risk.Status.String(),
		InherentRiskLevel: risk.InherentRiskLevel.String(),
		ResidualRiskLevel: risk.ResidualRiskLevel.String(),
		ReporterID:        risk.ReporterID.String(),
		GrcSmeID:          risk.GrcSmeID.String(),
		RiskAssessorID:    risk.RiskAssessorID.String(),
		RiskOwnerID:       risk.RiskOwnerID.String(),
		TreatmentDecision: risk.TreatmentDecision.String(),
		TreatmentStatus:   risk.TreatmentStatus.String(),
		CreatedAt:         risk.CreatedAt,
		UpdatedAt:         risk.UpdatedAt,
	}
}

func (s *Server) handleSubmitIntake(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	var req struct {
		Title           string   `json:"title"`
		Description     string   `json:"description"`
		Source          string   `json:"source"`
		CategoryID      string   `json:"category_id"`
		InitialSeverity string   `json:"initial_severity"`
		Tags            []string `json:"tags"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r, w, err)
		return
	}

	risk, err := s.uc.Risk.SubmitIntake(r.Context(), types.OrgID(chi.URLParam(r, "orgID")), usecase.IntakeInput{
		Title:           req.Title,
		Description:     req.Description,
		Source:          req.Source,
		CategoryID:      types.CategoryID(req.CategoryID),
		InitialSeverity: types.RiskLevel(req.InitialSeverity),
		Tags:            req.Tags,
	}, actor)
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRiskResponse(risk))
}

func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	orgID := types.OrgID(chi.URLParam(r, "orgID"))
	status := types.RiskStatus(r.URL.Query().Get("status"))

	risks, err := s.uc.Risk.List(r.Context(), orgID, status)
	if err != nil {
		respondError(r, w, err)
		return
	}

	resp := make([]riskResponse, len(risks))
	for i, risk := range risks {
		resp[i] = toRiskResponse(risk)
	}
	respondJSON(w, http.StatusOK, map[string]any{"risks": resp})
}

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	risk, err := s.uc.Risk.Get(r.Context(), riskID)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
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

	risk, err := s.uc.Risk.ValidateRisk(r.Context(), riskID, types.ReviewDecision(req.Decision), actor, req.Note)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	state, err := s.uc.Workflow.GetState(r.Context(), riskID)
	if err != nil {
		respondError(r, w, err)
		return
	}

	actions := make([]string, len(state.Actions))
	for i, a := range state.Actions {
		actions[i] = a.String()
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"stage":   state.Stage.String(),
		"actions": actions,
	})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	entries, err := s.uc.Risk.ListHistory(r.Context(), riskID)
	if err != nil {
		respondError(r, w, err)
		return
	}

	type changeResponse struct {
		From string `json:"from,omitempty"`
		To   string `json:"to"`
	}
	type entryResponse struct {
		ID        string                    `json:"id"`
		Action    string                    `json:"action"`
		ActorID   string                    `json:"actor_id"`
		Note      string                    `json:"note,omitempty"`
		Changes   map[string]changeResponse `json:"changes,omitempty"`
		CreatedAt time.Time                 `json:"created_at"`
	}

	resp := make([]entryResponse, len(entries))
	for i, entry := range entries {
		changes := make(map[string]changeResponse, len(entry.Changes))
		for field, change := range entry.Changes {
			changes[field] = changeResponse{From: change.From, To: change.To}
		}
		resp[i] = entryResponse{
			ID:        entry.ID,
			Action:    entry.Action.String(),
			ActorID:   entry.ActorID.String(),
			Note:      entry.Note,
			Changes:   changes,
			CreatedAt: entry.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": resp})
}

func (s *Server) handleGetLinks(w http.ResponseWriter, r *http.Request) {
	riskID, err := riskIDParam(r)
	if err != nil {
		respondError(r, w, err)
		return
	}

	links, err := s.uc.Workflow.GetLinks(r.Context(), riskID)
	if err != nil {
		respondError(r, w, err)
		return
	}

	type controlResponse struct {
		ControlID     string `json:"control_id"`
		Effectiveness string `json:"effectiveness,omitempty"`
	}
	assets := make([]string, len(links.Assets))
	for i, l := range links.Assets {
		assets[i] = l.AssetID
	}
	controls := make([]controlResponse, len(links.Controls))
	for i, l := range links.Controls {
		controls[i] = controlResponse{ControlID: l.ControlID, Effectiveness: l.Effectiveness}
	}
	scenarios := make([]string, len(links.Scenarios))
	for i, l := range links.Scenarios {
		scenarios[i] = l.ScenarioID
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"assets":    assets,
		"controls":  controls,
		"scenarios": scenarios,
	})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	orgID := types.OrgID(chi.URLParam(r, "orgID"))

	entries, err := s.uc.Workflow.ListAuditLog(r.Context(), orgID)
	if err != nil {
		respondError(r, w, err)
		return
	}

	type auditResponse struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		Action      string    `json:"action"`
		EntityType  string    `json:"entity_type"`
		EntityID    string    `json:"entity_id"`
		EntityName  string    `json:"entity_name,omitempty"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}
	resp := make([]auditResponse, len(entries))
	for i, entry := range entries {
		resp[i] = auditResponse{
			ID:          entry.ID,
			UserID:      entry.UserID.String(),
			Action:      entry.Action.String(),
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			EntityName:  entry.EntityName,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": resp})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	orgID := types.OrgID(chi.URLParam(r, "orgID"))
	userID := types.UserID(chi.URLParam(r, "userID"))

	notifications, err := s.uc.Workflow.ListNotifications(r.Context(), orgID, userID)
	if err != nil {
		respondError(r, w, err)
		return
	}

	type notificationResponse struct {
		ID         string    `json:"id"`
		Type       string    `json:"type"`
		Title      string    `json:"title"`
		Message    string    `json:"message,omitempty"`
		Severity   string    `json:"severity,omitempty"`
		EntityType string    `json:"entity_type,omitempty"`
		EntityID   string    `json:"entity_id,omitempty"`
		Read       bool      `json:"read"`
		CreatedAt  time.Time `json:"created_at"`
	}
	resp := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = notificationResponse{
			ID:         n.ID,
			Type:       n.Type.String(),
			Title:      n.Title,
			Message:    n.Message,
			Severity:   n.Severity.String(),
			EntityType: n.EntityType,
			EntityID:   n.EntityID,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": resp})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	if err := s.uc.Workflow.MarkNotificationRead(r.Context(), id); err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
