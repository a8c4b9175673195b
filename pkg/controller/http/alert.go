package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

type alertResponse struct {
	ID                  types.AlertID     `json:"id"`
	TenantID            types.TenantID    `json:"tenant_id"`
	Title               string            `json:"title"`
	Description         string            `json:"description,omitempty"`
	Category            types.Category    `json:"category"`
	Severity            types.Severity    `json:"severity"`
	Status              types.AlertStatus `json:"status"`
	AssignedTo          types.UserID      `json:"assigned_to,omitempty"`
	EscalatedIncidentID types.TicketID    `json:"escalated_incident_id,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func toAlertResponse(alert *model.Alert) alertResponse {
	return alertResponse{
		ID:                  alert.ID,
		TenantID:            alert.TenantID,
		Title:               alert.Title,
		Description:         alert.Description,
		Category:            alert.Category,
		Severity:            alert.Severity,
		Status:              alert.Status,
		AssignedTo:          alert.AssignedTo,
		EscalatedIncidentID: alert.EscalatedIncidentID,
		CreatedAt:           alert.CreatedAt,
		UpdatedAt:           alert.UpdatedAt,
	}
}

func (s *Server) createAlert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Severity    string `json:"severity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	alert, err := s.uc.Alert.Create(r.Context(), actor, selectedTenant(r), usecase.CreateAlertInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    types.Category(req.Category),
		Severity:    types.Severity(req.Severity),
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toAlertResponse(alert))
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	filter := usecase.AlertFilter{
		Status: types.AlertStatus(r.URL.Query().Get("status")),
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	alerts, err := s.uc.Alert.List(r.Context(), actor, selectedTenant(r), filter)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	resp := make([]alertResponse, len(alerts))
	for i, alert := range alerts {
		resp[i] = toAlertResponse(alert)
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"alerts": resp})
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	alertID := types.AlertID(chi.URLParam(r, "alertID"))
	alert, err := s.uc.Alert.Get(r.Context(), actor, selectedTenant(r), alertID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAlertResponse(alert))
}

func (s *Server) assignAlert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	alertID := types.AlertID(chi.URLParam(r, "alertID"))
	alert, err := s.uc.Alert.Assign(r.Context(), actor, selectedTenant(r), alertID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toAlertResponse(alert))
}

func (s *Server) escalateAlert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	alertID := types.AlertID(chi.URLParam(r, "alertID"))
	alert, ticket, err := s.uc.Alert.Escalate(r.Context(), actor, selectedTenant(r), alertID, req.Title, req.Description)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"alert":  toAlertResponse(alert),
		"ticket": toTicketResponse(ticket),
	})
}

func (s *Server) alertRecommendations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	alertID := types.AlertID(chi.URLParam(r, "alertID"))
	playbooks, err := s.uc.Playbook.Recommendations(r.Context(), actor, selectedTenant(r), alertID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	resp := make([]playbookResponse, len(playbooks))
	for i, playbook := range playbooks {
		resp[i] = toPlaybookResponse(playbook)
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"playbooks": resp})
}
