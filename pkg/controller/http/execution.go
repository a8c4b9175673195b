package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

type stepResultResponse struct {
	CompletedBy        types.UserID             `json:"completed_by"`
	CompletedAt        time.Time                `json:"completed_at"`
	VerificationStatus types.VerificationStatus `json:"verification_status"`
	Notes              string                   `json:"notes,omitempty"`
}

type executionResponse struct {
	ID          types.ExecutionID             `json:"id"`
	PlaybookID  types.PlaybookID              `json:"playbook_id"`
	AlertID     types.AlertID                 `json:"alert_id"`
	TenantID    types.TenantID                `json:"tenant_id"`
	Status      types.ExecutionStatus         `json:"status"`
	StartedBy   types.UserID                  `json:"started_by"`
	StartedAt   time.Time                     `json:"started_at"`
	CompletedAt *time.Time                    `json:"completed_at,omitempty"`
	Notes       string                        `json:"notes,omitempty"`
	StepResults map[string]stepResultResponse `json:"step_results"`
}

func toExecutionResponse(execution *model.Execution) executionResponse {
	results := make(map[string]stepResultResponse, len(execution.StepResults))
	for id, result := range execution.StepResults {
		results[string(id)] = stepResultResponse{
			CompletedBy:        result.CompletedBy,
			CompletedAt:        result.CompletedAt,
			VerificationStatus: result.VerificationStatus,
			Notes:              result.Notes,
		}
	}
	resp := executionResponse{
		ID:          execution.ID,
		PlaybookID:  execution.PlaybookID,
		AlertID:     execution.AlertID,
		TenantID:    execution.TenantID,
		Status:      execution.Status,
		StartedBy:   execution.StartedBy,
		StartedAt:   execution.StartedAt,
		Notes:       execution.Notes,
		StepResults: results,
	}
	if !execution.CompletedAt.IsZero() {
		completedAt := execution.CompletedAt
		resp.CompletedAt = &completedAt
	}
	return resp
}

func (s *Server) startExecution(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		PlaybookID string `json:"playbook_id"`
		AlertID    string `json:"alert_id"`
		Notes      string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	execution, err := s.uc.Execution.Start(r.Context(), actor, selectedTenant(r),
		types.PlaybookID(req.PlaybookID), types.AlertID(req.AlertID), req.Notes)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toExecutionResponse(execution))
}

func (s *Server) listExecutions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	alertID := types.AlertID(r.URL.Query().Get("alert_id"))
	executions, err := s.uc.Execution.List(r.Context(), actor, selectedTenant(r), alertID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	resp := make([]executionResponse, len(executions))
	for i, execution := range executions {
		resp[i] = toExecutionResponse(execution)
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"executions": resp})
}

func (s *Server) getExecution(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	executionID := types.ExecutionID(chi.URLParam(r, "executionID"))
	execution, err := s.uc.Execution.Get(r.Context(), actor, selectedTenant(r), executionID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toExecutionResponse(execution))
}

func (s *Server) completeStep(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		VerificationStatus string `json:"verification_status"`
		Notes              string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	executionID := types.ExecutionID(chi.URLParam(r, "executionID"))
	stepID := types.StepID(chi.URLParam(r, "stepID"))
	execution, alreadyCompleted, err := s.uc.Execution.CompleteStep(r.Context(), actor, selectedTenant(r),
		executionID, stepID, types.VerificationStatus(req.VerificationStatus), req.Notes)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"execution":         toExecutionResponse(execution),
		"already_completed": alreadyCompleted,
	})
}

func (s *Server) failExecution(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	executionID := types.ExecutionID(chi.URLParam(r, "executionID"))
	execution, err := s.uc.Execution.MarkFailed(r.Context(), actor, selectedTenant(r), executionID, req.Reason)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toExecutionResponse(execution))
}
