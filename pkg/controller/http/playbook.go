package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

type stepResponse struct {
	ID          types.StepID `json:"id"`
	Description string       `json:"description"`
	Order       int          `json:"order"`
}

type playbookResponse struct {
	ID            types.PlaybookID     `json:"id"`
	TenantID      types.TenantID       `json:"tenant_id"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	ThreatType    types.Category       `json:"threat_type"`
	SeverityLevel types.Severity       `json:"severity_level"`
	Steps         []stepResponse       `json:"steps"`
	Status        types.PlaybookStatus `json:"status"`
	IsTemplate    bool                 `json:"is_template"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func toPlaybookResponse(playbook *model.Playbook) playbookResponse {
	steps := make([]stepResponse, len(playbook.Steps))
	for i, step := range playbook.Steps {
		steps[i] = stepResponse{
			ID:          step.ID,
			Description: step.Description,
			Order:       step.Order,
		}
	}
	return playbookResponse{
		ID:            playbook.ID,
		TenantID:      playbook.TenantID,
		Name:          playbook.Name,
		Description:   playbook.Description,
		ThreatType:    playbook.ThreatType,
		SeverityLevel: playbook.SeverityLevel,
		Steps:         steps,
		Status:        playbook.Status,
		IsTemplate:    playbook.IsTemplate,
		CreatedAt:     playbook.CreatedAt,
		UpdatedAt:     playbook.UpdatedAt,
	}
}

type stepRequest struct {
	Description string `json:"description"`
}

func toStepInputs(steps []stepRequest) []usecase.StepInput {
	if steps == nil {
		return nil
	}
	inputs := make([]usecase.StepInput, len(steps))
	for i, step := range steps {
		inputs[i] = usecase.StepInput{Description: step.Description}
	}
	return inputs
}

func (s *Server) createPlaybook(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Name          string        `json:"name"`
		Description   string        `json:"description"`
		ThreatType    string        `json:"threat_type"`
		SeverityLevel string        `json:"severity_level"`
		Steps         []stepRequest `json:"steps"`
		IsTemplate    bool          `json:"is_template"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	playbook, err := s.uc.Playbook.Create(r.Context(), actor, selectedTenant(r), usecase.CreatePlaybookInput{
		Name:          req.Name,
		Description:   req.Description,
		ThreatType:    types.Category(req.ThreatType),
		SeverityLevel: types.Severity(req.SeverityLevel),
		Steps:         toStepInputs(req.Steps),
		IsTemplate:    req.IsTemplate,
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toPlaybookResponse(playbook))
}

func (s *Server) listPlaybooks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	playbooks, err := s.uc.Playbook.List(r.Context(), actor, selectedTenant(r))
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

func (s *Server) getPlaybook(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	playbookID := types.PlaybookID(chi.URLParam(r, "playbookID"))
	playbook, err := s.uc.Playbook.Get(r.Context(), actor, selectedTenant(r), playbookID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toPlaybookResponse(playbook))
}

func (s *Server) updatePlaybook(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string        `json:"name"`
		Description string        `json:"description"`
		Steps       []stepRequest `json:"steps"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	playbookID := types.PlaybookID(chi.URLParam(r, "playbookID"))
	playbook, err := s.uc.Playbook.Update(r.Context(), actor, selectedTenant(r), playbookID, usecase.UpdatePlaybookInput{
		Name:        req.Name,
		Description: req.Description,
		Steps:       toStepInputs(req.Steps),
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toPlaybookResponse(playbook))
}

func (s *Server) deprecatePlaybook(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	playbookID := types.PlaybookID(chi.URLParam(r, "playbookID"))
	playbook, err := s.uc.Playbook.Deprecate(r.Context(), actor, selectedTenant(r), playbookID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toPlaybookResponse(playbook))
}
