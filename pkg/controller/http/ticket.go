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

type ticketResponse struct {
	ID                     types.TicketID     `json:"id"`
	TenantID               types.TenantID     `json:"tenant_id"`
	Title                  string             `json:"title"`
	Description            string             `json:"description,omitempty"`
	Category               types.Category     `json:"category"`
	Severity               types.Severity     `json:"severity"`
	Priority               types.Priority     `json:"priority"`
	Status                 types.TicketStatus `json:"status"`
	CreatedBy              types.UserID       `json:"created_by"`
	AssignedTo             types.UserID       `json:"assigned_to,omitempty"`
	Tags                   []string           `json:"tags,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
	QueuePositionUpdatedAt time.Time          `json:"queue_position_updated_at"`
}

func toTicketResponse(ticket *model.Ticket) ticketResponse {
	return ticketResponse{
		ID:                     ticket.ID,
		TenantID:               ticket.TenantID,
		Title:                  ticket.Title,
		Description:            ticket.Description,
		Category:               ticket.Category,
		Severity:               ticket.Severity,
		Priority:               ticket.Priority,
		Status:                 ticket.Status,
		CreatedBy:              ticket.CreatedBy,
		AssignedTo:             ticket.AssignedTo,
		Tags:                   ticket.Tags,
		CreatedAt:              ticket.CreatedAt,
		UpdatedAt:              ticket.UpdatedAt,
		QueuePositionUpdatedAt: ticket.QueuePositionUpdatedAt,
	}
}

func toTicketListResponse(tickets []*model.Ticket) []ticketResponse {
	resp := make([]ticketResponse, len(tickets))
	for i, ticket := range tickets {
		resp[i] = toTicketResponse(ticket)
	}
	return resp
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Severity    string   `json:"severity"`
		Priority    string   `json:"priority"`
		Tags        []string `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ticket, err := s.uc.Ticket.Create(r.Context(), actor, selectedTenant(r), usecase.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    types.Category(req.Category),
		Severity:    types.Severity(req.Severity),
		Priority:    types.Priority(req.Priority),
		Tags:        req.Tags,
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toTicketResponse(ticket))
}

func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	filter := usecase.QueueFilter{
		Status:   types.TicketStatus(r.URL.Query().Get("status")),
		Category: types.Category(r.URL.Query().Get("category")),
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	tickets, err := s.uc.Ticket.ListQueue(r.Context(), actor, selectedTenant(r), filter)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"tickets": toTicketListResponse(tickets),
	})
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	ticketID := types.TicketID(chi.URLParam(r, "ticketID"))
	ticket, err := s.uc.Ticket.Get(r.Context(), actor, selectedTenant(r), ticketID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) claimTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	ticketID := types.TicketID(chi.URLParam(r, "ticketID"))
	ticket, err := s.uc.Ticket.SelfAssign(r.Context(), actor, selectedTenant(r), ticketID)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) assignTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Assignee string `json:"assignee"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ticketID := types.TicketID(chi.URLParam(r, "ticketID"))
	ticket, err := s.uc.Ticket.Assign(r.Context(), actor, selectedTenant(r), ticketID, types.UserID(req.Assignee))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) transitionTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ticketID := types.TicketID(chi.URLParam(r, "ticketID"))
	ticket, err := s.uc.Ticket.Transition(r.Context(), actor, selectedTenant(r), ticketID, types.TicketStatus(req.Status))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) changeTicketPriority(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Priority string `json:"priority"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ticketID := types.TicketID(chi.URLParam(r, "ticketID"))
	ticket, err := s.uc.Ticket.ChangePriority(r.Context(), actor, selectedTenant(r), ticketID, types.Priority(req.Priority))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toTicketResponse(ticket))
}
