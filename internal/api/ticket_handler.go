package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/repo"
)

// ListTickets возвращает историю тикетов с фильтрацией.
// GET /api/v1/tickets?status=...&username=...&limit=...&offset=...
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	if h.tickets == nil {
		Unavailable(w, "ticket history is not configured")
		return
	}

	filter := repo.TicketFilter{
		Status:   domain.TicketStatus(r.URL.Query().Get("status")),
		Username: r.URL.Query().Get("username"),
		Limit:    int(mustParseInt(r.URL.Query().Get("limit"), 50)),
		Offset:   int(mustParseInt(r.URL.Query().Get("offset"), 0)),
	}

	tickets, err := h.tickets.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		result[i] = TicketFromDomain(t)
	}

	List(w, result, len(result))
}

// GetTicket возвращает тикет по ID.
// GET /api/v1/tickets/{id}
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	if h.tickets == nil {
		Unavailable(w, "ticket history is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid ticket id")
		return
	}

	ticket, err := h.tickets.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "ticket not found") {
		return
	}

	Success(w, TicketFromDomain(*ticket))
}

// DeleteTicket удаляет тикет из истории.
// DELETE /api/v1/tickets/{id}
func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	if h.tickets == nil {
		Unavailable(w, "ticket history is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid ticket id")
		return
	}

	if HandleRepoError(w, h.logger, h.tickets.Delete(r.Context(), id), "ticket not found") {
		return
	}

	NoContent(w)
}

// mustParseInt парсит строку в int64 с дефолтным значением.
func mustParseInt(s string, defaultVal int64) int64 {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}
