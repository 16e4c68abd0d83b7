package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/engine"
	"github.com/shaiso/railbot/internal/workflow"
)

// ticketUpdateTimeout — бюджет на запись исхода в историю.
const ticketUpdateTimeout = 10 * time.Second

// StartBooking запускает workflow бронирования.
// POST /api/v1/booking/start
func (h *Handler) StartBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Подписка оформляется до запуска: быстрый workflow успевает
	// завершиться раньше, чем подписчик после Start увидел бы шину.
	events, unsubscribe := h.engine.Events().Subscribe(256)

	id, err := h.engine.StartTracked(r.Context(), &req)
	if err != nil {
		unsubscribe()
		switch {
		case errors.Is(err, engine.ErrAlreadyRunning):
			Conflict(w, "a booking workflow is already running")
		case errors.Is(err, domain.ErrInvalidRequest),
			errors.Is(err, domain.ErrInvalidProxy),
			errors.Is(err, domain.ErrInvalidToken):
			BadRequest(w, err.Error())
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	if ticket := h.recordTicket(r.Context(), id, &req); ticket != nil {
		go h.trackTicket(ticket, events, unsubscribe)
	} else {
		unsubscribe()
	}

	Success(w, h.engine.Status())
}

// StopBooking останавливает активный workflow.
// POST /api/v1/booking/stop
func (h *Handler) StopBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Stop(); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			InvalidState(w, "no booking workflow is running")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, h.engine.Status())
}

// PauseBooking приостанавливает активный workflow.
// POST /api/v1/booking/pause
func (h *Handler) PauseBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Pause(); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			InvalidState(w, "no booking workflow is running")
			return
		}
		InvalidState(w, err.Error())
		return
	}

	Success(w, h.engine.Status())
}

// ResumeBooking возобновляет приостановленный workflow.
// POST /api/v1/booking/resume
func (h *Handler) ResumeBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Resume(); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			InvalidState(w, "no booking workflow is running")
			return
		}
		InvalidState(w, err.Error())
		return
	}

	Success(w, h.engine.Status())
}

// RecoverBooking перезапускает workflow из сохранённого checkpoint.
// POST /api/v1/booking/recover
func (h *Handler) RecoverBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Recover(r.Context()); err != nil {
		switch {
		case errors.Is(err, engine.ErrNoCheckpoint):
			NotFound(w, "no checkpoint to recover from")
		case errors.Is(err, engine.ErrAlreadyRunning):
			Conflict(w, "a booking workflow is already running")
		case errors.Is(err, domain.ErrInvalidRequest):
			BadRequest(w, err.Error())
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	Success(w, h.engine.Status())
}

// BookingStatus возвращает состояние движка.
// GET /api/v1/booking/status
func (h *Handler) BookingStatus(w http.ResponseWriter, r *http.Request) {
	Success(w, h.engine.Status())
}

// GetLogs возвращает последние записи лога.
// GET /api/v1/logs?limit=...
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	entries := h.ring.Tail(limit)
	List(w, entries, len(entries))
}

// recordTicket создаёт запись в истории для уже запущенного workflow.
// Идентификатор запуска становится ID тикета. Без PostgreSQL — no-op.
func (h *Handler) recordTicket(ctx context.Context, id uuid.UUID, req *domain.BookingRequest) *domain.Ticket {
	if h.tickets == nil {
		return nil
	}

	quota := "General"
	if req.PremiumTatkal {
		quota = "Premium Tatkal"
	} else if req.Tatkal {
		quota = "Tatkal"
	}

	snapshot, _ := json.Marshal(req)

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:                 id,
		TrainNo:            req.TrainNo,
		SourceStation:      req.SourceStation,
		DestinationStation: req.DestinationStation,
		TravelDate:         req.TravelDate,
		Quota:              quota,
		Username:           req.Username,
		Status:             domain.TicketStatusRunning,
		AttemptCount:       1,
		RequestJSON:        string(snapshot),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.tickets.Create(ctx, ticket); err != nil {
		h.logger.Warn("failed to record ticket", "error", err)
		return nil
	}

	return ticket
}

// trackTicket ждёт финального события своего запуска и записывает
// исход. События других запусков на шине пропускаются по BookingID.
func (h *Handler) trackTicket(ticket *domain.Ticket, events <-chan workflow.Event, unsubscribe func()) {
	defer unsubscribe()

	for e := range events {
		if e.Type != workflow.EventFinished || e.BookingID != ticket.ID {
			continue
		}

		if e.Curr == domain.StateCompleted {
			ticket.MarkBooked()
		} else {
			ticket.MarkFailed(e.Message)
		}

		ctx, cancel := context.WithTimeout(context.Background(), ticketUpdateTimeout)
		if err := h.tickets.Update(ctx, ticket); err != nil {
			h.logger.Warn("failed to update ticket", "ticket_id", ticket.ID, "error", err)
		}
		cancel()
		return
	}
}
