package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/scheduler"
)

// ListSchedules возвращает список расписаний запуска.
// GET /api/v1/schedules
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules := h.scheduler.List()

	result := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		result[i] = ScheduleFromDomain(&schedules[i])
	}

	List(w, result, len(result))
}

// CreateSchedule создаёт расписание запуска бронирования.
// POST /api/v1/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	sched := &domain.BookingSchedule{
		Request:  req.Request,
		StartAt:  req.StartAt,
		CronExpr: req.CronExpr,
		Timezone: req.Timezone,
	}

	if err := h.scheduler.Add(sched); err != nil {
		if errors.Is(err, scheduler.ErrInvalidSchedule) ||
			errors.Is(err, domain.ErrInvalidRequest) {
			BadRequest(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, ScheduleFromDomain(sched))
}

// DeleteSchedule удаляет расписание.
// DELETE /api/v1/schedules/{id}
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	if err := h.scheduler.Remove(id); err != nil {
		if errors.Is(err, scheduler.ErrScheduleNotFound) {
			NotFound(w, "schedule not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}
