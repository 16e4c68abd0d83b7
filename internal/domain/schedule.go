package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingSchedule — отложенный запуск бронирования.
//
// Квотные окна (Tatkal) открываются в фиксированное время суток,
// поэтому запуск планируется заранее: либо разовый (StartAt), либо
// повторяющийся по cron-выражению (ежедневные попытки).
type BookingSchedule struct {
	// ID — уникальный идентификатор расписания.
	ID uuid.UUID `json:"id"`

	// Request — запрос, который будет запущен по расписанию.
	Request BookingRequest `json:"request"`

	// StartAt — время разового запуска. Исключает CronExpr.
	StartAt *time.Time `json:"start_at,omitempty"`

	// CronExpr — cron-выражение для повторяющегося запуска
	// (стандартные 5 полей).
	CronExpr string `json:"cron_expr,omitempty"`

	// Timezone — IANA-таймзона для вычисления времени запуска.
	// Пустая строка — UTC.
	Timezone string `json:"timezone,omitempty"`

	// Enabled — расписание активно.
	Enabled bool `json:"enabled"`

	// NextDueAt — вычисленное время следующего запуска.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// IsOneShot возвращает true для разового расписания.
func (s *BookingSchedule) IsOneShot() bool {
	return s.StartAt != nil
}

// IsCron возвращает true для повторяющегося расписания.
func (s *BookingSchedule) IsCron() bool {
	return s.CronExpr != ""
}
