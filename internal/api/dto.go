package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
)

// Ticket DTOs

// TicketResponse — ответ с тикетом бронирования.
type TicketResponse struct {
	ID                 uuid.UUID `json:"id"`
	TrainNo            string    `json:"train_no"`
	SourceStation      string    `json:"source_station"`
	DestinationStation string    `json:"destination_station"`
	TravelDate         string    `json:"travel_date"`
	Quota              string    `json:"quota"`
	Username           string    `json:"username"`
	Status             string    `json:"status"`
	AttemptCount       int       `json:"attempt_count"`
	CaptchaFailures    int       `json:"captcha_failures"`
	LastError          string    `json:"last_error,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TicketFromDomain конвертирует domain.Ticket в TicketResponse.
// Снимок запроса наружу не отдаётся: в нём пароль.
func TicketFromDomain(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 t.ID,
		TrainNo:            t.TrainNo,
		SourceStation:      t.SourceStation,
		DestinationStation: t.DestinationStation,
		TravelDate:         t.TravelDate,
		Quota:              t.Quota,
		Username:           t.Username,
		Status:             string(t.Status),
		AttemptCount:       t.AttemptCount,
		CaptchaFailures:    t.CaptchaFailures,
		LastError:          t.LastError,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// Account DTOs

// CreateAccountRequest — запрос на сохранение учётной записи IRCTC.
type CreateAccountRequest struct {
	IrctcID      string `json:"irctc_id"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobile_number,omitempty"`
	Status       string `json:"status,omitempty"`
}

// UpdateAccountRequest — запрос на обновление учётной записи.
type UpdateAccountRequest struct {
	Password     *string `json:"password,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// AccountResponse — ответ с учётной записью. Пароль не отдаётся.
type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	IrctcID      string    `json:"irctc_id"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastUsedAt   time.Time `json:"last_used_at"`
}

// AccountFromDomain конвертирует domain.Account в AccountResponse.
func AccountFromDomain(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		IrctcID:      a.IrctcID,
		MobileNumber: a.MobileNumber,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
		LastUsedAt:   a.LastUsedAt,
	}
}

// PaymentOption DTOs

// CreatePaymentOptionRequest — запрос на сохранение способа оплаты.
type CreatePaymentOptionRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Gateway   string `json:"gateway,omitempty"`
	BankName  string `json:"bank_name,omitempty"`
	UpiID     string `json:"upi_id,omitempty"`
	Preferred bool   `json:"preferred,omitempty"`
}

// PaymentOptionResponse — ответ со способом оплаты.
type PaymentOptionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Gateway   string    `json:"gateway,omitempty"`
	BankName  string    `json:"bank_name,omitempty"`
	UpiID     string    `json:"upi_id,omitempty"`
	Preferred bool      `json:"preferred"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentOptionFromDomain конвертирует domain.PaymentOption в ответ.
func PaymentOptionFromDomain(p domain.PaymentOption) PaymentOptionResponse {
	return PaymentOptionResponse{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Gateway:   p.Gateway,
		BankName:  p.BankName,
		UpiID:     p.UpiID,
		Preferred: p.Preferred,
		CreatedAt: p.CreatedAt,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание расписания запуска.
type CreateScheduleRequest struct {
	Request  domain.BookingRequest `json:"request"`
	StartAt  *time.Time            `json:"start_at,omitempty"`
	CronExpr string                `json:"cron_expr,omitempty"`
	Timezone string                `json:"timezone,omitempty"`
}

// ScheduleResponse — ответ с расписанием. Запрос не отдаётся целиком:
// наружу уходит только маршрут для отображения.
type ScheduleResponse struct {
	ID        uuid.UUID  `json:"id"`
	TrainNo   string     `json:"train_no"`
	Route     string     `json:"route"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	CronExpr  string     `json:"cron_expr,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`
	Enabled   bool       `json:"enabled"`
	NextDueAt *time.Time `json:"next_due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ScheduleFromDomain конвертирует domain.BookingSchedule в ответ.
func ScheduleFromDomain(s *domain.BookingSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		TrainNo:   s.Request.TrainNo,
		Route:     s.Request.SourceStation + " → " + s.Request.DestinationStation,
		StartAt:   s.StartAt,
		CronExpr:  s.CronExpr,
		Timezone:  s.Timezone,
		Enabled:   s.Enabled,
		NextDueAt: s.NextDueAt,
		CreatedAt: s.CreatedAt,
	}
}

// Config DTOs

// SaveConfigRequest — запрос на сохранение конфигурации бронирования.
type SaveConfigRequest struct {
	Request *domain.BookingRequest `json:"request"`
	Encrypt bool                   `json:"encrypt,omitempty"`
}
