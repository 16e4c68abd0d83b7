package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus — статус тикета бронирования в истории.
type TicketStatus string

const (
	// TicketStatusPending — тикет создан, бронирование не запускалось.
	TicketStatusPending TicketStatus = "PENDING"

	// TicketStatusRunning — бронирование по тикету выполняется.
	TicketStatusRunning TicketStatus = "RUNNING"

	// TicketStatusBooked — бронирование успешно завершено.
	TicketStatusBooked TicketStatus = "BOOKED"

	// TicketStatusFailed — бронирование завершилось ошибкой.
	TicketStatusFailed TicketStatus = "FAILED"
)

// Ticket — историческая запись о бронировании.
//
// Создаётся при запуске workflow и обновляется по его завершении.
// Хранит снимок запроса и счётчики попыток для диагностики.
type Ticket struct {
	// ID — уникальный идентификатор тикета.
	ID uuid.UUID `json:"id"`

	// TrainNo — номер поезда.
	TrainNo string `json:"train_no"`

	// SourceStation и DestinationStation — маршрут.
	SourceStation      string `json:"source_station"`
	DestinationStation string `json:"destination_station"`

	// TravelDate — дата поездки (DD/MM/YYYY).
	TravelDate string `json:"travel_date"`

	// Quota — человекочитаемое название квоты (General, Tatkal...).
	Quota string `json:"quota"`

	// Username — учётная запись, под которой выполнялось бронирование.
	Username string `json:"username"`

	// Status — текущий статус тикета.
	Status TicketStatus `json:"status"`

	// AttemptCount — количество запусков workflow по этому тикету.
	AttemptCount int `json:"attempt_count"`

	// CaptchaFailures — количество неудачных распознаваний капчи.
	CaptchaFailures int `json:"captcha_failures"`

	// LastError — текст последней ошибки.
	LastError string `json:"last_error,omitempty"`

	// RequestJSON — снимок исходного BookingRequest.
	RequestJSON string `json:"request_json,omitempty"`

	// CreatedAt и UpdatedAt — временные метки записи.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkBooked переводит тикет в статус BOOKED.
func (t *Ticket) MarkBooked() {
	t.Status = TicketStatusBooked
	t.UpdatedAt = time.Now().UTC()
}

// MarkFailed переводит тикет в статус FAILED с текстом ошибки.
func (t *Ticket) MarkFailed(errMsg string) {
	t.Status = TicketStatusFailed
	t.LastError = errMsg
	t.UpdatedAt = time.Now().UTC()
}

// Account — сохранённая учётная запись IRCTC.
type Account struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// IrctcID — логин IRCTC.
	IrctcID string `json:"irctc_id"`

	// Password — пароль (хранится как есть; шифрование — забота хранилища конфигурации).
	Password string `json:"password"`

	// MobileNumber — привязанный номер телефона.
	MobileNumber string `json:"mobile_number,omitempty"`

	// Status — свободный статус ("Active", "Blocked"...).
	Status string `json:"status"`

	// CreatedAt и LastUsedAt — временные метки.
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// PaymentOption — сохранённый способ оплаты.
type PaymentOption struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// Name — отображаемое имя ("Личный UPI").
	Name string `json:"name"`

	// Type — тип: UPI, Credit Card, Debit Card, Net Banking.
	Type string `json:"type"`

	// Gateway — платёжный шлюз.
	Gateway string `json:"gateway,omitempty"`

	// BankName — банк (для карт и net banking).
	BankName string `json:"bank_name,omitempty"`

	// UpiID — идентификатор UPI (для Type == "UPI").
	UpiID string `json:"upi_id,omitempty"`

	// Preferred — основной способ оплаты.
	Preferred bool `json:"preferred"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}
