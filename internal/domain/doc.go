// Package domain содержит доменные модели системы бронирования.
//
// Модели не зависят от инфраструктуры (браузер, БД, очереди)
// и используются всеми остальными пакетами:
//   - BookingRequest — входная конфигурация бронирования
//   - WorkflowState / WorkflowAction — состояния и действия workflow
//   - Ticket, Account, PaymentOption — исторические записи
//   - BookingSchedule — отложенный запуск бронирования
package domain
