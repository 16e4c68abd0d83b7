// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (engine, хранилища, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - booking_handler.go  — управление workflow бронирования
//   - config_handler.go   — сохранённая конфигурация бронирования
//   - ticket_handler.go   — история тикетов
//   - account_handler.go  — учётные записи IRCTC
//   - payment_handler.go  — способы оплаты
//   - station_handler.go  — поиск станций
//   - schedule_handler.go — расписания запусков
//
// API — единственная управляющая поверхность процесса: desktop UI
// и CLI работают через эти endpoints.
package api
