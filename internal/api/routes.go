package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Booking workflow
	mux.Handle("POST /api/v1/booking/start", chain(http.HandlerFunc(h.StartBooking)))
	mux.Handle("POST /api/v1/booking/stop", chain(http.HandlerFunc(h.StopBooking)))
	mux.Handle("POST /api/v1/booking/pause", chain(http.HandlerFunc(h.PauseBooking)))
	mux.Handle("POST /api/v1/booking/resume", chain(http.HandlerFunc(h.ResumeBooking)))
	mux.Handle("POST /api/v1/booking/recover", chain(http.HandlerFunc(h.RecoverBooking)))
	mux.Handle("GET /api/v1/booking/status", chain(http.HandlerFunc(h.BookingStatus)))

	// Logs
	mux.Handle("GET /api/v1/logs", chain(http.HandlerFunc(h.GetLogs)))

	// Config
	mux.Handle("GET /api/v1/config", chain(http.HandlerFunc(h.GetConfig)))
	mux.Handle("PUT /api/v1/config", chain(http.HandlerFunc(h.SaveConfig)))
	mux.Handle("DELETE /api/v1/config", chain(http.HandlerFunc(h.DeleteConfig)))

	// Stations
	mux.Handle("GET /api/v1/stations", chain(http.HandlerFunc(h.SearchStations)))

	// Tickets
	mux.Handle("GET /api/v1/tickets", chain(http.HandlerFunc(h.ListTickets)))
	mux.Handle("GET /api/v1/tickets/{id}", chain(http.HandlerFunc(h.GetTicket)))
	mux.Handle("DELETE /api/v1/tickets/{id}", chain(http.HandlerFunc(h.DeleteTicket)))

	// Accounts
	mux.Handle("GET /api/v1/accounts", chain(http.HandlerFunc(h.ListAccounts)))
	mux.Handle("POST /api/v1/accounts", chain(http.HandlerFunc(h.CreateAccount)))
	mux.Handle("GET /api/v1/accounts/{id}", chain(http.HandlerFunc(h.GetAccount)))
	mux.Handle("PUT /api/v1/accounts/{id}", chain(http.HandlerFunc(h.UpdateAccount)))
	mux.Handle("DELETE /api/v1/accounts/{id}", chain(http.HandlerFunc(h.DeleteAccount)))

	// Payment options
	mux.Handle("GET /api/v1/payment-options", chain(http.HandlerFunc(h.ListPaymentOptions)))
	mux.Handle("POST /api/v1/payment-options", chain(http.HandlerFunc(h.CreatePaymentOption)))
	mux.Handle("GET /api/v1/payment-options/preferred", chain(http.HandlerFunc(h.GetPreferredPaymentOption)))
	mux.Handle("DELETE /api/v1/payment-options/{id}", chain(http.HandlerFunc(h.DeletePaymentOption)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))

	// Health
	mux.Handle("GET /healthz", chain(http.HandlerFunc(h.Healthz)))
}

// Healthz — проверка живости процесса.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	Success(w, map[string]string{"status": "ok"})
}
