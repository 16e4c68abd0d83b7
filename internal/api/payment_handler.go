package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
)

// ListPaymentOptions возвращает сохранённые способы оплаты.
// GET /api/v1/payment-options
func (h *Handler) ListPaymentOptions(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		Unavailable(w, "payment storage is not configured")
		return
	}

	options, err := h.payments.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]PaymentOptionResponse, len(options))
	for i, p := range options {
		result[i] = PaymentOptionFromDomain(p)
	}

	List(w, result, len(result))
}

// CreatePaymentOption сохраняет способ оплаты.
// POST /api/v1/payment-options
func (h *Handler) CreatePaymentOption(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		Unavailable(w, "payment storage is not configured")
		return
	}

	var req CreatePaymentOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" || req.Type == "" {
		BadRequest(w, "name and type are required")
		return
	}

	option := &domain.PaymentOption{
		ID:        uuid.New(),
		Name:      req.Name,
		Type:      req.Type,
		Gateway:   req.Gateway,
		BankName:  req.BankName,
		UpiID:     req.UpiID,
		Preferred: req.Preferred,
		CreatedAt: time.Now().UTC(),
	}

	if HandleRepoError(w, h.logger, h.payments.Create(r.Context(), option), "") {
		return
	}

	Created(w, PaymentOptionFromDomain(*option))
}

// GetPreferredPaymentOption возвращает основной способ оплаты.
// GET /api/v1/payment-options/preferred
func (h *Handler) GetPreferredPaymentOption(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		Unavailable(w, "payment storage is not configured")
		return
	}

	option, err := h.payments.GetPreferred(r.Context())
	if HandleRepoError(w, h.logger, err, "no preferred payment option") {
		return
	}

	Success(w, PaymentOptionFromDomain(*option))
}

// DeletePaymentOption удаляет способ оплаты.
// DELETE /api/v1/payment-options/{id}
func (h *Handler) DeletePaymentOption(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		Unavailable(w, "payment storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid payment option id")
		return
	}

	if HandleRepoError(w, h.logger, h.payments.Delete(r.Context(), id), "payment option not found") {
		return
	}

	NoContent(w)
}
