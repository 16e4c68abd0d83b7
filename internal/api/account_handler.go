package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
)

// ListAccounts возвращает сохранённые учётные записи IRCTC.
// GET /api/v1/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		Unavailable(w, "account storage is not configured")
		return
	}

	accounts, err := h.accounts.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}

	List(w, result, len(result))
}

// CreateAccount сохраняет учётную запись IRCTC.
// POST /api/v1/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		Unavailable(w, "account storage is not configured")
		return
	}

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.IrctcID == "" || req.Password == "" {
		BadRequest(w, "irctc_id and password are required")
		return
	}

	status := req.Status
	if status == "" {
		status = "Active"
	}

	account := &domain.Account{
		ID:           uuid.New(),
		IrctcID:      req.IrctcID,
		Password:     req.Password,
		MobileNumber: req.MobileNumber,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}

	if HandleRepoError(w, h.logger, h.accounts.Create(r.Context(), account), "") {
		return
	}

	Created(w, AccountFromDomain(*account))
}

// GetAccount возвращает учётную запись по ID.
// GET /api/v1/accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		Unavailable(w, "account storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid account id")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "account not found") {
		return
	}

	Success(w, AccountFromDomain(*account))
}

// UpdateAccount обновляет учётную запись.
// PUT /api/v1/accounts/{id}
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		Unavailable(w, "account storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid account id")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "account not found") {
		return
	}

	if req.Password != nil {
		account.Password = *req.Password
	}
	if req.MobileNumber != nil {
		account.MobileNumber = *req.MobileNumber
	}
	if req.Status != nil {
		account.Status = *req.Status
	}

	if HandleRepoError(w, h.logger, h.accounts.Update(r.Context(), account), "account not found") {
		return
	}

	Success(w, AccountFromDomain(*account))
}

// DeleteAccount удаляет учётную запись.
// DELETE /api/v1/accounts/{id}
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		Unavailable(w, "account storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid account id")
		return
	}

	if HandleRepoError(w, h.logger, h.accounts.Delete(r.Context(), id), "account not found") {
		return
	}

	NoContent(w)
}
