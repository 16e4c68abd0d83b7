package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaiso/railbot/internal/config"
)

// SaveConfig сохраняет конфигурацию бронирования на диск.
// PUT /api/v1/config
func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var req SaveConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Request == nil {
		BadRequest(w, "request is required")
		return
	}

	if err := h.configStore.Save(req.Request, req.Encrypt); err != nil {
		if errors.Is(err, config.ErrNoKey) {
			BadRequest(w, "encryption requested but no passphrase configured")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// GetConfig возвращает сохранённую конфигурацию.
// GET /api/v1/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	req, err := h.configStore.Load()
	if err != nil {
		if errors.Is(err, config.ErrDecrypt) {
			InvalidState(w, "stored config cannot be decrypted with current passphrase")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	if req == nil {
		NotFound(w, "no saved config")
		return
	}

	Success(w, req)
}

// DeleteConfig удаляет сохранённую конфигурацию.
// DELETE /api/v1/config
func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.configStore.Clear(); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}
