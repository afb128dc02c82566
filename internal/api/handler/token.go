package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EdibuLLC/JSONWebToken/internal/api/dto"
	apierrors "github.com/EdibuLLC/JSONWebToken/internal/api/errors"
	"github.com/EdibuLLC/JSONWebToken/internal/api/service"
)

// TokenHandler handles token-related HTTP requests.
type TokenHandler struct {
	service *service.TokenService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokenService *service.TokenService) *TokenHandler {
	return &TokenHandler{service: tokenService}
}

// Sign handles POST /api/v1/token/sign
func (h *TokenHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenSignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid JSON request body"))
		return
	}
	if req.Profile == "" {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("profile is required"))
		return
	}

	resp, err := h.service.Sign(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Verify handles POST /api/v1/token/verify
func (h *TokenHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid JSON request body"))
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("token is required"))
		return
	}

	resp, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Decode handles POST /api/v1/token/decode
func (h *TokenHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenDecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid JSON request body"))
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("token is required"))
		return
	}

	resp, err := h.service.Decode(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleServiceError maps service errors onto HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, &dto.APIError{
			Code:    apierrors.CodeProfileNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrKeyNotFound):
		respondError(w, http.StatusNotFound, &dto.APIError{
			Code:    apierrors.CodeKeyNotFound,
			Message: err.Error(),
		})
	default:
		status, apiErr := apierrors.MapError(err)
		respondError(w, status, apiErr)
	}
}
