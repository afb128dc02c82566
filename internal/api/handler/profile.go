package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/EdibuLLC/JSONWebToken/internal/api/errors"
	"github.com/EdibuLLC/JSONWebToken/internal/api/service"
)

// ProfileHandler handles profile-related HTTP requests.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: profileService}
}

// List handles GET /api/v1/profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/profiles/{name}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	detail, ok := h.service.Get(r.Context(), name)
	if !ok {
		respondError(w, http.StatusNotFound, apierrors.NewNotFound("profile", name))
		return
	}
	respondJSON(w, http.StatusOK, detail)
}
