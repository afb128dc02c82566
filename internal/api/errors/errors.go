// Package errors provides error handling and HTTP status code mapping.
package errors

import (
	"errors"
	"net/http"

	"github.com/EdibuLLC/JSONWebToken/internal/api/dto"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// Error codes for API responses.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeMalformedToken     = "MALFORMED_TOKEN"
	CodeSignatureInvalid   = "SIGNATURE_INVALID"
	CodeUnsupportedAlg     = "UNSUPPORTED_ALGORITHM"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenNotYetValid   = "TOKEN_NOT_YET_VALID"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeKeyNotFound        = "KEY_NOT_FOUND"
	CodeProviderError      = "PROVIDER_ERROR"
	CodeIncompleteIdentity = "INCOMPLETE_IDENTITY"
	CodeInternal           = "INTERNAL_ERROR"
)

// MapError maps an internal error to an HTTP status code and APIError.
func MapError(err error) (int, *dto.APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case errors.Is(err, jose.ErrMalformed):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeMalformedToken,
			Message: err.Error(),
		}
	case errors.Is(err, jose.ErrUnsupportedAlgorithm):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeUnsupportedAlg,
			Message: err.Error(),
		}
	case errors.Is(err, jose.ErrSignatureInvalid):
		return http.StatusUnprocessableEntity, &dto.APIError{
			Code:    CodeSignatureInvalid,
			Message: err.Error(),
		}
	case errors.Is(err, jose.ErrTokenExpired):
		return http.StatusUnprocessableEntity, &dto.APIError{
			Code:    CodeTokenExpired,
			Message: err.Error(),
		}
	case errors.Is(err, jose.ErrTokenNotYetValid):
		return http.StatusUnprocessableEntity, &dto.APIError{
			Code:    CodeTokenNotYetValid,
			Message: err.Error(),
		}
	case errors.Is(err, keys.ErrPublicKeyNotFound),
		errors.Is(err, keys.ErrNoIdentity),
		errors.Is(err, keys.ErrIncompleteIdentity):
		return http.StatusUnprocessableEntity, &dto.APIError{
			Code:    CodeIncompleteIdentity,
			Message: err.Error(),
		}
	case errors.Is(err, keys.ErrCertificateDecode):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeInvalidRequest,
			Message: err.Error(),
		}
	}

	// Provider errors carry operation context
	var provErr *keys.ProviderError
	if errors.As(err, &provErr) {
		return http.StatusInternalServerError, &dto.APIError{
			Code:    CodeProviderError,
			Message: provErr.Error(),
			Details: map[string]string{
				"operation": provErr.Op,
			},
		}
	}

	return http.StatusInternalServerError, &dto.APIError{
		Code:    CodeInternal,
		Message: "An internal error occurred",
	}
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

// NewNotFound creates a not found error.
func NewNotFound(resource, id string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeNotFound,
		Message: resource + " not found",
		Details: map[string]string{"id": id},
	}
}

// NewValidationError creates a validation error.
func NewValidationError(message string, details map[string]string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}
