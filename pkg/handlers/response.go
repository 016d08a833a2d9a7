package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/auth"
)

// maxBodyBytes caps request bodies. The largest is an answer list.
const maxBodyBytes = 1 << 20

// ApiResponse is the envelope for successful responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// StatusForCategory maps an apperrors category to its HTTP status.
func StatusForCategory(category string) int {
	switch category {
	case apperrors.CategoryInvalidInput:
		return http.StatusBadRequest
	case apperrors.CategoryTranslationFailed:
		return http.StatusServiceUnavailable
	case apperrors.CategoryNoSearchCriteria, apperrors.CategoryNoCandidates, apperrors.CategoryNotFound:
		return http.StatusNotFound
	case apperrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError responds with the error's category. Empty-result and 5xx
// responses carry fixed messages; the cause of a 5xx is only logged.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	category := apperrors.Category(err)
	status := StatusForCategory(category)

	message := err.Error()
	switch {
	case category == apperrors.CategoryNoSearchCriteria || category == apperrors.CategoryNoCandidates:
		message = "No movies found for this mood, try again"
	case status == http.StatusServiceUnavailable:
		message = "Recommendation engine is temporarily unavailable"
	case status >= http.StatusInternalServerError:
		message = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("category", category), zap.Error(err))
	}

	if err := ErrorResponse(w, status, category, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		message := "Invalid request body"
		if errors.Is(err, io.EOF) {
			message = "Request body is required"
		}
		if err := ErrorResponse(w, http.StatusBadRequest, apperrors.CategoryInvalidInput, message); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

// requireUserID returns the authenticated user id, writing a 401 when absent.
func requireUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return userID, true
}
