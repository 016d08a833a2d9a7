package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
)

var nopLogger = zap.NewNop()

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{"bad request", http.StatusBadRequest, "invalid_input", "invalid input"},
		{"not found", http.StatusNotFound, "not_found", "resource not found"},
		{"internal error", http.StatusInternalServerError, "internal", "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := ErrorResponse(w, tt.statusCode, tt.errorCode, tt.message)
			if err != nil {
				t.Fatalf("ErrorResponse returned error: %v", err)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.statusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != tt.errorCode {
				t.Errorf("body[error] = %q, want %q", body["error"], tt.errorCode)
			}
			if body["message"] != tt.message {
				t.Errorf("body[message] = %q, want %q", body["message"], tt.message)
			}
		})
	}
}

func TestWriteJSON_Status(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusCreated, map[string]string{"key": "value"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"key":"value"}`, w.Body.String())
}

func TestWriteServiceError_CategoryToStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: set favorite genres first", apperrors.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("%w: timeout", apperrors.ErrTranslationFailed), http.StatusServiceUnavailable, "translation_failed"},
		{apperrors.ErrNoSearchCriteria, http.StatusNotFound, "no_search_criteria"},
		{apperrors.ErrNoCandidates, http.StatusNotFound, "no_candidates"},
		{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{fmt.Errorf("%w: connection reset", apperrors.ErrPersistenceFailed), http.StatusInternalServerError, "persistence_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tt.err, nopLogger)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestWriteServiceError_HidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	writeServiceError(w, fmt.Errorf("%w: dial tcp 10.0.0.5:5432", apperrors.ErrPersistenceFailed), nopLogger)

	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestWriteServiceError_EmptyResultsUseFixedMessage(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("%w: no genre or keyword resolved", apperrors.ErrNoSearchCriteria),
		fmt.Errorf("%w: 6 candidates, none left after blacklist", apperrors.ErrNoCandidates),
	} {
		w := httptest.NewRecorder()
		writeServiceError(w, err, nopLogger)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "No movies found for this mood, try again", body["message"])
	}
}
