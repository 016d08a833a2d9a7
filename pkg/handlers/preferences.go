package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/auth"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/services"
)

// GenreListResponse for GET /api/genres
type GenreListResponse struct {
	Genres []*models.Genre `json:"genres"`
	Total  int             `json:"total"`
}

// MoodListResponse for GET /api/moods
type MoodListResponse struct {
	Moods []*models.Mood `json:"moods"`
	Total int            `json:"total"`
}

// SetFavoriteGenresRequest for PUT /api/profile/genres
type SetFavoriteGenresRequest struct {
	GenreIDs []uuid.UUID `json:"genre_ids"`
}

// SetFavoriteGenresResponse reports how many of the requested genres were stored.
type SetFavoriteGenresResponse struct {
	Stored int `json:"stored"`
}

// PreferencesHandler serves genres, moods and the favorite-genre list.
type PreferencesHandler struct {
	preferenceService services.PreferenceService
	logger            *zap.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(preferenceService services.PreferenceService, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		preferenceService: preferenceService,
		logger:            logger,
	}
}

// RegisterRoutes registers the preferences handler's routes on the given mux.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/genres", authMiddleware.RequireAuth(h.ListGenres))
	mux.HandleFunc("GET /api/moods", authMiddleware.RequireAuth(h.ListMoods))
	mux.HandleFunc("PUT /api/profile/genres", authMiddleware.RequireAuth(h.SetFavoriteGenres))
}

// ListGenres handles GET /api/genres
func (h *PreferencesHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.preferenceService.ListGenres(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	response := GenreListResponse{Genres: genres, Total: len(genres)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListMoods handles GET /api/moods
func (h *PreferencesHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	moods, err := h.preferenceService.ListMoods(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	response := MoodListResponse{Moods: moods, Total: len(moods)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SetFavoriteGenres handles PUT /api/profile/genres
func (h *PreferencesHandler) SetFavoriteGenres(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req SetFavoriteGenresRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if req.GenreIDs == nil {
		if err := ErrorResponse(w, http.StatusBadRequest, apperrors.CategoryInvalidInput,
			"genre_ids is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	stored, err := h.preferenceService.SetFavoriteGenres(r.Context(), userID, req.GenreIDs)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	response := SetFavoriteGenresResponse{Stored: stored}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
