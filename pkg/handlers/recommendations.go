package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/auth"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/services"
)

// GenerateRecommendationsRequest for POST /api/recommendations/generate.
// Without RecommendationSetID a new active set is started.
type GenerateRecommendationsRequest struct {
	MoodID              uuid.UUID  `json:"mood_id"`
	RecommendationSetID *uuid.UUID `json:"recommendation_set_id,omitempty"`
}

// MoodGroup is one mood's ranked items within a set.
type MoodGroup struct {
	Mood  models.Mood                 `json:"mood"`
	Items []models.RecommendationItem `json:"items"`
}

// ActiveSetResponse for GET /api/recommendations/active
type ActiveSetResponse struct {
	ID        uuid.UUID   `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Moods     []MoodGroup `json:"moods"`
}

// RecommendationsHandler exposes the generation pipeline.
type RecommendationsHandler struct {
	recommendationService services.RecommendationService
	logger                *zap.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(recommendationService services.RecommendationService, logger *zap.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{
		recommendationService: recommendationService,
		logger:                logger,
	}
}

// RegisterRoutes registers the recommendations handler's routes on the given mux.
func (h *RecommendationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/recommendations/active", authMiddleware.RequireAuth(h.GetActive))
	mux.HandleFunc("POST /api/recommendations/generate", authMiddleware.RequireAuth(h.Generate))
}

// Generate handles POST /api/recommendations/generate
func (h *RecommendationsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req GenerateRecommendationsRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if req.MoodID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusBadRequest, apperrors.CategoryInvalidInput,
			"mood_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.recommendationService.Generate(r.Context(), services.GenerateRequest{
		UserID: userID,
		SetID:  req.RecommendationSetID,
		MoodID: req.MoodID,
	})
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetActive handles GET /api/recommendations/active
func (h *RecommendationsHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	set, err := h.recommendationService.GetActiveSet(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, apperrors.CategoryNotFound,
				"No recommendations generated yet"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	response := ActiveSetResponse{
		ID:        set.ID,
		CreatedAt: set.CreatedAt,
		Moods:     groupByMood(set.Items),
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// groupByMood keeps moods in first-seen order. Items arrive ordered by mood
// name then rank.
func groupByMood(items []models.RecommendationItem) []MoodGroup {
	groups := []MoodGroup{}
	index := make(map[uuid.UUID]int)
	for _, item := range items {
		i, ok := index[item.Mood.ID]
		if !ok {
			i = len(groups)
			index[item.Mood.ID] = i
			groups = append(groups, MoodGroup{Mood: item.Mood})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
