package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/auth"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// QuestionListResponse for GET /api/questions
type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int                `json:"total"`
}

// SubmitAnswersRequest for POST /api/profile/answers
type SubmitAnswersRequest struct {
	Answers []models.AnswerInput `json:"answers"`
}

// ============================================================================
// Handler
// ============================================================================

// ProfileHandler serves the questionnaire and the trait profile.
type ProfileHandler struct {
	scoringService services.ScoringService
	logger         *zap.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(scoringService services.ScoringService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		scoringService: scoringService,
		logger:         logger,
	}
}

// RegisterRoutes registers the profile handler's routes on the given mux.
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/questions", authMiddleware.RequireAuth(h.ListQuestions))
	mux.HandleFunc("GET /api/profile", authMiddleware.RequireAuth(h.GetProfile))
	mux.HandleFunc("POST /api/profile/answers", authMiddleware.RequireAuth(h.SubmitAnswers))
}

// ListQuestions handles GET /api/questions
func (h *ProfileHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.scoringService.ListQuestions(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	response := QuestionListResponse{Questions: questions, Total: len(questions)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.scoringService.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: profile}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SubmitAnswers handles POST /api/profile/answers
func (h *ProfileHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if len(req.Answers) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, apperrors.CategoryInvalidInput,
			"answers must be a non-empty list"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	profile, err := h.scoringService.SubmitAnswers(r.Context(), userID, req.Answers)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Questionnaire submitted",
		zap.String("user_id", userID.String()),
		zap.Int("answers", len(req.Answers)))

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: profile}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
