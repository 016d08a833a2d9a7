package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"

	"github.com/LugiaKB/cinemind-backend/pkg/auth"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/services"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type mockScoringService struct {
	questions    []*models.Question
	profile      *models.Profile
	err          error
	lastAnswers  []models.AnswerInput
	submitCalled bool
}

func (m *mockScoringService) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	return m.questions, m.err
}

func (m *mockScoringService) SubmitAnswers(ctx context.Context, userID uuid.UUID, answers []models.AnswerInput) (*models.Profile, error) {
	m.submitCalled = true
	m.lastAnswers = answers
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

func (m *mockScoringService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return m.profile, m.err
}

type mockPreferenceService struct {
	genres       []*models.Genre
	moods        []*models.Mood
	stored       int
	err          error
	lastUserID   uuid.UUID
	lastGenreIDs []uuid.UUID
}

func (m *mockPreferenceService) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	return m.genres, m.err
}

func (m *mockPreferenceService) ListMoods(ctx context.Context) ([]*models.Mood, error) {
	return m.moods, m.err
}

func (m *mockPreferenceService) SetFavoriteGenres(ctx context.Context, userID uuid.UUID, genreIDs []uuid.UUID) (int, error) {
	m.lastUserID = userID
	m.lastGenreIDs = genreIDs
	return m.stored, m.err
}

type mockRecommendationService struct {
	result      *services.GenerateResult
	set         *models.RecommendationSet
	err         error
	lastRequest services.GenerateRequest
	calls       int
}

func (m *mockRecommendationService) Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error) {
	m.calls++
	m.lastRequest = req
	return m.result, m.err
}

func (m *mockRecommendationService) GetActiveSet(ctx context.Context, userID uuid.UUID) (*models.RecommendationSet, error) {
	return m.set, m.err
}

// mockAuthService accepts "Bearer <uuid>" and rejects everything else.
type mockAuthService struct{}

func (mockAuthService) Authenticate(r *http.Request) (*auth.Claims, uuid.UUID, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, uuid.Nil, auth.ErrMissingAuthorization
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, uuid.Nil, errors.New("bad token")
	}
	return &auth.Claims{}, id, nil
}

func testAuthMiddleware() *auth.Middleware {
	return auth.NewMiddleware(mockAuthService{}, nopLogger)
}

// authedRequest builds a request whose context already carries userID.
func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithUser(req.Context(), &auth.Claims{}, userID))
}
