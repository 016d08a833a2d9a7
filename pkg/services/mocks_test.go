package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
)

// ============================================================================
// Mock implementations shared by the service tests
// ============================================================================

// mockTx runs fn directly and records whether it was called.
type mockTx struct {
	calls int
}

func (m *mockTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockProfileRepo struct {
	profile      *models.Profile
	ensureErr    error
	updateErr    error
	updateCalls  int
	lastScores   models.TraitScores
	ensureCalled int
}

func newMockProfileRepo(userID uuid.UUID) *mockProfileRepo {
	return &mockProfileRepo{profile: &models.Profile{ID: uuid.New(), UserID: userID}}
}

func (m *mockProfileRepo) EnsureForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.ensureCalled++
	if m.ensureErr != nil {
		return nil, m.ensureErr
	}
	p := *m.profile
	return &p, nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if m.profile == nil || m.profile.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	p := *m.profile
	return &p, nil
}

func (m *mockProfileRepo) UpdateScores(ctx context.Context, profileID uuid.UUID, scores models.TraitScores) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastScores = scores
	m.profile.Scores = scores
	return nil
}

// mockQuestionnaireRepo keeps answers in memory and sums them the way the
// SQL does: by the attribute of each answered question.
type mockQuestionnaireRepo struct {
	questions   map[uuid.UUID]*models.Question
	answers     map[uuid.UUID][]models.AnswerInput
	deleteCalls int
	insertErr   error
}

func newMockQuestionnaireRepo(questions ...*models.Question) *mockQuestionnaireRepo {
	m := &mockQuestionnaireRepo{
		questions: make(map[uuid.UUID]*models.Question),
		answers:   make(map[uuid.UUID][]models.AnswerInput),
	}
	for _, q := range questions {
		m.questions[q.ID] = q
	}
	return m
}

func (m *mockQuestionnaireRepo) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	out := make([]*models.Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	return out, nil
}

func (m *mockQuestionnaireRepo) CountExistingQuestions(ctx context.Context, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := m.questions[id]; ok {
			n++
		}
	}
	return n, nil
}

func (m *mockQuestionnaireRepo) DeleteAnswers(ctx context.Context, profileID uuid.UUID) error {
	m.deleteCalls++
	delete(m.answers, profileID)
	return nil
}

func (m *mockQuestionnaireRepo) InsertAnswers(ctx context.Context, profileID uuid.UUID, answers []models.AnswerInput) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.answers[profileID] = append(m.answers[profileID], answers...)
	return nil
}

func (m *mockQuestionnaireRepo) ListAnswers(ctx context.Context, profileID uuid.UUID) ([]*models.Answer, error) {
	var out []*models.Answer
	for _, a := range m.answers[profileID] {
		out = append(out, &models.Answer{ProfileID: profileID, QuestionID: a.QuestionID, SelectedValue: a.SelectedValue})
	}
	return out, nil
}

func (m *mockQuestionnaireRepo) SumByAttribute(ctx context.Context, profileID uuid.UUID) (map[string]float64, error) {
	sums := make(map[string]float64)
	for _, a := range m.answers[profileID] {
		sums[m.questions[a.QuestionID].Attribute] += float64(a.SelectedValue)
	}
	return sums, nil
}

type mockGenreRepo struct {
	genres       []*models.Genre
	favorites    map[uuid.UUID][]string
	replaceCalls int
	replaceErr   error
}

func (m *mockGenreRepo) List(ctx context.Context) ([]*models.Genre, error) {
	return m.genres, nil
}

func (m *mockGenreRepo) ListFavoriteNames(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	return m.favorites[profileID], nil
}

func (m *mockGenreRepo) ReplaceFavorites(ctx context.Context, profileID uuid.UUID, genreIDs []uuid.UUID) (int, error) {
	m.replaceCalls++
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	if m.favorites == nil {
		m.favorites = make(map[uuid.UUID][]string)
	}
	var names []string
	seen := make(map[uuid.UUID]bool)
	for _, id := range genreIDs {
		for _, g := range m.genres {
			if g.ID == id && !seen[id] {
				seen[id] = true
				names = append(names, g.Name)
			}
		}
	}
	m.favorites[profileID] = names
	return len(names), nil
}

type mockMoodRepo struct {
	moods []*models.Mood
}

func (m *mockMoodRepo) List(ctx context.Context) ([]*models.Mood, error) {
	return m.moods, nil
}

func (m *mockMoodRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Mood, error) {
	for _, mood := range m.moods {
		if mood.ID == id {
			copied := *mood
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type mockBlacklistRepo struct {
	titles map[uuid.UUID][]string
}

func (m *mockBlacklistRepo) ListTitles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if t, ok := m.titles[userID]; ok {
		return t, nil
	}
	return []string{}, nil
}

// mockRecommendationRepo is an in-memory set store enforcing the same
// uniqueness rules as the schema.
type mockRecommendationRepo struct {
	mu        sync.Mutex
	sets      map[uuid.UUID]*models.RecommendationSet
	items     map[uuid.UUID][]*models.RecommendationItem
	appendErr error
	writes    int
	locks     int
	// onLock runs after LockUserSets is called, outside the mock's mutex.
	onLock func()
}

func newMockRecommendationRepo() *mockRecommendationRepo {
	return &mockRecommendationRepo{
		sets:  make(map[uuid.UUID]*models.RecommendationSet),
		items: make(map[uuid.UUID][]*models.RecommendationItem),
	}
}

func (m *mockRecommendationRepo) ActivateNewSet(ctx context.Context, userID uuid.UUID, snapshot json.RawMessage) (*models.RecommendationSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, s := range m.sets {
		if s.UserID == userID {
			s.IsActive = false
		}
	}
	set := &models.RecommendationSet{ID: uuid.New(), UserID: userID, IsActive: true, InputSnapshot: snapshot}
	m.sets[set.ID] = set
	copied := *set
	return &copied, nil
}

func (m *mockRecommendationRepo) LockUserSets(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	m.locks++
	hook := m.onLock
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (m *mockRecommendationRepo) GetSet(ctx context.Context, setID uuid.UUID) (*models.RecommendationSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sets[setID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockRecommendationRepo) GetActiveSet(ctx context.Context, userID uuid.UUID) (*models.RecommendationSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sets {
		if s.UserID == userID && s.IsActive {
			copied := *s
			for _, item := range m.items[s.ID] {
				copied.Items = append(copied.Items, *item)
			}
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockRecommendationRepo) CountItems(ctx context.Context, setID, moodID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.items[setID] {
		if item.Mood.ID == moodID {
			n++
		}
	}
	return n, nil
}

func (m *mockRecommendationRepo) AppendItems(ctx context.Context, setID, moodID uuid.UUID, items []*models.RecommendationItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.writes++
	for _, item := range items {
		item.ID = uuid.New()
		item.RecommendationSetID = setID
		item.Mood.ID = moodID
		m.items[setID] = append(m.items[setID], item)
	}
	return nil
}

func (m *mockRecommendationRepo) activeSets(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sets {
		if s.UserID == userID && s.IsActive {
			n++
		}
	}
	return n
}

func (m *mockRecommendationRepo) totalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, items := range m.items {
		n += len(items)
	}
	return n
}
