package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/LugiaKB/cinemind-backend/pkg/models"
)

// QuestionnaireRepository provides data access for questions and answers.
type QuestionnaireRepository interface {
	ListQuestions(ctx context.Context) ([]*models.Question, error)
	// CountExistingQuestions returns how many of the distinct ids exist.
	CountExistingQuestions(ctx context.Context, ids []uuid.UUID) (int, error)
	DeleteAnswers(ctx context.Context, profileID uuid.UUID) error
	InsertAnswers(ctx context.Context, profileID uuid.UUID, answers []models.AnswerInput) error
	ListAnswers(ctx context.Context, profileID uuid.UUID) ([]*models.Answer, error)
	// SumByAttribute sums selected_value per question attribute for the profile.
	SumByAttribute(ctx context.Context, profileID uuid.UUID) (map[string]float64, error)
}

type questionnaireRepository struct {
	conn Conn
}

// NewQuestionnaireRepository creates a new QuestionnaireRepository.
func NewQuestionnaireRepository(conn Conn) QuestionnaireRepository {
	return &questionnaireRepository{conn: conn}
}

var _ QuestionnaireRepository = (*questionnaireRepository)(nil)

func (r *questionnaireRepository) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx, `SELECT id, text, attribute FROM questions ORDER BY attribute, text`)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Attribute); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, nil
}

func (r *questionnaireRepository) CountExistingQuestions(ctx context.Context, ids []uuid.UUID) (int, error) {
	var n int
	err := r.conn.Querier(ctx).QueryRow(ctx,
		`SELECT count(*) FROM questions WHERE id = ANY($1)`, ids,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

func (r *questionnaireRepository) DeleteAnswers(ctx context.Context, profileID uuid.UUID) error {
	if _, err := r.conn.Querier(ctx).Exec(ctx, `DELETE FROM answers WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	return nil
}

func (r *questionnaireRepository) InsertAnswers(ctx context.Context, profileID uuid.UUID, answers []models.AnswerInput) error {
	if len(answers) == 0 {
		return nil
	}

	questionIDs := make([]uuid.UUID, len(answers))
	values := make([]int32, len(answers))
	for i, a := range answers {
		questionIDs[i] = a.QuestionID
		values[i] = int32(a.SelectedValue)
	}

	query := `
		INSERT INTO answers (profile_id, question_id, selected_value)
		SELECT $1, u.question_id, u.selected_value
		FROM unnest($2::uuid[], $3::int[]) AS u(question_id, selected_value)`

	if _, err := r.conn.Querier(ctx).Exec(ctx, query, profileID, questionIDs, values); err != nil {
		return fmt.Errorf("failed to insert answers: %w", err)
	}
	return nil
}

func (r *questionnaireRepository) ListAnswers(ctx context.Context, profileID uuid.UUID) ([]*models.Answer, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx, `
		SELECT id, profile_id, question_id, selected_value
		FROM answers WHERE profile_id = $1`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []*models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.QuestionID, &a.SelectedValue); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}
	return answers, nil
}

func (r *questionnaireRepository) SumByAttribute(ctx context.Context, profileID uuid.UUID) (map[string]float64, error) {
	rows, err := r.conn.Querier(ctx).Query(ctx, `
		SELECT q.attribute, sum(a.selected_value)::float8
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE a.profile_id = $1
		GROUP BY q.attribute`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum answers: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var attribute string
		var total float64
		if err := rows.Scan(&attribute, &total); err != nil {
			return nil, fmt.Errorf("failed to scan answer sum: %w", err)
		}
		sums[attribute] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answer sums: %w", err)
	}
	return sums, nil
}
