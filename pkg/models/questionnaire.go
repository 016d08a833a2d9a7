package models

import "github.com/google/uuid"

// Question is a static questionnaire entry contributing to one trait.
type Question struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Attribute string    `json:"attribute"`
}

// Answer is a stored response. At most one per (profile, question).
type Answer struct {
	ID            uuid.UUID `json:"id"`
	ProfileID     uuid.UUID `json:"profile_id"`
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedValue int       `json:"selected_value"`
}

// AnswerInput is one submitted (question, value) pair.
type AnswerInput struct {
	QuestionID    uuid.UUID `json:"question_id" validate:"required"`
	SelectedValue int       `json:"selected_value"`
}
