package models

import "github.com/google/uuid"

// Mood is one of the five seeded emotional categories.
type Mood struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}
