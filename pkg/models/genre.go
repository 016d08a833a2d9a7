package models

import "github.com/google/uuid"

// Genre is a catalog-independent genre used as a user preference.
// Its Name is matched against catalog genre names at request time.
type Genre struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
