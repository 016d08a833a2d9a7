package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistedMovie is a title the user never wants recommended.
type BlacklistedMovie struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
