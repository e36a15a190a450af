package domain

import (
	"time"

	"github.com/google/uuid"
)

// FloatingAd is a site-wide promotional banner. At most one ad may be
// active at a time; the floating ad repository enforces this by
// deactivating all others in the same transaction that saves one.
type FloatingAd struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	ButtonText  string    `json:"button_text" db:"button_text"`
	ButtonURL   string    `json:"button_url" db:"button_url"`
	Duration    int       `json:"duration" db:"duration"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
