package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the record written by the checkout stub. There is no payment
// integration; status starts at "pending" and is managed from the admin
// panel.
type Order struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Total     float64   `json:"total" db:"total"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
