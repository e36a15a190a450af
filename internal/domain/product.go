package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product. Price is nil for "price on
// request" items, which can be carted but excluded from numeric totals.
// Stock is nil when stock is not tracked for the product.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Price       *float64  `json:"price" db:"price"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	Stock       *int      `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Purchasable reports whether the product may be added to a cart.
// Absent stock means stock is not tracked and only the availability
// flag applies.
func (p *Product) Purchasable() bool {
	if !p.IsAvailable {
		return false
	}
	return p.Stock == nil || *p.Stock > 0
}

// PriceOnRequest reports whether the product has no numeric price.
func (p *Product) PriceOnRequest() bool {
	return p.Price == nil
}
