package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"khavho-commerce/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotInCatalog = errors.New("product not found in catalog")
	ErrProductUnavailable  = errors.New("product is not purchasable")
)

// DefaultTaxRate is the fixed VAT rate applied to cart subtotals.
const DefaultTaxRate = 0.15

// LineItem is one cart entry. Name, category and price are captured at
// add time; they survive later catalog edits or deletion of the product.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     *float64  `json:"price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is an ordered list of line items, at most one per product id.
type Cart struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) clone() *Cart {
	out := &Cart{ID: c.ID, UpdatedAt: c.UpdatedAt}
	out.Items = make([]LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

func (c *Cart) find(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Totals is the computed cart arithmetic. Lines without a numeric price
// ("price on request") are excluded from Subtotal and flagged through
// HasQuoteItems, so the numeric figures cover priced lines only.
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	TaxRate       float64 `json:"tax_rate"`
	Tax           float64 `json:"tax"`
	GrandTotal    float64 `json:"grand_total"`
	HasQuoteItems bool    `json:"has_quote_items"`
}

// Repository persists carts. Load returns (nil, nil) when no cart is
// stored under the id.
type Repository interface {
	Load(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, cartID string) error
}

// Catalog is the product lookup the store consults on every add.
type Catalog interface {
	Lookup(id uuid.UUID) (domain.Product, bool)
}

// Store holds carts independent of catalog staleness. Each cart is read
// from durable storage once, kept authoritative in memory afterwards,
// and written back before any mutating operation returns.
type Store struct {
	repo    Repository
	catalog Catalog
	logger  *zap.Logger
	taxRate float64

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore creates a cart store. A taxRate of 0 selects DefaultTaxRate.
func NewStore(repo Repository, catalog Catalog, taxRate float64, logger *zap.Logger) *Store {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	return &Store{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		taxRate: taxRate,
		carts:   make(map[string]*Cart),
	}
}

// get returns the in-memory cart for id, hydrating it from the
// repository on first access. Caller must hold s.mu.
func (s *Store) get(ctx context.Context, cartID string) (*Cart, error) {
	if c, ok := s.carts[cartID]; ok {
		return c, nil
	}
	loaded, err := s.repo.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if loaded == nil {
		loaded = &Cart{ID: cartID, Items: []LineItem{}}
	}
	s.carts[cartID] = loaded
	return loaded, nil
}

// persist writes the working copy and installs it in memory on success.
// Caller must hold s.mu.
func (s *Store) persist(ctx context.Context, working *Cart) error {
	working.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, working); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.carts[working.ID] = working
	return nil
}

// Get returns a copy of the cart, creating an empty one on first use.
func (s *Store) Get(ctx context.Context, cartID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return c.clone(), nil
}

// Add looks the product up in the catalog at call time and either
// increments the matching line item or appends a new one with quantity
// 1, capturing name, category and price at that moment. Products absent
// from the catalog or not purchasable leave the cart untouched.
func (s *Store) Add(ctx context.Context, cartID string, productID uuid.UUID) (*Cart, error) {
	product, ok := s.catalog.Lookup(productID)
	if !ok {
		s.logger.Warn("Cart add ignored, product no longer in catalog",
			zap.String("cart_id", cartID),
			zap.String("product_id", productID.String()),
		)
		return nil, ErrProductNotInCatalog
	}
	if !product.Purchasable() {
		s.logger.Warn("Cart add ignored, product not purchasable",
			zap.String("cart_id", cartID),
			zap.String("product_id", productID.String()),
		)
		return nil, ErrProductUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	working := current.clone()
	if i := working.find(productID); i >= 0 {
		working.Items[i].Quantity++
	} else {
		working.Items = append(working.Items, LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			Price:     product.Price,
			Quantity:  1,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	return working.clone(), nil
}

// Remove deletes the matching line item. Removing an absent product is
// a no-op, not an error.
func (s *Store) Remove(ctx context.Context, cartID string, productID uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := current.find(productID)
	if i < 0 {
		return current.clone(), nil
	}

	working := current.clone()
	working.Items = append(working.Items[:i], working.Items[i+1:]...)
	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	return working.clone(), nil
}

// AdjustQuantity adds delta to the matching line item's quantity. A
// result of zero or less removes the line entirely; adjusting an absent
// product is a no-op.
func (s *Store) AdjustQuantity(ctx context.Context, cartID string, productID uuid.UUID, delta int) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := current.find(productID)
	if i < 0 {
		return current.clone(), nil
	}

	working := current.clone()
	working.Items[i].Quantity += delta
	if working.Items[i].Quantity <= 0 {
		working.Items = append(working.Items[:i], working.Items[i+1:]...)
	}
	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	return working.clone(), nil
}

// Totals computes the subtotal, tax and grand total over priced lines.
// Monetary results are rounded to cents.
func (s *Store) Totals(ctx context.Context, cartID string) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.get(ctx, cartID)
	if err != nil {
		return Totals{}, err
	}

	t := Totals{TaxRate: s.taxRate}
	for _, item := range current.Items {
		if item.Price == nil {
			t.HasQuoteItems = true
			continue
		}
		t.Subtotal += *item.Price * float64(item.Quantity)
	}
	t.Subtotal = roundCents(t.Subtotal)
	t.Tax = roundCents(t.Subtotal * s.taxRate)
	t.GrandTotal = roundCents(t.Subtotal + t.Tax)
	return t, nil
}

// Clear removes every line item and deletes the persisted cart.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.carts[cartID] = &Cart{ID: cartID, Items: []LineItem{}}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
