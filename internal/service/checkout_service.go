package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khavho-commerce/internal/cart"
	"khavho-commerce/internal/domain"
	"khavho-commerce/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrQuoteItemsInCart = errors.New("cart contains price-on-request items, no numeric total can be computed")
)

// OrderStatusPending is the status every new order starts in. There is
// no payment step; orders move on from the admin panel.
const OrderStatusPending = "pending"

// CheckoutService turns a cart into an order record and clears it.
type CheckoutService interface {
	Checkout(ctx context.Context, cartID string) (*domain.Order, error)
}

type checkoutService struct {
	carts     *cart.Store
	orderRepo repository.OrderRepository
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(carts *cart.Store, orderRepo repository.OrderRepository) CheckoutService {
	return &checkoutService{carts: carts, orderRepo: orderRepo}
}

// Checkout records an order for the cart's grand total and clears the
// cart. A cart with price-on-request lines cannot check out because its
// total is not computable.
func (s *checkoutService) Checkout(ctx context.Context, cartID string) (*domain.Order, error) {
	current, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, ErrEmptyCart
	}

	totals, err := s.carts.Totals(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if totals.HasQuoteItems {
		return nil, ErrQuoteItemsInCart
	}

	order := &domain.Order{
		ID:        uuid.New(),
		Total:     totals.GrandTotal,
		Status:    OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	if err := s.carts.Clear(ctx, cartID); err != nil {
		return nil, err
	}
	return order, nil
}
