package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khavho-commerce/internal/domain"
	"khavho-commerce/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidAd      = errors.New("invalid floating ad")
)

// CatalogRefresher is the signal the admin service sends after a
// successful product write so storefront readers pick the change up
// without waiting for the timer.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// ProductInput is the validated payload for a product create or update.
// A nil ID means create. A nil Price means "price on request"; a nil
// Stock means stock is not tracked.
type ProductInput struct {
	ID          *uuid.UUID
	Name        string
	Category    string
	Description string
	Price       *float64
	ImageURL    string
	IsAvailable bool
	Stock       *int
}

// FloatingAdInput is the payload for the floating ad upsert. A nil ID
// means insert a new ad.
type FloatingAdInput struct {
	ID          *uuid.UUID
	Title       string
	Description string
	ImageURL    string
	ButtonText  string
	ButtonURL   string
	Duration    int
	Active      bool
}

// DashboardStats are the record counts shown on the admin dashboard.
type DashboardStats struct {
	Products int `json:"products"`
	Messages int `json:"messages"`
	Orders   int `json:"orders"`
	Users    int `json:"users"`
}

// AdminService defines the back-office operations on products, floating
// ads and orders.
type AdminService interface {
	SaveProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	SaveFloatingAd(ctx context.Context, input FloatingAdInput) (*domain.FloatingAd, error)
	ListFloatingAds(ctx context.Context) ([]domain.FloatingAd, error)
	ActiveFloatingAd(ctx context.Context) (*domain.FloatingAd, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type adminService struct {
	productRepo repository.ProductRepository
	adRepo      repository.FloatingAdRepository
	orderRepo   repository.OrderRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	refresher   CatalogRefresher
	logger      *zap.Logger
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(
	productRepo repository.ProductRepository,
	adRepo repository.FloatingAdRepository,
	orderRepo repository.OrderRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	refresher CatalogRefresher,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		productRepo: productRepo,
		adRepo:      adRepo,
		orderRepo:   orderRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		refresher:   refresher,
		logger:      logger,
	}
}

// SaveProduct validates the input, creates or updates the record and
// triggers a catalog refresh. The refresh is best-effort: the write is
// durable either way and the timer loop will catch up.
func (s *adminService) SaveProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var product *domain.Product
	if input.ID == nil {
		product = &domain.Product{
			ID:          uuid.New(),
			Name:        input.Name,
			Category:    input.Category,
			Description: input.Description,
			Price:       input.Price,
			ImageURL:    input.ImageURL,
			IsAvailable: input.IsAvailable,
			Stock:       input.Stock,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			return nil, fmt.Errorf("failed to save product: %w", err)
		}
	} else {
		existing, err := s.productRepo.FindByID(ctx, *input.ID)
		if err != nil {
			return nil, err
		}
		product = existing
		product.Name = input.Name
		product.Category = input.Category
		product.Description = input.Description
		product.Price = input.Price
		product.ImageURL = input.ImageURL
		product.IsAvailable = input.IsAvailable
		product.Stock = input.Stock
		product.UpdatedAt = now
		if err := s.productRepo.Update(ctx, product); err != nil {
			return nil, fmt.Errorf("failed to save product: %w", err)
		}
	}

	s.refreshCatalog(ctx)
	return product, nil
}

// DeleteProduct removes the record and triggers a catalog refresh so
// the storefront drops it without waiting for the timer.
func (s *adminService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshCatalog(ctx)
	return nil
}

// SearchProducts finds products by name or description for the admin list
func (s *adminService) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return s.productRepo.ListAll(ctx)
	}
	return s.productRepo.Search(ctx, query)
}

// SaveFloatingAd saves an ad through the repository's single-transaction
// deactivate-all-then-upsert batch, keeping at most one ad active.
func (s *adminService) SaveFloatingAd(ctx context.Context, input FloatingAdInput) (*domain.FloatingAd, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidAd)
	}
	if input.ButtonText == "" {
		return nil, fmt.Errorf("%w: button text is required", ErrInvalidAd)
	}
	if input.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must be non-negative", ErrInvalidAd)
	}

	now := time.Now().UTC()
	ad := &domain.FloatingAd{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ButtonText:  input.ButtonText,
		ButtonURL:   input.ButtonURL,
		Duration:    input.Duration,
		Active:      input.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.ID != nil {
		ad.ID = *input.ID
	} else {
		ad.ID = uuid.New()
	}

	if err := s.adRepo.SaveActive(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

// ListFloatingAds retrieves every ad for the admin panel
func (s *adminService) ListFloatingAds(ctx context.Context) ([]domain.FloatingAd, error) {
	return s.adRepo.List(ctx)
}

// ActiveFloatingAd retrieves the currently active ad, if any
func (s *adminService) ActiveFloatingAd(ctx context.Context) (*domain.FloatingAd, error) {
	return s.adRepo.FindActive(ctx)
}

// ListOrders retrieves all orders for the admin panel
func (s *adminService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.List(ctx)
}

// UpdateOrderStatus sets an order's status field
func (s *adminService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.orderRepo.UpdateStatus(ctx, id, status)
}

// DashboardStats counts the records behind the admin dashboard tiles
func (s *adminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.Products, err = s.productRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	if stats.Messages, err = s.messageRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	if stats.Orders, err = s.orderRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	return stats, nil
}

func (s *adminService) refreshCatalog(ctx context.Context) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("Catalog refresh after admin write failed", zap.Error(err))
	}
}

func validateProduct(input ProductInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if input.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidProduct)
	}
	if input.Price != nil && *input.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidProduct)
	}
	if input.Stock != nil && *input.Stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", ErrInvalidProduct)
	}
	return nil
}
