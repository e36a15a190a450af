package transport

import (
	"errors"
	"net/http"

	"khavho-commerce/internal/domain"
	"khavho-commerce/internal/middleware"
	"khavho-commerce/internal/repository"
	"khavho-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest is the admin product create/update payload. Price and
// stock are pointers: a missing price means "price on request", a
// missing stock means stock is not tracked.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	IsAvailable bool     `json:"is_available"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
}

// FloatingAdRequest is the floating ad upsert payload
type FloatingAdRequest struct {
	ID          *string `json:"id" validate:"omitempty,uuid"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	ButtonText  string  `json:"button_text" validate:"required"`
	ButtonURL   string  `json:"button_url" validate:"omitempty,url"`
	Duration    int     `json:"duration" validate:"gte=0"`
	Active      bool    `json:"active"`
}

// StatusRequest carries a status transition for messages or orders
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminHandler handles the back-office HTTP surface
type AdminHandler struct {
	adminService   service.AdminService
	messageService service.MessageService
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService service.AdminService, messageService service.MessageService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		messageService: messageService,
		logger:         logger,
	}
}

// RegisterRoutes registers all admin routes behind auth + admin role
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminOnly)

		r.Get("/stats", h.GetStats)

		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/messages", h.ListMessages)
		r.Patch("/messages/{id}/status", h.UpdateMessageStatus)

		r.Get("/orders", h.ListOrders)
		r.Patch("/orders/{id}/status", h.UpdateOrderStatus)

		r.Get("/floating-ads", h.ListFloatingAds)
		r.Put("/floating-ad", h.SaveFloatingAd)
	})
}

// GetStats returns the dashboard record counts
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.DashboardStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to load dashboard stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// ListProducts lists all products, optionally filtered by a search query
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.adminService.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// CreateProduct validates and creates a product, then refreshes the catalog
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, nil)
}

// UpdateProduct validates and updates an existing product
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	h.saveProduct(w, r, &id)
}

func (h *AdminHandler) saveProduct(w http.ResponseWriter, r *http.Request, id *uuid.UUID) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.adminService.SaveProduct(r.Context(), service.ProductInput{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
		Stock:       req.Stock,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to save product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	status := http.StatusOK
	if id == nil {
		status = http.StatusCreated
	}
	h.logger.Info("Product saved", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, status, product)
}

// DeleteProduct deletes a product. The explicit confirm=true query
// parameter is the confirmation step; without it nothing is deleted.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		middleware.RespondWithError(w, http.StatusBadRequest, "deletion must be confirmed with confirm=true")
		return
	}

	if err := h.adminService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListMessages lists all contact messages
func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// UpdateMessageStatus sets a message's workflow status
func (h *AdminHandler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	var req StatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.messageService.UpdateStatus(r.Context(), id, domain.MessageStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, repository.ErrMessageNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "message not found")
			return
		}
		h.logger.Error("Failed to update message status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update message status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// ListOrders lists all orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.adminService.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// UpdateOrderStatus sets an order's status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req StatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.adminService.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// ListFloatingAds lists every floating ad
func (h *AdminHandler) ListFloatingAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.adminService.ListFloatingAds(r.Context())
	if err != nil {
		h.logger.Error("Failed to list floating ads", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list floating ads")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"floating_ads": ads})
}

// SaveFloatingAd upserts an ad; the repository batch keeps at most one active
func (h *AdminHandler) SaveFloatingAd(w http.ResponseWriter, r *http.Request) {
	var req FloatingAdRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.FloatingAdInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ButtonText:  req.ButtonText,
		ButtonURL:   req.ButtonURL,
		Duration:    req.Duration,
		Active:      req.Active,
	}
	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid floating ad ID")
			return
		}
		input.ID = &id
	}

	ad, err := h.adminService.SaveFloatingAd(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAd) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to save floating ad", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save floating ad")
		return
	}

	h.logger.Info("Floating ad saved",
		zap.String("ad_id", ad.ID.String()),
		zap.Bool("active", ad.Active),
	)
	middleware.RespondWithJSON(w, http.StatusOK, ad)
}
