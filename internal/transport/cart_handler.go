package transport

import (
	"errors"
	"net/http"

	"khavho-commerce/internal/cart"
	"khavho-commerce/internal/middleware"
	"khavho-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cartCookieName identifies the visitor's cart across requests. The
// cart contents themselves live server-side under the khavho_cart key
// prefix; the cookie carries only the id.
const cartCookieName = "khavho_cart_id"

// AddItemRequest adds one unit of a product to the cart
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// AdjustQuantityRequest changes a line item's quantity by a signed delta
type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartResponse bundles the cart with its computed totals
type CartResponse struct {
	Cart   *cart.Cart  `json:"cart"`
	Totals cart.Totals `json:"totals"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	carts    *cart.Store
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Store, checkout service.CheckoutService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{productID}", h.AdjustQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})
}

// cartID returns the visitor's cart id, minting one and setting the
// cookie when the request carries none.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cartCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// No MaxAge: carts never expire automatically.
	})
	return id
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, r *http.Request, cartID string, current *cart.Cart) {
	totals, err := h.carts.Totals(r.Context(), cartID)
	if err != nil {
		h.logger.Error("Failed to compute cart totals", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute totals")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Cart: current, Totals: totals})
}

// GetCart returns the cart with its computed totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	current, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	h.respondWithCart(w, r, cartID, current)
}

// AddItem adds one unit of a product, looked up in the catalog at call
// time. A product that has vanished from the catalog leaves the cart
// untouched.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	current, err := h.carts.Add(r.Context(), cartID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrProductNotInCatalog) {
			middleware.RespondWithError(w, http.StatusNotFound, "product is no longer available")
			return
		}
		if errors.Is(err, cart.ErrProductUnavailable) {
			middleware.RespondWithError(w, http.StatusConflict, "product is out of stock")
			return
		}
		h.logger.Error("Failed to add cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	h.respondWithCart(w, r, cartID, current)
}

// AdjustQuantity applies a signed delta to a line item's quantity; a
// result of zero or less removes the line.
func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req AdjustQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.carts.AdjustQuantity(r.Context(), cartID, productID, req.Delta)
	if err != nil {
		h.logger.Error("Failed to adjust cart quantity", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to adjust quantity")
		return
	}

	h.respondWithCart(w, r, cartID, current)
}

// RemoveItem deletes a line item; removing an absent product is a no-op
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	current, err := h.carts.Remove(r.Context(), cartID, productID)
	if err != nil {
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	h.respondWithCart(w, r, cartID, current)
}

// Checkout records an order for the cart total and clears the cart
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	order, err := h.checkout.Checkout(r.Context(), cartID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		if errors.Is(err, service.ErrQuoteItemsInCart) {
			middleware.RespondWithError(w, http.StatusConflict, "cart contains items that require a quote")
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "checkout failed")
		return
	}

	h.logger.Info("Order recorded", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}
