package transport

import (
	"errors"
	"net/http"

	"khavho-commerce/internal/catalog"
	"khavho-commerce/internal/middleware"
	"khavho-commerce/internal/repository"
	"khavho-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogResponse is the storefront product listing. State tells the
// client which empty rendering to show; Degraded flags that the last
// catalog load failed and the data shown is the last good snapshot.
type CatalogResponse struct {
	catalog.Projection
	Degraded bool   `json:"degraded,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

// CatalogHandler serves the public storefront endpoints from the
// catalog cache; it never reads the product table directly.
type CatalogHandler struct {
	cache        *catalog.Cache
	adminService service.AdminService
	logger       *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(cache *catalog.Cache, adminService service.AdminService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		cache:        cache,
		adminService: adminService,
		logger:       logger,
	}
}

// RegisterRoutes registers the public storefront routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/floating-ad", h.GetFloatingAd)
}

// ListProducts renders the cache snapshot filtered by the category tag
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("category")

	response := CatalogResponse{
		Projection: catalog.Project(h.cache.Snapshot(), h.cache.Loaded(), tag),
	}
	if err := h.cache.LastError(); err != nil {
		response.Degraded = true
		response.Notice = "catalog may be out of date"
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProduct returns a single product from the cache snapshot
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, ok := h.cache.Lookup(id)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListCategories returns the distinct category tags in the snapshot
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.cache.Categories(),
	})
}

// GetFloatingAd returns the currently active ad, if any
func (h *CatalogHandler) GetFloatingAd(w http.ResponseWriter, r *http.Request) {
	ad, err := h.adminService.ActiveFloatingAd(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrFloatingAdNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no active floating ad")
			return
		}
		h.logger.Error("Failed to load active floating ad", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load floating ad")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ad)
}
